package blurb

// Thresholds tunes the quality gate. The word window and the consonant run
// length are empirical values, kept configurable.
type Thresholds struct {
	MinChars              int
	MinWords              int
	MaxWords              int
	MinSentences          int
	MinSentenceChars      int
	LeadingWords          int
	MaxLeadingWordLen     int
	ConsonantRun          int
	SemanticMinConfidence float64

	FallbackMinSentenceChars int
	FallbackMaxWords         int
	FallbackTargetWords      int
	FallbackTargetSentences  int
}

// DefaultThresholds returns the tuned production values.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinChars:                 20,
		MinWords:                 30,
		MaxWords:                 85,
		MinSentences:             2,
		MinSentenceChars:         10,
		LeadingWords:             5,
		MaxLeadingWordLen:        15,
		ConsonantRun:             7,
		SemanticMinConfidence:    0.5,
		FallbackMinSentenceChars: 15,
		FallbackMaxWords:         70,
		FallbackTargetWords:      40,
		FallbackTargetSentences:  2,
	}
}

// withDefaults fills zero fields from DefaultThresholds.
func (t Thresholds) withDefaults() Thresholds {
	d := DefaultThresholds()

	setInt := func(v *int, def int) {
		if *v <= 0 {
			*v = def
		}
	}

	setInt(&t.MinChars, d.MinChars)
	setInt(&t.MinWords, d.MinWords)
	setInt(&t.MaxWords, d.MaxWords)
	setInt(&t.MinSentences, d.MinSentences)
	setInt(&t.MinSentenceChars, d.MinSentenceChars)
	setInt(&t.LeadingWords, d.LeadingWords)
	setInt(&t.MaxLeadingWordLen, d.MaxLeadingWordLen)
	setInt(&t.ConsonantRun, d.ConsonantRun)
	setInt(&t.FallbackMinSentenceChars, d.FallbackMinSentenceChars)
	setInt(&t.FallbackMaxWords, d.FallbackMaxWords)
	setInt(&t.FallbackTargetWords, d.FallbackTargetWords)
	setInt(&t.FallbackTargetSentences, d.FallbackTargetSentences)

	if t.SemanticMinConfidence <= 0 {
		t.SemanticMinConfidence = d.SemanticMinConfidence
	}

	return t
}
