package llm

import (
	"fmt"
	"strings"
)

const defaultSummaryMinWords = 30
const defaultSummaryMaxWords = 85

const summarizePrompt = `You write short manager blurbs for performance review calibration.
Summarize the feedback below in %d to %d words, in two or three complete sentences.
Write in the third person, use a neutral professional tone and refer to the employee by name when it is given.
Mention concrete contributions, leadership and growth areas that appear in the feedback. Do not invent facts.
Return only the blurb text.`

const classifyPrompt = `Classify the text into exactly one of these labels:
%s
Return ONLY JSON with keys: label (one of the labels above, verbatim), score (confidence between 0 and 1).`

func buildSummaryPrompt(req SummaryRequest) (system, user string) {
	minWords, maxWords := req.MinWords, req.MaxWords
	if minWords <= 0 {
		minWords = defaultSummaryMinWords
	}

	if maxWords <= 0 || maxWords < minWords {
		maxWords = defaultSummaryMaxWords
	}

	var sb strings.Builder

	if req.EmployeeName != "" {
		sb.WriteString("Employee: ")
		sb.WriteString(req.EmployeeName)
		sb.WriteString("\n\n")
	}

	sb.WriteString("Feedback:\n")
	sb.WriteString(req.Feedback)

	return fmt.Sprintf(summarizePrompt, minWords, maxWords), sb.String()
}

func buildClassifyPrompt(labels []string) string {
	var sb strings.Builder

	for _, l := range labels {
		sb.WriteString("- ")
		sb.WriteString(l)
		sb.WriteString("\n")
	}

	return fmt.Sprintf(classifyPrompt, strings.TrimRight(sb.String(), "\n"))
}
