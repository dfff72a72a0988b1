package blurb

import (
	"strings"
	"testing"
)

const validBlurb = "Alex delivered the payments migration ahead of schedule and showed strong leadership while coordinating three teams and stakeholders across two time zones. " +
	"They mentored new engineers, improved the release process, and consistently raised the quality bar for the whole engineering group during a demanding quarter."

const offTopicText = "The weather in the city was pleasant this spring and the parks were full of families enjoying picnics on the grass. " +
	"Many visitors came to see the flowers bloom along the river walk near the old bridge every weekend."

func TestRuleCheck(t *testing.T) {
	checker := NewRuleChecker(DefaultThresholds())

	tests := []struct {
		name       string
		text       string
		ok         bool
		reasonPart string
	}{
		{
			name: "valid blurb",
			text: validBlurb,
			ok:   true,
		},
		{
			name:       "too short",
			text:       "Too short.",
			reasonPart: "length",
		},
		{
			name:       "lowercase start",
			text:       "alex" + strings.TrimPrefix(validBlurb, "Alex"),
			reasonPart: "uppercase",
		},
		{
			name:       "missing terminal punctuation",
			text:       strings.TrimSuffix(validBlurb, "."),
			reasonPart: "punctuation",
		},
		{
			name:       "news site",
			text:       strings.TrimSuffix(validBlurb, ".") + " as reported on cnn.com today.",
			reasonPart: "web artifact",
		},
		{
			name:       "url",
			text:       "Read the full story at https://example.org/story. " + validBlurb,
			reasonPart: "web artifact",
		},
		{
			name:       "no performance vocabulary",
			text:       offTopicText,
			reasonPart: "vocabulary",
		},
		{
			name:       "too few words",
			text:       "Alex delivered the payments migration on time. They showed strong leadership across the team.",
			reasonPart: "word count",
		},
		{
			name:       "too many words",
			text:       validBlurb + " " + validBlurb,
			reasonPart: "word count",
		},
		{
			name:       "single sentence",
			text:       strings.Replace(validBlurb, "zones. They", "zones and they", 1),
			reasonPart: "sentences",
		},
		{
			name:       "trailing ellipsis",
			text:       validBlurb + "..",
			reasonPart: "ellipsis",
		},
		{
			name:       "all caps",
			text:       strings.ToUpper(validBlurb),
			reasonPart: "one case",
		},
		{
			name:       "long leading word",
			text:       "Extraordinarilyproductive" + strings.TrimPrefix(validBlurb, "Alex"),
			reasonPart: "longer than",
		},
		{
			name:       "consonant run",
			text:       "Xkcdfghjk" + strings.TrimPrefix(validBlurb, "Alex"),
			reasonPart: "gibberish",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := checker.Check(tt.text)
			if got.OK != tt.ok {
				t.Fatalf("Check() ok = %v, want %v (reason %q)", got.OK, tt.ok, got.Reason)
			}

			if tt.reasonPart != "" && !strings.Contains(got.Reason, tt.reasonPart) {
				t.Errorf("Check() reason = %q, want it to mention %q", got.Reason, tt.reasonPart)
			}
		})
	}
}

func TestRuleCheck_ConfigurableThresholds(t *testing.T) {
	th := DefaultThresholds()
	th.MinWords = 50

	if v := NewRuleChecker(th).Check(validBlurb); v.OK {
		t.Error("expected rejection with raised minimum word count")
	}

	th = DefaultThresholds()
	th.ConsonantRun = 3

	if v := NewRuleChecker(th).Check(validBlurb); v.OK || !strings.Contains(v.Reason, "gibberish") {
		t.Errorf("expected gibberish rejection with consonant run 3, got %+v", v)
	}
}

func TestHasWebArtifact(t *testing.T) {
	tests := []struct {
		text     string
		expected bool
	}{
		{"Subscribe to our newsletter", true},
		{"Visit www.example.com", true},
		{"CNN iReport contributor", true},
		{"Copyright 2024 All rights reserved", true},
		{"Delivered the roadmap on time", false},
		{"Strong communicator in reviews", false},
	}

	for _, tt := range tests {
		if got := HasWebArtifact(tt.text); got != tt.expected {
			t.Errorf("HasWebArtifact(%q) = %v, want %v", tt.text, got, tt.expected)
		}
	}
}
