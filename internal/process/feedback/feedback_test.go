package feedback

import "testing"

var reportHeaders = []string{
	"Employee",
	"Employee ID",
	"Department",
	"Which leadership principle has this person exemplified the most?",
	"Which leadership principle is the biggest area of improvement?",
	"How has this person leveraged AI, automation or tooling?",
	"If AI has not yet been adopted, describe their openness to it",
	"What support, coaching or resources do they need?",
	"Comment: how this person performed against expectations",
	"Comment on potential",
	"Comment: should this person be promoted?",
	"Manager rating",
}

func TestMapColumns(t *testing.T) {
	cols := MapColumns(reportHeaders)

	want := map[Field]int{
		FieldEmployeeName:          0,
		FieldEmployeeID:            1,
		FieldLeadershipStrength:    3,
		FieldLeadershipImprovement: 4,
		FieldAILeverage:            5,
		FieldAIReadiness:           6,
		FieldSupportNeeded:         7,
		FieldPerformanceComment:    8,
		FieldPotentialComment:      9,
		FieldPromotionComment:      10,
	}

	for field, idx := range want {
		got, ok := cols[field]
		if !ok {
			t.Errorf("field %s not mapped", field)
			continue
		}

		if got != idx {
			t.Errorf("field %s mapped to %d, want %d", field, got, idx)
		}
	}

	if n := cols.FeedbackCount(); n != len(FeedbackFields) {
		t.Errorf("FeedbackCount() = %d, want %d", n, len(FeedbackFields))
	}
}

func TestMapColumns_EmployeeDoublesAsID(t *testing.T) {
	cols := MapColumns([]string{"Employee", "Comment on potential"})

	if cols[FieldEmployeeID] != 0 || cols[FieldEmployeeName] != 0 {
		t.Errorf("expected Employee column to serve as name and id, got %v", cols)
	}
}

func TestIsPlaceholder(t *testing.T) {
	for _, v := range []string{"", "  ", "N/A", "n/a", "-", "None", "nan"} {
		if !IsPlaceholder(v) {
			t.Errorf("IsPlaceholder(%q) = false, want true", v)
		}
	}

	if IsPlaceholder("Solid quarter") {
		t.Error("IsPlaceholder(real text) = true")
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "removes idioms and fillers keeping case",
			input:    "Priya really showed Bias for Action on the Atlas launch. They were very clear with stakeholders.",
			expected: "Priya showed on the Atlas launch. They were clear with stakeholders",
		},
		{
			name:     "drops short fragments",
			input:    "Great. Led the incident review process for payments!",
			expected: "Led the incident review process for payments",
		},
		{
			name:     "word boundaries respected",
			input:    "Justified the roadmap tradeoffs with data.",
			expected: "Justified the roadmap tradeoffs with data",
		},
		{
			name:     "only noise",
			input:    "Think big. GSD.",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.expected {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestExtract(t *testing.T) {
	cols := MapColumns(reportHeaders)
	row := []string{
		"Dana Lee", "E-1001", "Platform",
		"Consistently delivered complex migrations on schedule.",
		"N/A",
		"-",
		"",
		"Needs coaching on delegating work to the team.",
		"Exceeded expectations across every quarterly goal.",
	}

	got := Extract(row, cols)
	want := "Consistently delivered complex migrations on schedule. " +
		"Needs coaching on delegating work to the team. " +
		"Exceeded expectations across every quarterly goal"

	if got != want {
		t.Errorf("Extract() = %q, want %q", got, want)
	}

	if !IsUsable(got, 20) {
		t.Error("IsUsable() = false for real feedback")
	}

	if IsUsable("Short note", 20) {
		t.Error("IsUsable() = true for short text")
	}
}
