// Package feedback locates manager feedback in the performance report and
// turns it into summarizer input.
package feedback

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Field identifies a report column the blurb pipeline reads.
type Field string

const (
	FieldEmployeeName          Field = "employee_name"
	FieldEmployeeID            Field = "employee_id"
	FieldLeadershipStrength    Field = "leadership_strength"
	FieldLeadershipImprovement Field = "leadership_improvement"
	FieldAILeverage            Field = "ai_leverage"
	FieldAIReadiness           Field = "ai_readiness"
	FieldSupportNeeded         Field = "support_needed"
	FieldPerformanceComment    Field = "performance_comment"
	FieldPotentialComment      Field = "potential_comment"
	FieldPromotionComment      Field = "promotion_comment"
)

// FeedbackFields lists the free-text fields in the order they are combined.
var FeedbackFields = []Field{
	FieldLeadershipStrength,
	FieldLeadershipImprovement,
	FieldAILeverage,
	FieldAIReadiness,
	FieldSupportNeeded,
	FieldPerformanceComment,
	FieldPotentialComment,
	FieldPromotionComment,
}

var lower = cases.Lower(language.Und)

// Columns maps fields to zero-based column indexes.
type Columns map[Field]int

// Has reports whether f was found in the header.
func (c Columns) Has(f Field) bool {
	_, ok := c[f]
	return ok
}

// Value returns the trimmed cell for f, or "" when the column or cell is missing.
func (c Columns) Value(row []string, f Field) string {
	idx, ok := c[f]
	if !ok || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

// FeedbackCount returns how many feedback fields were mapped.
func (c Columns) FeedbackCount() int {
	n := 0

	for _, f := range FeedbackFields {
		if c.Has(f) {
			n++
		}
	}

	return n
}

type headerRule struct {
	field Field
	match func(h string) bool
}

func containsAll(parts ...string) func(string) bool {
	return func(h string) bool {
		for _, p := range parts {
			if !strings.Contains(h, p) {
				return false
			}
		}

		return true
	}
}

func containsAny(parts ...string) func(string) bool {
	return func(h string) bool {
		for _, p := range parts {
			if strings.Contains(h, p) {
				return true
			}
		}

		return false
	}
}

// Rules are evaluated in order; the first match wins for a header.
var headerRules = []headerRule{
	{FieldEmployeeID, func(h string) bool { return strings.Contains(h, "employee id") || h == "emp id" }},
	{FieldEmployeeName, func(h string) bool { return strings.Contains(h, "employee") && !strings.Contains(h, "id") }},
	{FieldLeadershipStrength, containsAll("leadership principle", "exemplified")},
	{FieldLeadershipImprovement, containsAll("leadership principle", "improvement")},
	{FieldAILeverage, containsAny("leveraged ai", "ai, automation")},
	{FieldAIReadiness, containsAny("ai has not yet", "openness")},
	{FieldSupportNeeded, containsAny("support, coaching")},
	{FieldPerformanceComment, containsAll("comment", "performed against")},
	{FieldPotentialComment, containsAll("comment", "potential")},
	{FieldPromotionComment, containsAll("comment", "promoted")},
}

// MapColumns maps report headers to fields. When no explicit ID column is
// present, the bare "Employee" column doubles as the identifier.
func MapColumns(headers []string) Columns {
	cols := make(Columns)

	for i, h := range headers {
		h = strings.Join(strings.Fields(lower.String(h)), " ")
		if h == "" {
			continue
		}

		for _, rule := range headerRules {
			if !rule.match(h) {
				continue
			}

			if !cols.Has(rule.field) {
				cols[rule.field] = i
			}

			break
		}
	}

	if !cols.Has(FieldEmployeeID) && cols.Has(FieldEmployeeName) {
		cols[FieldEmployeeID] = cols[FieldEmployeeName]
	}

	return cols
}
