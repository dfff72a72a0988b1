package domain

// BlurbRow is one line of the blurb tab.
type BlurbRow struct {
	EmployeeID string
	Name       string
	Blurb      string
	// Source is "model", "fallback", "sentinel" or "no_feedback".
	Source string
}

// Blurb tab header.
const (
	BlurbHeaderID    = "Emp ID"
	BlurbHeaderBlurb = "Manager Blurb"
)
