package schedule

import "fmt"

type ErrorKind int

const (
	// MissingSchedule means the document declares neither a direct
	// schedule nor any rotation section.
	MissingSchedule ErrorKind = iota
	// MissingDay means the active schedule has no entry for the current
	// weekday.
	MissingDay
)

func (k ErrorKind) String() string {
	switch k {
	case MissingDay:
		return "missing_day"
	default:
		return "missing_schedule"
	}
}

// Error is a structural configuration defect: the operator must fix the
// schedule document. It is never recovered at runtime.
type Error struct {
	Kind   ErrorKind
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("schedule: %s", e.Kind)
	}
	return fmt.Sprintf("schedule: %s: %s", e.Kind, e.Detail)
}
