package enums

import "fmt"

// Mode is the pricing context used when new order lines are added.
type Mode string

const (
	ModeBar      Mode = "bar"
	ModeSnackbar Mode = "snackbar"
)

var validModes = []Mode{
	ModeBar,
	ModeSnackbar,
}

// String implements fmt.Stringer.
func (m Mode) String() string {
	return string(m)
}

// Label returns the display name used in activity details and reports.
func (m Mode) Label() string {
	if m == ModeSnackbar {
		return "Snackbar"
	}
	return "Bar"
}

// IsValid reports whether the value is a known Mode.
func (m Mode) IsValid() bool {
	for _, candidate := range validModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMode converts raw input into a Mode.
func ParseMode(value string) (Mode, error) {
	for _, candidate := range validModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid mode %q", value)
}
