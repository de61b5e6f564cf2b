package enums

import "fmt"

// TableStatus reflects whether a table has unpaid order lines.
type TableStatus string

const (
	TableStatusAvailable TableStatus = "available"
	TableStatusOccupied  TableStatus = "occupied"
)

var validTableStatuses = []TableStatus{
	TableStatusAvailable,
	TableStatusOccupied,
}

// String implements fmt.Stringer.
func (s TableStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known TableStatus.
func (s TableStatus) IsValid() bool {
	for _, candidate := range validTableStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseTableStatus converts raw input into a TableStatus.
func ParseTableStatus(value string) (TableStatus, error) {
	for _, candidate := range validTableStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid table status %q", value)
}
