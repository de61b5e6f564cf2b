package models

import (
	"time"

	"go.uber.org/multierr"
)

// ActivityLog is one append-only audit entry. Role holds the actor id: a
// manager role or an employee id.
type ActivityLog struct {
	ID            string    `json:"id"`
	SchemaVersion int       `json:"schemaVersion"`
	Role          string    `json:"role"`
	Timestamp     time.Time `json:"timestamp"`
	Action        string    `json:"action"`
	Details       string    `json:"details,omitempty"`
}

func (l *ActivityLog) DocumentID() string      { return l.ID }
func (l *ActivityLog) SetDocumentID(id string) { l.ID = id }

func (l *ActivityLog) Normalize() {
	if l.SchemaVersion == 0 {
		l.SchemaVersion = CurrentSchemaVersion
	}
}

func (l *ActivityLog) Validate() error {
	var err error
	err = multierr.Append(err, checkSchemaVersion(l.SchemaVersion))
	err = multierr.Append(err, required("role", l.Role))
	err = multierr.Append(err, required("action", l.Action))
	if l.Timestamp.IsZero() {
		err = multierr.Append(err, invalid("timestamp", "is required"))
	}
	return err
}
