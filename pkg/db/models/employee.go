package models

import (
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/comptoir-backend/pkg/enums"
)

// Employee is a staff account that logs in with its own six-digit code.
type Employee struct {
	ID            string     `json:"id"`
	SchemaVersion int        `json:"schemaVersion"`
	Name          string     `json:"name"`
	Code          string     `json:"code"`
	WorkMode      enums.Mode `json:"workMode"`
	CreatedBy     string     `json:"createdBy"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func (e *Employee) DocumentID() string      { return e.ID }
func (e *Employee) SetDocumentID(id string) { e.ID = id }

func (e *Employee) Normalize() {
	e.Name = strings.TrimSpace(e.Name)
	e.Code = strings.TrimSpace(e.Code)
	if e.WorkMode == "" {
		e.WorkMode = enums.ModeBar
	}
	if e.SchemaVersion == 0 {
		e.SchemaVersion = CurrentSchemaVersion
	}
}

func (e *Employee) Validate() error {
	var err error
	err = multierr.Append(err, checkSchemaVersion(e.SchemaVersion))
	err = multierr.Append(err, required("name", e.Name))
	if !ValidAccessCode(e.Code) {
		err = multierr.Append(err, invalid("code", "must be exactly 6 digits"))
	}
	if !e.WorkMode.IsValid() {
		err = multierr.Append(err, invalid("workMode", "must be bar or snackbar"))
	}
	return err
}
