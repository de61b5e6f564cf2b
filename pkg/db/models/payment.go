package models

import (
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/comptoir-backend/pkg/enums"
)

// UnknownRecorder fills RecordedBy on payments that never carried one.
const UnknownRecorder = "unknown"

// Payment is the immutable record of a settled table.
type Payment struct {
	ID            string      `json:"id"`
	SchemaVersion int         `json:"schemaVersion"`
	TableName     string      `json:"tableName"`
	Amount        Amount      `json:"amount"`
	Items         []OrderLine `json:"items"`
	Mode          enums.Mode  `json:"mode"`
	RecordedBy    string      `json:"recordedBy"`
	Date          time.Time   `json:"date"`
}

func (p *Payment) DocumentID() string      { return p.ID }
func (p *Payment) SetDocumentID(id string) { p.ID = id }

func (p *Payment) Normalize() {
	if p.Items == nil {
		p.Items = []OrderLine{}
	}
	if p.Mode == "" {
		p.Mode = enums.ModeBar
	}
	if p.RecordedBy == "" {
		p.RecordedBy = UnknownRecorder
	}
	if p.SchemaVersion == 0 {
		p.SchemaVersion = CurrentSchemaVersion
	}
}

func (p *Payment) Validate() error {
	var err error
	err = multierr.Append(err, checkSchemaVersion(p.SchemaVersion))
	err = multierr.Append(err, required("tableName", p.TableName))
	if p.Amount < 0 {
		err = multierr.Append(err, invalid("amount", "must be zero or positive"))
	}
	if !p.Mode.IsValid() {
		err = multierr.Append(err, invalid("mode", "must be bar or snackbar"))
	}
	if p.Date.IsZero() {
		err = multierr.Append(err, invalid("date", "is required"))
	}
	for i, line := range p.Items {
		err = multierr.Append(err, line.validate(i))
	}
	return err
}
