package models

import (
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/comptoir-backend/pkg/enums"
)

// Fixed document ids inside the settings collection.
const (
	ModeSettingID   = "mode"
	AccessCodesID   = "access_codes"
	SnapshotDayForm = "2006-01-02"
)

// ModeSetting stores the current pricing mode.
type ModeSetting struct {
	ID            string     `json:"id"`
	SchemaVersion int        `json:"schemaVersion"`
	Mode          enums.Mode `json:"mode"`
}

func (m *ModeSetting) DocumentID() string      { return m.ID }
func (m *ModeSetting) SetDocumentID(id string) { m.ID = id }

func (m *ModeSetting) Normalize() {
	if m.Mode == "" {
		m.Mode = enums.ModeBar
	}
	if m.SchemaVersion == 0 {
		m.SchemaVersion = CurrentSchemaVersion
	}
}

func (m *ModeSetting) Validate() error {
	var err error
	err = multierr.Append(err, checkSchemaVersion(m.SchemaVersion))
	if !m.Mode.IsValid() {
		err = multierr.Append(err, invalid("mode", "must be bar or snackbar"))
	}
	return err
}

// AccessCodes overrides manager default codes, keyed by manager role.
type AccessCodes struct {
	ID            string            `json:"id"`
	SchemaVersion int               `json:"schemaVersion"`
	Codes         map[string]string `json:"codes"`
}

func (a *AccessCodes) DocumentID() string      { return a.ID }
func (a *AccessCodes) SetDocumentID(id string) { a.ID = id }

func (a *AccessCodes) Normalize() {
	if a.Codes == nil {
		a.Codes = map[string]string{}
	}
	if a.SchemaVersion == 0 {
		a.SchemaVersion = CurrentSchemaVersion
	}
}

func (a *AccessCodes) Validate() error {
	var err error
	err = multierr.Append(err, checkSchemaVersion(a.SchemaVersion))
	for role, code := range a.Codes {
		if !enums.ManagerRole(role).IsValid() {
			err = multierr.Append(err, invalid("codes."+role, "unknown manager role"))
			continue
		}
		if !ValidAccessCode(code) {
			err = multierr.Append(err, invalid("codes."+role, "must be exactly 6 digits"))
		}
	}
	return err
}

// StockSnapshot captures every article's stock at the first look of a day.
type StockSnapshot struct {
	ID            string         `json:"id"`
	SchemaVersion int            `json:"schemaVersion"`
	Day           string         `json:"day"`
	Stock         map[string]int `json:"stock"`
	TakenAt       time.Time      `json:"takenAt"`
}

func (s *StockSnapshot) DocumentID() string      { return s.ID }
func (s *StockSnapshot) SetDocumentID(id string) { s.ID = id }

func (s *StockSnapshot) Normalize() {
	if s.Stock == nil {
		s.Stock = map[string]int{}
	}
	if s.Day == "" {
		s.Day = s.ID
	}
	if s.SchemaVersion == 0 {
		s.SchemaVersion = CurrentSchemaVersion
	}
}

func (s *StockSnapshot) Validate() error {
	var err error
	err = multierr.Append(err, checkSchemaVersion(s.SchemaVersion))
	if _, parseErr := time.Parse(SnapshotDayForm, s.Day); parseErr != nil {
		err = multierr.Append(err, invalid("day", fmt.Sprintf("must use %s", SnapshotDayForm)))
	}
	return err
}

// DayKey formats t as the snapshot id for its calendar day in loc.
func DayKey(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(SnapshotDayForm)
}
