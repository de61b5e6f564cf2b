package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// CurrentSchemaVersion is stamped on every record written by this service.
// Records without a version predate it and are upgraded by Normalize.
const CurrentSchemaVersion = 1

var accessCodePattern = regexp.MustCompile(`^\d{6}$`)

// ValidAccessCode reports whether code is exactly six ASCII digits.
func ValidAccessCode(code string) bool {
	return accessCodePattern.MatchString(code)
}

// FieldError describes one rejected field of a record.
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return FieldError{Field: field, Reason: reason}
}

// FieldErrors flattens a combined validation error into a field/reason map.
func FieldErrors(err error) map[string]string {
	if err == nil {
		return nil
	}
	out := map[string]string{}
	for _, e := range multierr.Errors(err) {
		var fe FieldError
		if errors.As(e, &fe) {
			out[fe.Field] = fe.Reason
			continue
		}
		out["_"] = e.Error()
	}
	return out
}

func checkSchemaVersion(version int) error {
	if version > CurrentSchemaVersion {
		return invalid("schemaVersion", fmt.Sprintf("unsupported version %d", version))
	}
	return nil
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalid(field, "is required")
	}
	return nil
}

// Amount is a whole-franc FCFA value. Decoding accepts fractional or quoted
// numbers from older documents and rounds them to the franc.
type Amount int64

func (a *Amount) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*a = 0
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	*a = AmountFromDecimal(d)
	return nil
}

// AmountFromDecimal rounds d half away from zero to whole francs.
func AmountFromDecimal(d decimal.Decimal) Amount {
	return Amount(d.Round(0).IntPart())
}

// Decimal converts the amount for arithmetic that may leave whole francs.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(a))
}

// String formats the amount the way receipts and activity details show it.
func (a Amount) String() string {
	return fmt.Sprintf("%d", int64(a))
}
