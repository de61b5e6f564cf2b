package store

import (
	"errors"

	"github.com/angelmondragon/comptoir-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/comptoir-backend/pkg/errors"
)

// Classify maps a store failure onto the service error taxonomy: missing
// documents become NOT_FOUND, rejected records VALIDATION_ERROR with field
// details, anything else DEPENDENCY_ERROR. Typed errors pass through.
func Classify(err error, message string) error {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	if errors.Is(err, ErrNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, message+": not found")
	}
	var invalid *InvalidRecordError
	if errors.As(err, &invalid) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, message).
			WithDetails(map[string]any{"fields": models.FieldErrors(invalid.Err)})
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}
