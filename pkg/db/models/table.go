package models

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/angelmondragon/comptoir-backend/pkg/enums"
)

// OrderLine is one article on a table's tab. Price is frozen when the line
// is first added.
type OrderLine struct {
	ArticleID   string `json:"articleId"`
	ArticleName string `json:"articleName"`
	Quantity    int    `json:"quantity"`
	Price       Amount `json:"price"`
}

// Total returns quantity × price.
func (l OrderLine) Total() Amount {
	return Amount(int64(l.Quantity)) * l.Price
}

func (l OrderLine) validate(index int) error {
	var err error
	field := func(name string) string { return fmt.Sprintf("orders[%d].%s", index, name) }
	if l.ArticleID == "" {
		err = multierr.Append(err, invalid(field("articleId"), "is required"))
	}
	if l.Quantity < 1 {
		err = multierr.Append(err, invalid(field("quantity"), "must be at least 1"))
	}
	if l.Price < 0 {
		err = multierr.Append(err, invalid(field("price"), "must be zero or positive"))
	}
	return err
}

// Table is an open tab: occupied while it holds unpaid lines.
type Table struct {
	ID            string            `json:"id"`
	SchemaVersion int               `json:"schemaVersion"`
	Name          string            `json:"name"`
	Status        enums.TableStatus `json:"status"`
	Orders        []OrderLine       `json:"orders"`
	Total         Amount            `json:"total"`
}

func (t *Table) DocumentID() string      { return t.ID }
func (t *Table) SetDocumentID(id string) { t.ID = id }

// Normalize derives status and total from the order lines.
func (t *Table) Normalize() {
	if t.Orders == nil {
		t.Orders = []OrderLine{}
	}
	t.Recompute()
	if t.SchemaVersion == 0 {
		t.SchemaVersion = CurrentSchemaVersion
	}
}

// Recompute refreshes Total and Status after any change to Orders.
func (t *Table) Recompute() {
	var total Amount
	for _, line := range t.Orders {
		total += line.Total()
	}
	t.Total = total
	if len(t.Orders) > 0 {
		t.Status = enums.TableStatusOccupied
	} else {
		t.Status = enums.TableStatusAvailable
	}
}

// LineIndex returns the position of the line for articleID, or -1.
func (t *Table) LineIndex(articleID string) int {
	for i, line := range t.Orders {
		if line.ArticleID == articleID {
			return i
		}
	}
	return -1
}

// IsOccupied reports whether the table holds unpaid lines.
func (t *Table) IsOccupied() bool {
	return len(t.Orders) > 0
}

func (t *Table) Validate() error {
	var err error
	err = multierr.Append(err, checkSchemaVersion(t.SchemaVersion))
	err = multierr.Append(err, required("name", t.Name))
	if !t.Status.IsValid() {
		err = multierr.Append(err, invalid("status", "must be available or occupied"))
	}
	for i, line := range t.Orders {
		err = multierr.Append(err, line.validate(i))
	}
	return err
}
