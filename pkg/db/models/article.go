package models

import (
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

const (
	DefaultArticleUnit = "unité"
	UncategorizedLabel = "Non catégorisé"
)

// ArticleCategories lists the categories offered by the catalog forms.
var ArticleCategories = []string{"Boissons", "Nourriture", "Snacks", "Autres"}

// ArticleUnits lists the stock units offered by the catalog forms.
var ArticleUnits = []string{"unité", "bouteille", "canette", "portion", "kg", "litre"}

var legacySnackbarMarkup = decimal.RequireFromString("1.2")

// Article is a sellable catalog item with day and evening prices.
type Article struct {
	ID            string `json:"id"`
	SchemaVersion int    `json:"schemaVersion"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	PriceBar      Amount `json:"priceBar"`
	PriceSnackbar Amount `json:"priceSnackbar"`
	Stock         int    `json:"stock"`
	Unit          string `json:"unit"`

	// LegacyPrice is the single price of documents written before dual pricing.
	LegacyPrice *Amount `json:"price,omitempty"`
}

func (a *Article) DocumentID() string      { return a.ID }
func (a *Article) SetDocumentID(id string) { a.ID = id }

// Normalize fills defaults and folds the legacy single price into both tiers.
func (a *Article) Normalize() {
	a.Name = strings.TrimSpace(a.Name)
	a.Category = strings.TrimSpace(a.Category)
	if strings.TrimSpace(a.Unit) == "" {
		a.Unit = DefaultArticleUnit
	}
	if a.LegacyPrice != nil {
		legacy := *a.LegacyPrice
		if a.PriceBar == 0 {
			a.PriceBar = legacy
		}
		if a.PriceSnackbar == 0 {
			a.PriceSnackbar = AmountFromDecimal(legacy.Decimal().Mul(legacySnackbarMarkup))
		}
		a.LegacyPrice = nil
	}
	if a.SchemaVersion == 0 {
		a.SchemaVersion = CurrentSchemaVersion
	}
}

func (a *Article) Validate() error {
	var err error
	err = multierr.Append(err, checkSchemaVersion(a.SchemaVersion))
	err = multierr.Append(err, required("name", a.Name))
	if a.PriceBar < 0 {
		err = multierr.Append(err, invalid("priceBar", "must be zero or positive"))
	}
	if a.PriceSnackbar < 0 {
		err = multierr.Append(err, invalid("priceSnackbar", "must be zero or positive"))
	}
	if a.Stock < 0 {
		err = multierr.Append(err, invalid("stock", "must be zero or positive"))
	}
	return err
}

// CategoryLabel returns the category or the placeholder used in reports.
func (a Article) CategoryLabel() string {
	if a.Category == "" {
		return UncategorizedLabel
	}
	return a.Category
}
