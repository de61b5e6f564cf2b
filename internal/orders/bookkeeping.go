package orders

import (
	"time"

	"github.com/angelmondragon/comptoir-backend/internal/catalog"
	"github.com/angelmondragon/comptoir-backend/pkg/db/models"
	"github.com/angelmondragon/comptoir-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/comptoir-backend/pkg/errors"
)

var (
	// ErrNothingToPay is returned when paying a table without order lines.
	ErrNothingToPay = pkgerrors.New(pkgerrors.CodeStateConflict, "Aucune commande à payer")
	// ErrOccupiedTableDeletion is returned when deleting a table with open lines.
	ErrOccupiedTableDeletion = pkgerrors.New(pkgerrors.CodeConflict, "Impossible de supprimer une table occupée")
	// ErrInvalidQuantity is returned for quantities below one.
	ErrInvalidQuantity = pkgerrors.New(pkgerrors.CodeValidation, "la quantité doit être au moins 1")
)

// CurrentPrice is the unit price of article in mode.
func CurrentPrice(article models.Article, mode enums.Mode) models.Amount {
	if mode == enums.ModeBar {
		return article.PriceBar
	}
	return article.PriceSnackbar
}

// AddLine adds qty units of article to table. An existing line for the
// article keeps its price; a new line is priced in mode. The returned
// article carries the decremented stock. Inputs are not modified.
func AddLine(table models.Table, article models.Article, qty int, mode enums.Mode) (models.Table, models.Article, error) {
	if qty < 1 {
		return table, article, ErrInvalidQuantity
	}
	if qty > article.Stock {
		return table, article, catalog.ErrInsufficientStock
	}

	next := cloneTable(table)
	if i := next.LineIndex(article.ID); i >= 0 {
		next.Orders[i].Quantity += qty
	} else {
		next.Orders = append(next.Orders, models.OrderLine{
			ArticleID:   article.ID,
			ArticleName: article.Name,
			Quantity:    qty,
			Price:       CurrentPrice(article, mode),
		})
	}
	next.Recompute()

	article.Stock -= qty
	return next, article, nil
}

// RemoveLine drops the line for articleID. The removed line is nil when the
// table had none, in which case the table is returned unchanged.
func RemoveLine(table models.Table, articleID string) (models.Table, *models.OrderLine) {
	i := table.LineIndex(articleID)
	if i < 0 {
		return table, nil
	}
	next := cloneTable(table)
	removed := next.Orders[i]
	next.Orders = append(next.Orders[:i], next.Orders[i+1:]...)
	next.Recompute()
	return next, &removed
}

// Pay settles table: the payment captures the current lines and total, and
// the table is reset to available. Stock is not touched.
func Pay(table models.Table, mode enums.Mode, recordedBy string, now time.Time) (models.Table, models.Payment, error) {
	if len(table.Orders) == 0 {
		return table, models.Payment{}, ErrNothingToPay
	}
	settled := cloneTable(table)
	settled.Recompute()

	payment := models.Payment{
		TableName:  table.Name,
		Amount:     settled.Total,
		Items:      settled.Orders,
		Mode:       mode,
		RecordedBy: recordedBy,
		Date:       now.UTC(),
	}

	reset := table
	reset.Orders = []models.OrderLine{}
	reset.Recompute()
	return reset, payment, nil
}

func cloneTable(table models.Table) models.Table {
	out := table
	out.Orders = make([]models.OrderLine, len(table.Orders))
	copy(out.Orders, table.Orders)
	return out
}
