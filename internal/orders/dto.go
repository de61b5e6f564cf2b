package orders

import "github.com/angelmondragon/comptoir-backend/pkg/db/models"

// CreateTableInput names a new table.
type CreateTableInput struct {
	Name string `json:"name" validate:"required,max=60"`
}

// AddLineInput adds units of an article to a table.
type AddLineInput struct {
	ArticleID string `json:"articleId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// PaymentResult is returned once a table is settled.
type PaymentResult struct {
	Table   models.Table   `json:"table"`
	Payment models.Payment `json:"payment"`
}
