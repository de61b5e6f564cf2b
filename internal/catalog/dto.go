package catalog

import (
	"github.com/angelmondragon/comptoir-backend/pkg/db/models"
)

// ListParams narrows the article list.
type ListParams struct {
	Search   string
	Category string
}

// CreateArticleInput is the payload accepted when adding an article.
type CreateArticleInput struct {
	Name          string        `json:"name" validate:"required,max=120"`
	Category      string        `json:"category" validate:"omitempty,max=60"`
	PriceBar      models.Amount `json:"priceBar" validate:"gte=0"`
	PriceSnackbar models.Amount `json:"priceSnackbar" validate:"gte=0"`
	Stock         int           `json:"stock" validate:"gte=0"`
	Unit          string        `json:"unit" validate:"omitempty,max=30"`
}

// UpdateArticleInput carries a partial update; nil fields are left untouched.
type UpdateArticleInput struct {
	Name          *string        `json:"name" validate:"omitempty,min=1,max=120"`
	Category      *string        `json:"category" validate:"omitempty,max=60"`
	PriceBar      *models.Amount `json:"priceBar" validate:"omitempty,gte=0"`
	PriceSnackbar *models.Amount `json:"priceSnackbar" validate:"omitempty,gte=0"`
	Stock         *int           `json:"stock" validate:"omitempty,gte=0"`
	Unit          *string        `json:"unit" validate:"omitempty,max=30"`
}

func (in UpdateArticleInput) patch() map[string]any {
	patch := map[string]any{}
	if in.Name != nil {
		patch["name"] = *in.Name
	}
	if in.Category != nil {
		patch["category"] = *in.Category
	}
	if in.PriceBar != nil {
		patch["priceBar"] = *in.PriceBar
	}
	if in.PriceSnackbar != nil {
		patch["priceSnackbar"] = *in.PriceSnackbar
	}
	if in.Stock != nil {
		patch["stock"] = *in.Stock
	}
	if in.Unit != nil {
		patch["unit"] = *in.Unit
	}
	return patch
}

// Options lists the choices offered by the article form.
type Options struct {
	Categories []string `json:"categories"`
	Units      []string `json:"units"`
}

var sampleArticles = []models.Article{
	{Name: "Bière Régab", Category: "Boissons", PriceBar: 1000, PriceSnackbar: 1200, Stock: 50, Unit: "bouteille"},
	{Name: "Coca-Cola", Category: "Boissons", PriceBar: 500, PriceSnackbar: 600, Stock: 30, Unit: "canette"},
	{Name: "Eau minérale", Category: "Boissons", PriceBar: 300, PriceSnackbar: 400, Stock: 100, Unit: "bouteille"},
	{Name: "Brochettes", Category: "Nourriture", PriceBar: 1500, PriceSnackbar: 1800, Stock: 20, Unit: "portion"},
	{Name: "Poisson braisé", Category: "Nourriture", PriceBar: 3000, PriceSnackbar: 3500, Stock: 8, Unit: "portion"},
}
