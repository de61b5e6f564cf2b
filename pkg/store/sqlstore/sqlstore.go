// Package sqlstore keeps documents in the relational "documents" table.
package sqlstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/comptoir-backend/pkg/db/models"
	"github.com/angelmondragon/comptoir-backend/pkg/store"
)

type Backend struct {
	db *gorm.DB
}

func New(db *gorm.DB) (*Backend, error) {
	if db == nil {
		return nil, errors.New("gorm db required")
	}
	return &Backend{db: db}, nil
}

// WithTx returns a backend bound to tx.
func (b *Backend) WithTx(tx *gorm.DB) *Backend {
	if tx == nil {
		return b
	}
	return &Backend{db: tx}
}

func (b *Backend) List(ctx context.Context, coll store.Name) ([]store.Document, error) {
	var rows []models.Document
	if err := b.db.WithContext(ctx).
		Where("collection = ?", string(coll)).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]store.Document, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDocument(row))
	}
	return out, nil
}

func (b *Backend) Get(ctx context.Context, coll store.Name, id string) (*store.Document, error) {
	var row models.Document
	err := b.db.WithContext(ctx).
		Where("collection = ? AND id = ?", string(coll), id).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	doc := toDocument(row)
	return &doc, nil
}

func (b *Backend) Put(ctx context.Context, doc store.Document) error {
	if !json.Valid(doc.Data) {
		return fmt.Errorf("document %s/%s is not valid json", doc.Collection, doc.ID)
	}
	row := models.Document{
		Collection: string(doc.Collection),
		ID:         doc.ID,
		Data:       string(doc.Data),
		CreatedAt:  doc.CreatedAt.UTC(),
		UpdatedAt:  doc.UpdatedAt.UTC(),
	}
	return b.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "collection"}, {Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).
		Create(&row).Error
}

func (b *Backend) Delete(ctx context.Context, coll store.Name, id string) error {
	res := b.db.WithContext(ctx).
		Where("collection = ? AND id = ?", string(coll), id).
		Delete(&models.Document{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (b *Backend) Ping(ctx context.Context) error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func toDocument(row models.Document) store.Document {
	return store.Document{
		Collection: store.Name(row.Collection),
		ID:         row.ID,
		Data:       json.RawMessage(row.Data),
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}
