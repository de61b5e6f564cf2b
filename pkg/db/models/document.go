package models

import "time"

// Document is the row shape of the SQL document store.
type Document struct {
	Collection string    `gorm:"column:collection;primaryKey;size:64"`
	ID         string    `gorm:"column:id;primaryKey;size:128"`
	Data       string    `gorm:"column:data;type:text;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;not null"`
	UpdatedAt  time.Time `gorm:"column:updated_at;not null"`
}

func (Document) TableName() string {
	return "documents"
}
