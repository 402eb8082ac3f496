package entity

import "baybook/core/entity"

// Bay is a physical simulator bay that slots are generated against.
type Bay struct {
	Name        string  `db:"name" json:"name"`
	Slug        string  `db:"slug" json:"slug"`
	Description *string `db:"description" json:"description,omitempty"`
	entity.BaseEntity
}
