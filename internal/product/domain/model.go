package domain

import (
	"time"

	"gorm.io/datatypes"
)

type Product struct {
	ProductID       int64             `json:"product_id" gorm:"column:product_id;primaryKey;autoIncrement:false"`
	Name            string            `json:"product_name" gorm:"column:product_name;type:text;not null"`
	Category        string            `json:"product_category" gorm:"column:product_category;type:text;not null"`
	CategorySlug    string            `json:"category_slug" gorm:"column:category_slug;type:varchar(128);not null;index"`
	InitialQuantity int64             `json:"initial_quantity" gorm:"column:initial_quantity;not null"`
	Attributes      datatypes.JSONMap `json:"attributes,omitempty" gorm:"column:attributes"`
	CreatedAt       time.Time         `json:"created_at" gorm:"not null"`
	UpdatedAt       time.Time         `json:"updated_at" gorm:"not null"`
}

func (Product) TableName() string { return "products" }
