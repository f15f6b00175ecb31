package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CatalogEntry is a product document kept in the document store.
type CatalogEntry struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description,omitempty" json:"description"`
	Price         float64            `bson:"price" json:"price"`
	PriceOptionID uint               `bson:"price_option_id" json:"price_option_id"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}
