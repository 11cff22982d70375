package model

import "time"

// Catalog is the raw uploaded product table, kept verbatim for audit and for
// rebuilding the tree with different options.
type Catalog struct {
	ID           string     `json:"id" bson:"_id,omitempty"`
	MerchantID   string     `json:"merchantId" bson:"merchantId"`
	Name         string     `json:"name" bson:"name"`
	Headers      []string   `json:"headers" bson:"headers"`
	Rows         [][]string `json:"rows" bson:"rows"`
	ProductCount int        `json:"productCount" bson:"productCount"`
	CreatedAt    time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt" bson:"updatedAt"`
}
