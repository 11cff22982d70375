package model

import "time"

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

// Session is one shopper's walk through a catalog's tree. Steps is the full
// audit trail: replaying its choices through the stored snapshot recovers
// NodePath deterministically.
type Session struct {
	ID              string           `json:"id" bson:"_id,omitempty"`
	CatalogID       string           `json:"catalogId" bson:"catalogId"`
	TreeID          string           `json:"treeId" bson:"treeId"`
	ShopperID       string           `json:"shopperId" bson:"shopperId"`
	Status          SessionStatus    `json:"status" bson:"status"`
	NodePath        string           `json:"nodePath" bson:"nodePath"`
	Steps           []NavigationStep `json:"steps" bson:"steps"`
	Recommendations []Recommendation `json:"recommendations,omitempty" bson:"recommendations,omitempty"`
	StartedAt       time.Time        `json:"startedAt" bson:"startedAt"`
	CompletedAt     *time.Time       `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
}
