package model

import (
	"time"

	"catalogfinder/internal/tree"
)

// TreeSnapshot is one immutable build of a catalog's partitioning tree,
// stored with everything the question layer needs: the node graph, the
// structural metrics and the attribute profiles. A rebuild inserts a new
// snapshot; existing snapshots are never overwritten while sessions read
// them.
type TreeSnapshot struct {
	ID           string                  `json:"id" bson:"_id,omitempty"`
	CatalogID    string                  `json:"catalogId" bson:"catalogId"`
	Root         *tree.NodeDoc           `json:"root" bson:"root"`
	Metrics      tree.TreeMetrics        `json:"metrics" bson:"metrics"`
	Profiles     []tree.AttributeProfile `json:"profiles" bson:"profiles"`
	FeatureNames []string                `json:"featureNames" bson:"featureNames"`
	Options      tree.Options            `json:"options" bson:"options"`
	CreatedAt    time.Time               `json:"createdAt" bson:"createdAt"`
}
