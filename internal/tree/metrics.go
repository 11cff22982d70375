package tree

import (
	"time"

	"gonum.org/v1/gonum/stat"
)

// TreeMetrics summarizes the structure of a completed tree.
type TreeMetrics struct {
	Depth           int     `json:"depth" bson:"depth"`
	LeafCount       int     `json:"leafCount" bson:"leafCount"`
	AverageLeafSize float64 `json:"averageLeafSize" bson:"averageLeafSize"`
	MaxLeafSize     int     `json:"maxLeafSize" bson:"maxLeafSize"`
	MinLeafSize     int     `json:"minLeafSize" bson:"minLeafSize"`
	BuildTimeMs     int64   `json:"buildTimeMs" bson:"buildTimeMs"`
}

// Metrics derives structural statistics from a built tree. Pure and
// read-only; runs once after a build.
func Metrics(root Node, buildTime time.Duration) TreeMetrics {
	sizes := leafSizes(root, nil)

	m := TreeMetrics{
		Depth:       treeDepth(root),
		LeafCount:   len(sizes),
		BuildTimeMs: buildTime.Milliseconds(),
	}
	if len(sizes) == 0 {
		return m
	}

	m.AverageLeafSize = stat.Mean(sizes, nil)
	m.MaxLeafSize = int(sizes[0])
	m.MinLeafSize = int(sizes[0])
	for _, s := range sizes[1:] {
		if int(s) > m.MaxLeafSize {
			m.MaxLeafSize = int(s)
		}
		if int(s) < m.MinLeafSize {
			m.MinLeafSize = int(s)
		}
	}
	return m
}

func treeDepth(n Node) int {
	switch v := n.(type) {
	case *Leaf:
		return 1
	case *Internal:
		l, r := treeDepth(v.Left), treeDepth(v.Right)
		if l > r {
			return 1 + l
		}
		return 1 + r
	default:
		return 0
	}
}

func leafSizes(n Node, sizes []float64) []float64 {
	switch v := n.(type) {
	case *Leaf:
		return append(sizes, float64(len(v.Products)))
	case *Internal:
		sizes = leafSizes(v.Left, sizes)
		return leafSizes(v.Right, sizes)
	default:
		return sizes
	}
}
