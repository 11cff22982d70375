package tree

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Default build options, applied when the caller leaves a field zero.
const (
	DefaultMaxDepth    = 10
	DefaultMinLeafSize = 3
)

// Options bound tree growth. MaxDepth counts levels including the root;
// subsets at or below MinLeafSize become leaves.
type Options struct {
	MaxDepth    int `json:"maxDepth" bson:"maxDepth"`
	MinLeafSize int `json:"minLeafSize" bson:"minLeafSize"`
}

func (o Options) withDefaults() Options {
	if o.MaxDepth == 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.MinLeafSize == 0 {
		o.MinLeafSize = DefaultMinLeafSize
	}
	return o
}

// Build recursively partitions the encoded products with oblique hyperplane
// splits and returns the root of the resulting tree. Building is
// deterministic: the same products, feature names and options always produce
// a structurally identical tree.
func Build(products []ProductVector, featureNames []string, opts Options) (Node, error) {
	if len(products) == 0 {
		return nil, fmt.Errorf("%w: no products to build from", ErrEmptyInput)
	}
	if len(featureNames) == 0 {
		return nil, ErrNoFeatures
	}
	for _, p := range products {
		if len(p.Features) != len(featureNames) {
			return nil, fmt.Errorf("%w: product %s has %d features, expected %d",
				ErrDimensionMismatch, p.ID, len(p.Features), len(featureNames))
		}
	}
	opts = opts.withDefaults()
	if opts.MaxDepth < 1 || opts.MinLeafSize < 1 {
		return nil, fmt.Errorf("invalid build options: maxDepth=%d minLeafSize=%d",
			opts.MaxDepth, opts.MinLeafSize)
	}
	return grow(products, featureNames, 1, opts), nil
}

func grow(subset []ProductVector, featureNames []string, depth int, opts Options) Node {
	if len(subset) == 0 {
		// The split selection below never routes everything to one side, so
		// an empty subset means a broken caller, not bad data.
		panic("tree: grow called with empty subset")
	}
	if depth >= opts.MaxDepth || len(subset) <= opts.MinLeafSize || allIdentical(subset) {
		return &Leaf{FeatureNames: featureNames, Products: subset}
	}

	weights, threshold, ok := selectSplit(subset, featureNames)
	if !ok {
		return &Leaf{FeatureNames: featureNames, Products: subset}
	}

	var left, right []ProductVector
	for _, p := range subset {
		if sideOf(floats.Dot(weights, p.Features), threshold) == SideLeft {
			left = append(left, p)
		} else {
			right = append(right, p)
		}
	}

	return &Internal{
		FeatureNames: featureNames,
		Weights:      weights,
		Threshold:    threshold,
		Samples:      len(subset),
		Left:         grow(left, featureNames, depth+1, opts),
		Right:        grow(right, featureNames, depth+1, opts),
	}
}

// selectSplit picks the hyperplane for one subset: each feature is weighted
// by its within-subset variance (constant features get zero weight) and the
// threshold is the median of the resulting projections, falling back to the
// min/max midpoint if the median would leave one side empty. Returns ok=false
// when no split can produce two non-empty sides.
func selectSplit(subset []ProductVector, featureNames []string) ([]float64, float64, bool) {
	weights := make([]float64, len(featureNames))
	col := make([]float64, len(subset))
	total := 0.0
	for j := range featureNames {
		for i, p := range subset {
			col[i] = p.Features[j]
		}
		if v := stat.Variance(col, nil); v > 0 {
			weights[j] = v
			total += v
		}
	}
	if total == 0 {
		return nil, 0, false
	}
	floats.Scale(1/total, weights)

	proj := make([]float64, len(subset))
	for i, p := range subset {
		proj[i] = floats.Dot(weights, p.Features)
	}
	sorted := append([]float64(nil), proj...)
	sort.Float64s(sorted)
	min, max := sorted[0], sorted[len(sorted)-1]
	if min == max {
		return nil, 0, false
	}

	threshold := stat.Quantile(0.5, stat.LinInterp, sorted, nil)
	if !splitsBoth(proj, threshold) {
		// Midpoint always separates min from max once min < max.
		threshold = min + (max-min)/2
	}
	if !splitsBoth(proj, threshold) {
		return nil, 0, false
	}
	return weights, threshold, true
}

func splitsBoth(proj []float64, threshold float64) bool {
	var hasLeft, hasRight bool
	for _, v := range proj {
		if sideOf(v, threshold) == SideLeft {
			hasLeft = true
		} else {
			hasRight = true
		}
	}
	return hasLeft && hasRight
}

func allIdentical(subset []ProductVector) bool {
	first := subset[0].Features
	for _, p := range subset[1:] {
		if !floats.Equal(first, p.Features) {
			return false
		}
	}
	return true
}
