package tree

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Hyperplane is the decision boundary held by an internal node, exposed to
// the question layer for phrasing.
type Hyperplane struct {
	FeatureNames []string  `json:"featureNames" bson:"featureNames"`
	Weights      []float64 `json:"weights" bson:"weights"`
	Threshold    float64   `json:"threshold" bson:"threshold"`
	SampleCount  int       `json:"sampleCount" bson:"sampleCount"`
}

// sideOf is the single routing rule shared by construction and navigation:
// a projection at or below the threshold goes left.
func sideOf(projection, threshold float64) Side {
	if projection <= threshold {
		return SideLeft
	}
	return SideRight
}

// HyperplaneAt returns the decision boundary of an internal node, or nil for
// a leaf, signalling that recommendations should be shown instead.
func HyperplaneAt(n Node) *Hyperplane {
	in, ok := n.(*Internal)
	if !ok {
		return nil
	}
	return &Hyperplane{
		FeatureNames: in.FeatureNames,
		Weights:      in.Weights,
		Threshold:    in.Threshold,
		SampleCount:  in.Samples,
	}
}

// Project computes a product's position along a weight vector.
func Project(p ProductVector, weights []float64) (float64, error) {
	if len(p.Features) != len(weights) {
		return 0, fmt.Errorf("%w: product %s has %d features, weights have %d",
			ErrDimensionMismatch, p.ID, len(p.Features), len(weights))
	}
	return floats.Dot(weights, p.Features), nil
}

// SideFor routes a product across a hyperplane.
func SideFor(p ProductVector, weights []float64, threshold float64) (Side, error) {
	proj, err := Project(p, weights)
	if err != nil {
		return "", err
	}
	return sideOf(proj, threshold), nil
}

// Descend follows one answer into a child node.
func Descend(n Node, choice Side) (Node, error) {
	in, ok := n.(*Internal)
	if !ok {
		return nil, fmt.Errorf("%w: cannot descend from a leaf", ErrInvalidNode)
	}
	switch choice {
	case SideLeft:
		return in.Left, nil
	case SideRight:
		return in.Right, nil
	default:
		return nil, fmt.Errorf("%w: unknown side %q", ErrInvalidNode, choice)
	}
}

// LeafProducts returns the terminal product group of a leaf.
func LeafProducts(n Node) ([]ProductVector, error) {
	leaf, ok := n.(*Leaf)
	if !ok {
		return nil, fmt.Errorf("%w: node is not a leaf", ErrInvalidNode)
	}
	return leaf.Products, nil
}

// PathStep appends one answer to a node path. Paths identify nodes by their
// route from the root: "" is the root, "LR" is root's left child's right
// child. Path identity survives storage round-trips by construction.
func PathStep(path string, choice Side) string {
	if choice == SideLeft {
		return path + "L"
	}
	return path + "R"
}

// NodeAt resolves a node path against a tree, reporting ErrNodeNotFound for
// paths that run past a leaf or contain unknown steps.
func NodeAt(root Node, path string) (Node, error) {
	n := root
	for i := 0; i < len(path); i++ {
		var choice Side
		switch path[i] {
		case 'L':
			choice = SideLeft
		case 'R':
			choice = SideRight
		default:
			return nil, fmt.Errorf("%w: bad path step %q", ErrNodeNotFound, path[i])
		}
		next, err := Descend(n, choice)
		if err != nil {
			return nil, fmt.Errorf("%w: path %q runs past a leaf", ErrNodeNotFound, path[:i+1])
		}
		n = next
	}
	return n, nil
}

// Replay walks a stored answer sequence from the root, returning the node
// reached and its path. A replay over the same tree and answers always lands
// on the same node, which is what makes stored sessions auditable.
func Replay(root Node, choices []Side) (Node, string, error) {
	n := root
	path := ""
	for _, c := range choices {
		next, err := Descend(n, c)
		if err != nil {
			return nil, "", err
		}
		n = next
		path = PathStep(path, c)
	}
	return n, path, nil
}
