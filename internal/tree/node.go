package tree

import "fmt"

// Side identifies which child of an internal node an answer routes to.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// ProductVector is one encoded catalog row: a stable identifier, an ordered
// numeric vector whose positions correspond 1:1 with the shared feature-name
// list, and the raw row kept for display.
type ProductVector struct {
	ID          string    `json:"id" bson:"id"`
	Features    []float64 `json:"features" bson:"features"`
	OriginalRow []string  `json:"originalRow" bson:"originalRow"`
}

// Node is either a *Leaf or an *Internal. Consumers switch on the concrete
// type; there is no third variant.
type Node interface {
	isNode()
}

// Internal is a decision node: products and answers are routed left when
// their projection onto Weights is at or below Threshold, right otherwise.
type Internal struct {
	FeatureNames []string
	Weights      []float64
	Threshold    float64
	Samples      int
	Left         Node
	Right        Node
}

// Leaf holds the terminal product group for one answer path. A leaf always
// holds at least one product.
type Leaf struct {
	FeatureNames []string
	Products     []ProductVector
}

func (*Internal) isNode() {}
func (*Leaf) isNode()     {}

// Node kind tags used in the stored form.
const (
	KindLeaf     = "leaf"
	KindInternal = "internal"
)

// NodeDoc is the storable form of a Node, tagged by Kind so the tree
// round-trips through BSON/JSON without loss.
type NodeDoc struct {
	Kind         string          `json:"kind" bson:"kind"`
	FeatureNames []string        `json:"featureNames" bson:"featureNames"`
	Weights      []float64       `json:"weights,omitempty" bson:"weights,omitempty"`
	Threshold    float64         `json:"threshold,omitempty" bson:"threshold,omitempty"`
	SampleCount  int             `json:"sampleCount,omitempty" bson:"sampleCount,omitempty"`
	Left         *NodeDoc        `json:"left,omitempty" bson:"left,omitempty"`
	Right        *NodeDoc        `json:"right,omitempty" bson:"right,omitempty"`
	Products     []ProductVector `json:"products,omitempty" bson:"products,omitempty"`
}

// ToDoc converts a built tree into its storable form.
func ToDoc(n Node) *NodeDoc {
	switch v := n.(type) {
	case *Leaf:
		return &NodeDoc{
			Kind:         KindLeaf,
			FeatureNames: v.FeatureNames,
			Products:     v.Products,
		}
	case *Internal:
		return &NodeDoc{
			Kind:         KindInternal,
			FeatureNames: v.FeatureNames,
			Weights:      v.Weights,
			Threshold:    v.Threshold,
			SampleCount:  v.Samples,
			Left:         ToDoc(v.Left),
			Right:        ToDoc(v.Right),
		}
	default:
		panic(fmt.Sprintf("tree: unknown node type %T", n))
	}
}

// FromDoc reconstructs a tree from its storable form.
func FromDoc(d *NodeDoc) (Node, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: nil document", ErrInvalidNode)
	}
	switch d.Kind {
	case KindLeaf:
		if len(d.Products) == 0 {
			return nil, fmt.Errorf("%w: leaf without products", ErrInvalidNode)
		}
		return &Leaf{FeatureNames: d.FeatureNames, Products: d.Products}, nil
	case KindInternal:
		if d.Left == nil || d.Right == nil {
			return nil, fmt.Errorf("%w: internal node missing children", ErrInvalidNode)
		}
		left, err := FromDoc(d.Left)
		if err != nil {
			return nil, err
		}
		right, err := FromDoc(d.Right)
		if err != nil {
			return nil, err
		}
		return &Internal{
			FeatureNames: d.FeatureNames,
			Weights:      d.Weights,
			Threshold:    d.Threshold,
			Samples:      d.SampleCount,
			Left:         left,
			Right:        right,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown node kind %q", ErrInvalidNode, d.Kind)
	}
}
