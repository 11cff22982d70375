package tree

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeLevelTree(t *testing.T) Node {
	t.Helper()
	headers := []string{"price", "rating"}
	rows := [][]string{
		{"5", "1.0"},
		{"10", "2.0"},
		{"20", "3.0"},
		{"40", "4.0"},
		{"80", "4.5"},
		{"160", "5.0"},
		{"320", "3.5"},
	}
	products, featureNames, err := Encode(headers, rows)
	require.NoError(t, err)
	root, err := Build(products, featureNames, Options{MaxDepth: 3, MinLeafSize: 1})
	require.NoError(t, err)
	require.IsType(t, &Internal{}, root)
	return root
}

func TestHyperplaneAt(t *testing.T) {
	root := threeLevelTree(t)

	hp := HyperplaneAt(root)
	require.NotNil(t, hp)
	assert.Equal(t, 7, hp.SampleCount)
	assert.Len(t, hp.Weights, len(hp.FeatureNames))

	var leaf Node = &Leaf{Products: []ProductVector{{ID: "x"}}}
	assert.Nil(t, HyperplaneAt(leaf))
}

func TestProjectDimensionMismatch(t *testing.T) {
	p := ProductVector{ID: "p1", Features: []float64{1, 2, 3}}

	_, err := Project(p, []float64{0.5, 0.5})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	got, err := Project(p, []float64{1, 0, 2})
	require.NoError(t, err)
	assert.Equal(t, 7.0, got)
}

func TestSideForMatchesBuildRouting(t *testing.T) {
	root := threeLevelTree(t)
	internal := root.(*Internal)

	// Every product stored under the left child must route left, and
	// likewise for the right child.
	var check func(n Node, want Side)
	check = func(n Node, want Side) {
		walkLeaves(n, func(l *Leaf) {
			for _, p := range l.Products {
				side, err := SideFor(p, internal.Weights, internal.Threshold)
				require.NoError(t, err)
				assert.Equal(t, want, side, p.ID)
			}
		})
	}
	check(internal.Left, SideLeft)
	check(internal.Right, SideRight)
}

func TestDescendAndLeafProducts(t *testing.T) {
	root := threeLevelTree(t)

	left, err := Descend(root, SideLeft)
	require.NoError(t, err)
	require.NotNil(t, left)

	_, err = Descend(root, Side("sideways"))
	assert.ErrorIs(t, err, ErrInvalidNode)

	_, err = LeafProducts(root)
	assert.ErrorIs(t, err, ErrInvalidNode)

	leaf := &Leaf{Products: []ProductVector{{ID: "only"}}}
	_, err = Descend(leaf, SideLeft)
	assert.ErrorIs(t, err, ErrInvalidNode)

	products, err := LeafProducts(leaf)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestReplayMatchesDirectTraversal(t *testing.T) {
	root := threeLevelTree(t)

	direct, err := Descend(root, SideLeft)
	require.NoError(t, err)
	if _, ok := direct.(*Internal); ok {
		direct, err = Descend(direct, SideRight)
		require.NoError(t, err)

		replayed, path, err := Replay(root, []Side{SideLeft, SideRight})
		require.NoError(t, err)
		assert.Equal(t, "LR", path)
		assert.Same(t, direct, replayed)

		byPath, err := NodeAt(root, path)
		require.NoError(t, err)
		assert.Same(t, direct, byPath)
	}
}

func TestNodeAtErrors(t *testing.T) {
	root := threeLevelTree(t)

	_, err := NodeAt(root, "X")
	assert.ErrorIs(t, err, ErrNodeNotFound)

	_, err = NodeAt(root, "LLLLLLLLLL")
	assert.ErrorIs(t, err, ErrNodeNotFound)

	n, err := NodeAt(root, "")
	require.NoError(t, err)
	assert.Same(t, root, n)
}

func TestNodeDocRoundTrip(t *testing.T) {
	root := threeLevelTree(t)

	doc := ToDoc(root)
	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	var decoded NodeDoc
	require.NoError(t, json.Unmarshal(raw, &decoded))

	rebuilt, err := FromDoc(&decoded)
	require.NoError(t, err)
	assert.Equal(t, ToDoc(rebuilt), doc)

	// Navigation after the round-trip reaches the same partition.
	leafBefore, _, err := Replay(root, []Side{SideLeft})
	require.NoError(t, err)
	leafAfter, _, err := Replay(rebuilt, []Side{SideLeft})
	require.NoError(t, err)
	assert.Equal(t, ToDoc(leafBefore), ToDoc(leafAfter))
}

func TestFromDocRejectsMalformed(t *testing.T) {
	_, err := FromDoc(nil)
	assert.ErrorIs(t, err, ErrInvalidNode)

	_, err = FromDoc(&NodeDoc{Kind: "mystery"})
	assert.ErrorIs(t, err, ErrInvalidNode)

	_, err = FromDoc(&NodeDoc{Kind: KindLeaf})
	assert.ErrorIs(t, err, ErrInvalidNode)

	_, err = FromDoc(&NodeDoc{Kind: KindInternal, Left: &NodeDoc{Kind: KindLeaf}})
	assert.ErrorIs(t, err, ErrInvalidNode)
}
