package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeNumericAndCategorical(t *testing.T) {
	headers := []string{"product_id", "price", "rating", "Category"}
	rows := [][]string{
		{"p1", "10", "4.5", "Coffee"},
		{"p2", "20", "3.0", "Tea"},
		{"p3", "30", "5.0", "Coffee"},
	}

	products, featureNames, err := Encode(headers, rows)
	require.NoError(t, err)

	assert.Equal(t, []string{"price", "rating", "Category=Coffee", "Category=Tea"}, featureNames)
	require.Len(t, products, 3)
	for _, p := range products {
		assert.Len(t, p.Features, len(featureNames))
	}

	assert.Equal(t, "p1", products[0].ID)
	assert.Equal(t, []float64{10, 4.5, 1, 0}, products[0].Features)
	assert.Equal(t, []float64{20, 3, 0, 1}, products[1].Features)
	assert.Equal(t, rows[2], products[2].OriginalRow)
}

func TestEncodeExcludesIdentifierByName(t *testing.T) {
	headers := []string{"Product_ID", "price"}
	rows := [][]string{{"a", "1"}, {"b", "2"}}

	_, featureNames, err := Encode(headers, rows)
	require.NoError(t, err)
	assert.Equal(t, []string{"price"}, featureNames)
}

func TestEncodeExcludesSequentialIntegerColumn(t *testing.T) {
	headers := []string{"code", "price"}
	rows := [][]string{{"3", "9.5"}, {"1", "8.0"}, {"2", "7.5"}, {"4", "6.0"}}

	products, featureNames, err := Encode(headers, rows)
	require.NoError(t, err)
	assert.Equal(t, []string{"price"}, featureNames)
	// The detected identifier column still names the products.
	assert.Equal(t, "3", products[0].ID)
}

func TestEncodeKeepsTwoRowIntegerColumn(t *testing.T) {
	// Two integers in a row are a short feature, not a row index.
	headers := []string{"price"}
	rows := [][]string{{"1"}, {"2"}}

	products, featureNames, err := Encode(headers, rows)
	require.NoError(t, err)
	assert.Equal(t, []string{"price"}, featureNames)
	assert.Equal(t, []float64{1}, products[0].Features)
	assert.Equal(t, []float64{2}, products[1].Features)
}

func TestEncodeKeepsContiguousColumnBesideNamedID(t *testing.T) {
	// With a labelled ID column present, a contiguous integer column is a
	// feature, not a second index.
	headers := []string{"Product_ID", "price"}
	rows := [][]string{{"a", "10"}, {"b", "11"}, {"c", "12"}}

	products, featureNames, err := Encode(headers, rows)
	require.NoError(t, err)
	assert.Equal(t, []string{"price"}, featureNames)
	assert.Equal(t, "a", products[0].ID)
	assert.Equal(t, []float64{10}, products[0].Features)
}

func TestEncodeKeepsNonSequentialIntegers(t *testing.T) {
	headers := []string{"stock", "price"}
	rows := [][]string{{"5", "9.5"}, {"120", "8.0"}, {"7", "7.5"}}

	_, featureNames, err := Encode(headers, rows)
	require.NoError(t, err)
	assert.Equal(t, []string{"stock", "price"}, featureNames)
}

func TestEncodeOneHotCountsDistinctValues(t *testing.T) {
	headers := []string{"roast"}
	rows := [][]string{{"light"}, {"dark"}, {"medium"}, {"dark"}, {"light"}}

	_, featureNames, err := Encode(headers, rows)
	require.NoError(t, err)
	assert.Equal(t, []string{"roast=light", "roast=dark", "roast=medium"}, featureNames)
}

func TestEncodeMissingNumericCellIsZero(t *testing.T) {
	headers := []string{"price"}
	rows := [][]string{{"4.5"}, {""}, {"2"}}

	products, _, err := Encode(headers, rows)
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, products[1].Features)
}

func TestEncodeEmptyInput(t *testing.T) {
	_, _, err := Encode(nil, [][]string{{"1"}})
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, _, err = Encode([]string{"price"}, nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestEncodeNoUsableFeatures(t *testing.T) {
	headers := []string{"id"}
	rows := [][]string{{"a"}, {"b"}}

	_, _, err := Encode(headers, rows)
	assert.ErrorIs(t, err, ErrNoFeatures)
}

func TestEncodeDeterministicOrder(t *testing.T) {
	headers := []string{"Category", "price"}
	rows := [][]string{
		{"Coffee", "10"},
		{"Tea", "12"},
		{"Espresso", "14"},
	}

	_, first, err := Encode(headers, rows)
	require.NoError(t, err)
	_, second, err := Encode(headers, rows)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
