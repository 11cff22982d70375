package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileQuantileOrdering(t *testing.T) {
	headers := []string{"price", "rating", "Category"}
	rows := [][]string{
		{"12.5", "3.2", "Coffee"},
		{"8.0", "4.8", "Tea"},
		{"15.0", "4.1", "Coffee"},
		{"22.0", "2.9", "Espresso"},
		{"5.5", "4.4", "Tea"},
	}
	products, featureNames, err := Encode(headers, rows)
	require.NoError(t, err)

	profiles := Profile(products, featureNames)
	require.Len(t, profiles, len(featureNames))

	for _, p := range profiles {
		assert.LessOrEqual(t, p.Range.Min, p.Range.Q25, p.Feature)
		assert.LessOrEqual(t, p.Range.Q25, p.Range.Q75, p.Feature)
		assert.LessOrEqual(t, p.Range.Q75, p.Range.Max, p.Feature)
	}
}

func TestProfileTypes(t *testing.T) {
	headers := []string{"price", "Category"}
	rows := [][]string{
		{"10", "Coffee"},
		{"20", "Tea"},
	}
	products, featureNames, err := Encode(headers, rows)
	require.NoError(t, err)

	profiles := Profile(products, featureNames)

	byName := map[string]AttributeProfile{}
	for _, p := range profiles {
		byName[p.Feature] = p
	}
	assert.Equal(t, FeatureNumeric, byName["price"].Type)
	assert.Equal(t, FeatureCategorical, byName["Category=Coffee"].Type)
	assert.Equal(t, FeatureCategorical, byName["Category=Tea"].Type)
}

func TestProfileConstantFeatureIrrelevant(t *testing.T) {
	headers := []string{"price", "rating"}
	rows := [][]string{
		{"10", "4"},
		{"20", "4"},
		{"30", "4"},
	}
	products, featureNames, err := Encode(headers, rows)
	require.NoError(t, err)

	profiles := Profile(products, featureNames)

	assert.True(t, profiles[0].IsPreferenceRelevant, "price varies")
	assert.False(t, profiles[1].IsPreferenceRelevant, "rating is constant")
}

func TestProfileCategoricalRelevance(t *testing.T) {
	headers := []string{"Origin"}
	rows := [][]string{
		{"Kenya"},
		{"Kenya"},
		{"Brazil"},
	}
	products, featureNames, err := Encode(headers, rows)
	require.NoError(t, err)

	profiles := Profile(products, featureNames)
	// Both one-hot columns carry 0s and 1s, so both are askable.
	for _, p := range profiles {
		assert.True(t, p.IsPreferenceRelevant, p.Feature)
	}
}

func TestProfileDescriptions(t *testing.T) {
	headers := []string{"price", "Category"}
	rows := [][]string{
		{"10", "Coffee"},
		{"20", "Coffee"},
	}
	products, featureNames, err := Encode(headers, rows)
	require.NoError(t, err)

	profiles := Profile(products, featureNames)
	assert.NotEmpty(t, profiles[0].Description)
	assert.Contains(t, profiles[0].Description, "price")
	assert.Contains(t, profiles[1].Description, "Coffee")
}

func TestProfileEmptyProducts(t *testing.T) {
	profiles := Profile(nil, []string{"price"})
	require.Len(t, profiles, 1)
	assert.Equal(t, FeatureUnknown, profiles[0].Type)
	assert.False(t, profiles[0].IsPreferenceRelevant)
}
