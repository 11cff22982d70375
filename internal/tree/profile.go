package tree

import (
	"fmt"
	"strings"

	"github.com/montanaflynn/stats"
)

// FeatureType classifies where a feature came from and how questions about
// it should be phrased.
type FeatureType string

const (
	FeatureNumeric     FeatureType = "numeric"
	FeatureCategorical FeatureType = "categorical"
	FeatureAttribute   FeatureType = "attribute"
	FeatureUnknown     FeatureType = "unknown"
)

// ValueRange holds the descriptive spread of one feature column.
type ValueRange struct {
	Min float64 `json:"min" bson:"min"`
	Q25 float64 `json:"q25" bson:"q25"`
	Q75 float64 `json:"q75" bson:"q75"`
	Max float64 `json:"max" bson:"max"`
}

// AttributeProfile is the per-feature metadata consulted when deciding
// whether, and how, to ask about a feature.
type AttributeProfile struct {
	Feature              string      `json:"feature" bson:"feature"`
	Type                 FeatureType `json:"type" bson:"type"`
	Range                ValueRange  `json:"valueRange" bson:"valueRange"`
	IsPreferenceRelevant bool        `json:"isPreferenceRelevant" bson:"isPreferenceRelevant"`
	Description          string      `json:"description" bson:"description"`
}

// Profile computes descriptive statistics for every feature across the whole
// encoded product set. Constant features are marked irrelevant so the
// question layer never asks about them.
func Profile(products []ProductVector, featureNames []string) []AttributeProfile {
	profiles := make([]AttributeProfile, len(featureNames))
	for j, name := range featureNames {
		profiles[j] = profileFeature(products, name, j)
	}
	return profiles
}

func profileFeature(products []ProductVector, name string, col int) AttributeProfile {
	p := AttributeProfile{Feature: name, Type: featureTypeOf(name)}
	if len(products) == 0 {
		p.Type = FeatureUnknown
		p.Description = name
		return p
	}

	values := make(stats.Float64Data, len(products))
	for i, prod := range products {
		values[i] = prod.Features[col]
	}

	min, _ := stats.Min(values)
	max, _ := stats.Max(values)
	q25, err := stats.Percentile(values, 25)
	if err != nil {
		q25 = min
	}
	q75, err := stats.Percentile(values, 75)
	if err != nil {
		q75 = max
	}
	p.Range = ValueRange{Min: min, Q25: q25, Q75: q75, Max: max}
	p.IsPreferenceRelevant = max > min
	p.Description = describe(p)
	return p
}

func featureTypeOf(name string) FeatureType {
	if strings.Contains(name, "=") {
		return FeatureCategorical
	}
	return FeatureNumeric
}

func describe(p AttributeProfile) string {
	switch p.Type {
	case FeatureCategorical:
		col, val, _ := strings.Cut(p.Feature, "=")
		if !p.IsPreferenceRelevant {
			return fmt.Sprintf("every product has %s %s", col, val)
		}
		return fmt.Sprintf("whether %s is %s", col, val)
	case FeatureNumeric:
		if !p.IsPreferenceRelevant {
			return fmt.Sprintf("%s is always %g", p.Feature, p.Range.Min)
		}
		return fmt.Sprintf("%s from %g to %g, typically %g to %g",
			p.Feature, p.Range.Min, p.Range.Max, p.Range.Q25, p.Range.Q75)
	default:
		return p.Feature
	}
}
