package service

import (
	"fmt"
	"sort"
	"strings"

	"catalogfinder/internal/model"
	"catalogfinder/internal/tree"
)

// When the two heaviest features are this close, the question compares the
// two attributes instead of asking about one.
const comparableWeightRatio = 1.5

// QuestionService phrases a node's hyperplane as a human question, using the
// catalog-wide attribute profiles for ranges and wording.
type QuestionService struct{}

// NewQuestionService creates a new question service
func NewQuestionService() *QuestionService {
	return &QuestionService{}
}

type rankedFeature struct {
	name    string
	weight  float64
	profile tree.AttributeProfile
}

// Phrase builds the question for one internal node. Returns nil for a leaf
// hyperplane (callers pass the result of tree.HyperplaneAt).
func (s *QuestionService) Phrase(hp *tree.Hyperplane, nodePath string, profiles []tree.AttributeProfile) *model.Question {
	if hp == nil {
		return nil
	}

	q := &model.Question{
		NodePath:     nodePath,
		FeatureNames: hp.FeatureNames,
		Weights:      hp.Weights,
		Threshold:    hp.Threshold,
	}

	ranked := rankFeatures(hp, profiles)
	switch {
	case len(ranked) == 0:
		// Every weighted feature profiled as degenerate; fall back to a
		// neutral split question rather than naming a constant attribute.
		q.Kind = model.QuestionNumeric
		q.Text = "Which group of products fits you better?"
		q.LeftLabel = "First group"
		q.RightLabel = "Second group"
	case len(ranked) > 1 && ranked[0].weight <= comparableWeightRatio*ranked[1].weight &&
		ranked[0].profile.Type == tree.FeatureNumeric && ranked[1].profile.Type == tree.FeatureNumeric:
		s.phraseComparative(q, ranked[0], ranked[1])
	case ranked[0].profile.Type == tree.FeatureCategorical:
		s.phraseCategorical(q, hp, ranked[0], profiles)
	default:
		s.phraseNumeric(q, ranked[0])
	}
	return q
}

// phraseComparative pairs two raw attributes in one question.
func (s *QuestionService) phraseComparative(q *model.Question, a, b rankedFeature) {
	q.Kind = model.QuestionAttribute
	q.Text = fmt.Sprintf("Do you lean toward lower or higher %s and %s?", a.name, b.name)
	q.LeftLabel = fmt.Sprintf("Lower %s and %s", a.name, b.name)
	q.RightLabel = fmt.Sprintf("Higher %s and %s", a.name, b.name)
}

func (s *QuestionService) phraseCategorical(q *model.Question, hp *tree.Hyperplane, f rankedFeature, profiles []tree.AttributeProfile) {
	q.Kind = model.QuestionCategorical
	col, val, _ := strings.Cut(f.name, "=")
	q.Text = fmt.Sprintf("Do you want %s to be %s?", col, val)
	// Route a representative product holding the value and one without it
	// across the hyperplane; whichever side the holder lands on is "yes".
	yes, no := categoricalSides(hp, f.name, profiles)
	switch {
	case yes == tree.SideLeft && no == tree.SideRight:
		q.LeftLabel = "Yes"
		q.RightLabel = "No"
	case yes == tree.SideRight && no == tree.SideLeft:
		q.LeftLabel = "No"
		q.RightLabel = "Yes"
	case f.weight <= hp.Threshold:
		// Both representatives land on one side, so the other weights
		// dominate locally; orient by the feature's own contribution.
		q.LeftLabel = "Yes"
		q.RightLabel = "No"
	default:
		q.LeftLabel = "No"
		q.RightLabel = "Yes"
	}
}

// categoricalSides routes two synthetic products across the hyperplane: both
// sit at every feature's catalog-wide interquartile midpoint, differing only
// in whether they hold the target one-hot value.
func categoricalSides(hp *tree.Hyperplane, target string, profiles []tree.AttributeProfile) (tree.Side, tree.Side) {
	idx := -1
	base := make([]float64, len(hp.FeatureNames))
	byName := make(map[string]tree.AttributeProfile, len(profiles))
	for _, p := range profiles {
		byName[p.Feature] = p
	}
	for i, name := range hp.FeatureNames {
		if name == target {
			idx = i
		}
		if p, ok := byName[name]; ok {
			base[i] = p.Range.Q25 + (p.Range.Q75-p.Range.Q25)/2
		}
	}
	if idx < 0 {
		return "", ""
	}

	holder := append([]float64(nil), base...)
	holder[idx] = 1
	base[idx] = 0

	yes, err := tree.SideFor(tree.ProductVector{Features: holder}, hp.Weights, hp.Threshold)
	if err != nil {
		return "", ""
	}
	no, err := tree.SideFor(tree.ProductVector{Features: base}, hp.Weights, hp.Threshold)
	if err != nil {
		return "", ""
	}
	return yes, no
}

func (s *QuestionService) phraseNumeric(q *model.Question, f rankedFeature) {
	q.Kind = model.QuestionNumeric
	pivot := describePivot(f)
	q.Text = fmt.Sprintf("Are you looking for %s around %s or below?", f.name, pivot)
	q.LeftLabel = fmt.Sprintf("Up to %s", pivot)
	q.RightLabel = fmt.Sprintf("Above %s", pivot)
}

// describePivot picks a display value from the feature's catalog-wide
// spread. The hyperplane threshold lives in projection space, so the
// profile's interquartile midpoint reads better to a shopper.
func describePivot(f rankedFeature) string {
	r := f.profile.Range
	mid := r.Q25 + (r.Q75-r.Q25)/2
	return fmt.Sprintf("%.4g", mid)
}

// rankFeatures orders the hyperplane's features by weight, dropping zero
// weights and features the profiler marked irrelevant. Ties break on name so
// phrasing stays deterministic.
func rankFeatures(hp *tree.Hyperplane, profiles []tree.AttributeProfile) []rankedFeature {
	byName := make(map[string]tree.AttributeProfile, len(profiles))
	for _, p := range profiles {
		byName[p.Feature] = p
	}

	var ranked []rankedFeature
	for i, name := range hp.FeatureNames {
		if i >= len(hp.Weights) || hp.Weights[i] == 0 {
			continue
		}
		profile, ok := byName[name]
		if !ok || !profile.IsPreferenceRelevant {
			continue
		}
		ranked = append(ranked, rankedFeature{name: name, weight: hp.Weights[i], profile: profile})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].weight != ranked[j].weight {
			return ranked[i].weight > ranked[j].weight
		}
		return ranked[i].name < ranked[j].name
	})
	return ranked
}
