package model

import (
	"time"

	"catalogfinder/internal/tree"
)

// QuestionKind mirrors the kind of attribute the question is phrased around.
type QuestionKind string

const (
	QuestionNumeric     QuestionKind = "numeric"
	QuestionCategorical QuestionKind = "categorical"
	QuestionAttribute   QuestionKind = "attribute" // compares two raw attributes
)

// Question wraps one internal node's hyperplane together with the generated
// text and the two opposing choices shown to the shopper.
type Question struct {
	NodePath     string       `json:"nodePath" bson:"nodePath"`
	Text         string       `json:"text" bson:"text"`
	LeftLabel    string       `json:"leftLabel" bson:"leftLabel"`
	RightLabel   string       `json:"rightLabel" bson:"rightLabel"`
	Kind         QuestionKind `json:"kind" bson:"kind"`
	FeatureNames []string     `json:"featureNames" bson:"featureNames"`
	Weights      []float64    `json:"weights" bson:"weights"`
	Threshold    float64      `json:"threshold" bson:"threshold"`
}

// Answer records which choice was taken and when.
type Answer struct {
	Choice     tree.Side `json:"choice" bson:"choice"`
	AnsweredAt time.Time `json:"answeredAt" bson:"answeredAt"`
}

// NavigationStep pairs the node visited, the question shown and the answer
// given; Answer is nil while the step is still pending.
type NavigationStep struct {
	NodePath string   `json:"nodePath" bson:"nodePath"`
	Question Question `json:"question" bson:"question"`
	Answer   *Answer  `json:"answer,omitempty" bson:"answer,omitempty"`
}

// Recommendation is one product from the leaf a shopper ended up in.
type Recommendation struct {
	ProductID string   `json:"productId" bson:"productId"`
	Row       []string `json:"row" bson:"row"`
}
