package main

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Softmax represents multinomial logistic regression classifier
type Softmax struct {
	weights [][]float64
	bias    []float64
}

// NewSoftmax creates softmax classifier from given weights (classes x
// features) and per-class bias
func NewSoftmax(weights [][]float64, bias []float64) (*Softmax, error) {
	if len(weights) < 2 {
		return nil, errors.New("softmax model needs at least two classes")
	}
	if len(bias) != len(weights) {
		return nil, fmt.Errorf("softmax model has %d classes but %d bias values", len(weights), len(bias))
	}
	for i, row := range weights {
		if len(row) != len(FeatureNames) {
			return nil, fmt.Errorf("class %d has %d weights, expect %d", i, len(row), len(FeatureNames))
		}
	}
	return &Softmax{weights: weights, bias: bias}, nil
}

// Predict implements Classifier interface and returns class probabilities
func (s *Softmax) Predict(ctx context.Context, features FeatureVector) ([]float64, error) {
	if len(features) != len(FeatureNames) {
		return nil, fmt.Errorf("got %d features, expect %d", len(features), len(FeatureNames))
	}
	scores := make([]float64, len(s.weights))
	maxScore := math.Inf(-1)
	for c, row := range s.weights {
		score := s.bias[c]
		for i, w := range row {
			score += w * features[i]
		}
		scores[c] = score
		if score > maxScore {
			maxScore = score
		}
	}
	// subtract max score to keep exponent in range
	var sum float64
	for c, score := range scores {
		scores[c] = math.Exp(score - maxScore)
		sum += scores[c]
	}
	if sum == 0 || math.IsNaN(sum) {
		return nil, errors.New("unable to normalize class scores")
	}
	for c := range scores {
		scores[c] /= sum
	}
	return scores, nil
}
