package main

// classifier module
//
// Copyright (c) 2023 - Valentin Kuznetsov <vkuznet@gmail.com>
//

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"
)

// Classifier represents trained model which maps feature vector to
// its raw output, either single class id or per-class probabilities
type Classifier interface {
	Predict(ctx context.Context, features FeatureVector) ([]float64, error)
}

// ModelTypes defines supported model bundle types
var ModelTypes = []string{"decision_tree", "softmax"}

// ModelBundle represents model file content
type ModelBundle struct {
	Type     string          `json:"type"`     // model type, e.g. decision_tree
	Features []string        `json:"features"` // feature names used in training
	Nodes    []TreeNode      `json:"nodes"`    // decision tree nodes
	Weights  [][]float64     `json:"weights"`  // softmax weights, classes x features
	Bias     []float64       `json:"bias"`     // softmax bias per class
	Meta     json.RawMessage `json:"meta"`     // optional training meta-data
}

// LoadModel loads classifier from given model bundle file
func LoadModel(fname string) (Classifier, error) {
	data, err := os.ReadFile(filepath.Clean(fname))
	if err != nil {
		return nil, err
	}
	var bundle ModelBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("unable to parse model bundle %s: %w", fname, err)
	}
	if err := checkFeatures(bundle.Features); err != nil {
		return nil, err
	}
	switch bundle.Type {
	case "decision_tree":
		return NewDecisionTree(bundle.Nodes)
	case "softmax":
		return NewSoftmax(bundle.Weights, bundle.Bias)
	}
	return nil, fmt.Errorf("model type '%s' is not supported, please provide one of %v", bundle.Type, ModelTypes)
}

// helper function to check that model was trained on our feature order
func checkFeatures(names []string) error {
	if len(names) == 0 {
		return nil
	}
	if len(names) != len(FeatureNames) {
		return fmt.Errorf("model uses %d features, expect %d %v", len(names), len(FeatureNames), FeatureNames)
	}
	for i, name := range names {
		if name != FeatureNames[i] {
			return fmt.Errorf("model feature #%d is %s, expect %s", i, name, FeatureNames[i])
		}
	}
	return nil
}

// initClassifier returns classifier configured for the server, nil
// classifier means that predictions are not available
func initClassifier() Classifier {
	if Config.Backend != "" {
		timeout := time.Duration(Config.BackendTimeout) * time.Second
		log.Printf("use ML backend %s for model %s", Config.Backend, Config.ModelName)
		return NewRemoteClassifier(Config.Backend, Config.ModelName, timeout)
	}
	model, err := LoadModel(Config.ModelFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("WARNING: %s not found in root folder", Config.ModelFile)
		} else {
			log.Printf("WARNING: unable to load %s, error %v", Config.ModelFile, err)
		}
		return nil
	}
	log.Printf("loaded model %s", Config.ModelFile)
	return model
}

// classID converts classifier output into class id. Single value
// is truncated towards zero, multiple values are treated as class
// probabilities and index of the largest one is returned.
func classID(output []float64) (int, error) {
	switch len(output) {
	case 0:
		return 0, errors.New("empty classifier output")
	case 1:
		v := output[0]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("classifier output %v is not a number", v)
		}
		return int(v), nil
	}
	idx := 0
	for i, v := range output {
		if v > output[idx] {
			idx = i
		}
	}
	return idx, nil
}
