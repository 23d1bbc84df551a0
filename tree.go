package main

import (
	"context"
	"errors"
	"fmt"
)

// TreeNode represents single node of decision tree
type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	ClassLabel int     `json:"class_label"`
	IsLeaf     bool    `json:"is_leaf"`
}

// DecisionTree represents decision tree classifier stored as flat list
// of nodes where node 0 is the root
type DecisionTree struct {
	nodes []TreeNode
}

// NewDecisionTree creates decision tree from given nodes
func NewDecisionTree(nodes []TreeNode) (*DecisionTree, error) {
	if len(nodes) == 0 {
		return nil, errors.New("decision tree has no nodes")
	}
	for i, node := range nodes {
		if node.IsLeaf {
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(FeatureNames) {
			return nil, fmt.Errorf("node %d: feature index %d out of range", i, node.FeatureIdx)
		}
		if node.LeftChild <= i || node.LeftChild >= len(nodes) ||
			node.RightChild <= i || node.RightChild >= len(nodes) {
			return nil, fmt.Errorf("node %d: invalid children %d/%d", i, node.LeftChild, node.RightChild)
		}
	}
	return &DecisionTree{nodes: nodes}, nil
}

// Predict implements Classifier interface
func (dt *DecisionTree) Predict(ctx context.Context, features FeatureVector) ([]float64, error) {
	if len(dt.nodes) == 0 {
		return nil, errors.New("model not trained")
	}
	idx := 0
	// children always follow their parent, so walk terminates
	for {
		node := dt.nodes[idx]
		if node.IsLeaf {
			return []float64{float64(node.ClassLabel)}, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return nil, errors.New("feature index out of range")
		}
		next := node.RightChild
		if features[node.FeatureIdx] <= node.Threshold {
			next = node.LeftChild
		}
		if next <= idx || next >= len(dt.nodes) {
			return nil, errors.New("invalid tree state")
		}
		idx = next
	}
}
