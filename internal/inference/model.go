package inference

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Model is a gradient-boosted tree ensemble exported from the training
// pipeline as JSON (feature names, per-tree split nodes, base score). The
// artifact is pre-trained; this package only scores it.
type Model struct {
	BaseScore float64    `json:"base_score"`
	Features  []string   `json:"features"`
	Trees     []treeNode `json:"trees"`

	baseMargin float64
}

type treeNode struct {
	NodeID         int        `json:"nodeid"`
	Split          string     `json:"split,omitempty"`
	SplitCondition float64    `json:"split_condition,omitempty"`
	Yes            int        `json:"yes,omitempty"`
	No             int        `json:"no,omitempty"`
	Missing        int        `json:"missing,omitempty"`
	Leaf           *float64   `json:"leaf,omitempty"`
	Children       []treeNode `json:"children,omitempty"`
}

// LoadModel reads a model artifact from disk.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	return ParseModel(data)
}

// ParseModel decodes and validates a model artifact.
func ParseModel(data []byte) (*Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}
	if len(m.Trees) == 0 {
		return nil, fmt.Errorf("model has no trees")
	}
	if m.BaseScore <= 0 || m.BaseScore >= 1 {
		m.BaseScore = 0.5
	}
	m.baseMargin = math.Log(m.BaseScore / (1 - m.BaseScore))
	return &m, nil
}

// Predict scores one shot, returning P(make) in [0,1].
func (m *Model) Predict(f ShotFeatures) float64 {
	v := f.Normalize().vector()
	margin := m.baseMargin
	for i := range m.Trees {
		margin += m.Trees[i].eval(v)
	}
	return sigmoid(margin)
}

func (n *treeNode) eval(v map[string]float64) float64 {
	if n.Leaf != nil {
		return *n.Leaf
	}
	// One-hot columns are stored sparsely; an absent column means 0.
	val := v[n.Split]
	next := n.No
	if val < n.SplitCondition {
		next = n.Yes
	}
	for i := range n.Children {
		if n.Children[i].NodeID == next {
			return n.Children[i].eval(v)
		}
	}
	// Malformed tree; treat the branch as contributing nothing.
	return 0
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
