package classifier

import (
	"math"
	"sort"
	"sync"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

// DefaultTemperature controls how sharply confidence falls off with
// template distance.
const DefaultTemperature = 0.5

// Template is a labelled reference pose. Landmarks are wrist-relative and
// scale-normalized (see detector.HandLandmarks.Normalize).
type Template struct {
	ID        string
	Name      string
	Label     gesture.Label
	Landmarks []detector.Point3D
}

// Match is the distance between an input pose and one template.
type Match struct {
	Template *Template
	Score    float64 // 1 / (1 + Distance), higher is better
	Distance float64
}

// TemplateClassifier classifies poses by nearest labelled template.
// Confidence is a softmax over the best distance per label, so it measures
// how clearly one label wins rather than how close the pose is.
type TemplateClassifier struct {
	mu          sync.RWMutex
	templates   []*Template
	temperature float64
}

// NewTemplateClassifier creates an empty classifier. A non-positive
// temperature selects DefaultTemperature.
func NewTemplateClassifier(temperature float64) *TemplateClassifier {
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	return &TemplateClassifier{temperature: temperature}
}

// AddTemplate adds a template.
func (c *TemplateClassifier) AddTemplate(t *Template) {
	if t == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.templates = append(c.templates, t)
}

// RemoveTemplate removes a template by its ID.
func (c *TemplateClassifier) RemoveTemplate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, t := range c.templates {
		if t.ID == id {
			c.templates = append(c.templates[:i], c.templates[i+1:]...)
			return
		}
	}
}

// Len returns the number of loaded templates.
func (c *TemplateClassifier) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.templates)
}

// Match returns all templates ranked by score, best first.
func (c *TemplateClassifier) Match(hand *detector.HandLandmarks) []Match {
	normalized := hand.Normalize()
	if normalized == nil {
		return nil
	}
	input := normalized.Points[:]

	c.mu.RLock()
	defer c.mu.RUnlock()

	matches := make([]Match, 0, len(c.templates))
	for _, t := range c.templates {
		d := euclideanDistance(input, t.Landmarks)
		matches = append(matches, Match{Template: t, Score: 1.0 / (1.0 + d), Distance: d})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	return matches
}

// Classify implements Classifier.
func (c *TemplateClassifier) Classify(features []float64) (Result, error) {
	hand, ok := detector.FromFeatures(features)
	if !ok {
		return Result{}, ErrBadFeatures
	}

	matches := c.Match(&hand)
	if len(matches) == 0 {
		return Result{}, ErrNoTemplates
	}

	// Best (smallest) distance per label. matches is sorted, so the first
	// hit for a label is its best.
	best := make(map[gesture.Label]float64)
	var order []gesture.Label
	for _, m := range matches {
		if _, seen := best[m.Template.Label]; !seen {
			best[m.Template.Label] = m.Distance
			order = append(order, m.Template.Label)
		}
	}

	// Softmax over -distance/T, shifted by the winner for stability.
	winner := order[0]
	var sum float64
	for _, label := range order {
		sum += math.Exp(-(best[label] - best[winner]) / c.temperature)
	}

	return Result{Label: winner, Confidence: 1.0 / sum}, nil
}

// Close is a no-op.
func (c *TemplateClassifier) Close() error {
	return nil
}

// euclideanDistance sums the distances between corresponding points.
func euclideanDistance(a, b []detector.Point3D) float64 {
	n := min(len(a), len(b))

	var total float64
	for i := 0; i < n; i++ {
		dx := a[i].X - b[i].X
		dy := a[i].Y - b[i].Y
		dz := a[i].Z - b[i].Z
		total += math.Sqrt(dx*dx + dy*dy + dz*dz)
	}
	return total
}

// DefaultTemplates returns the built-in pinch and spread templates, used
// when no others are available.
func DefaultTemplates() []*Template {
	pinch := detector.PinchLandmarks(0.01)
	open := detector.OpenPalmLandmarks()

	return []*Template{
		{
			ID:        "builtin-pinch",
			Name:      "pinch",
			Label:     gesture.LabelPinch,
			Landmarks: pinch.Normalize().Points[:],
		},
		{
			ID:        "builtin-spread",
			Name:      "spread",
			Label:     gesture.LabelScroll,
			Landmarks: open.Normalize().Points[:],
		},
	}
}
