package classifier

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/pyworker"
)

// ModelScript is the file name of the external gesture model service.
const ModelScript = "gesture_model.py"

// ProcessClassifier runs an external gesture model as a helper process.
// Each request is one JSON line {"features":[...63]}; each response is one
// JSON line {"label":0,"confidence":0.98}.
type ProcessClassifier struct {
	worker *pyworker.Worker
}

// NewProcessClassifier locates the model script (or uses script when set)
// and prepares a lazily started helper. modelPath is passed to the script.
func NewProcessClassifier(script, modelPath, python string, logger *slog.Logger) (*ProcessClassifier, error) {
	if script == "" {
		script = pyworker.FindScript(ModelScript)
	}
	if script == "" {
		return nil, fmt.Errorf("%s: %w", ModelScript, pyworker.ErrScriptNotFound)
	}

	var args []string
	if modelPath != "" {
		args = append(args, "--model", modelPath)
	}

	return &ProcessClassifier{
		worker: pyworker.New(pyworker.Config{
			Script: script,
			Args:   args,
			Python: python,
			Logger: logger,
		}),
	}, nil
}

type modelRequest struct {
	Features []float64 `json:"features"`
}

type modelResponse struct {
	Label      *int    `json:"label"`
	Confidence float64 `json:"confidence"`
	Error      string  `json:"error,omitempty"`
}

// Classify implements Classifier.
func (c *ProcessClassifier) Classify(features []float64) (Result, error) {
	if len(features) != detector.NumFeatures {
		return Result{}, ErrBadFeatures
	}

	line, err := c.worker.Call(func(w io.Writer) error {
		return json.NewEncoder(w).Encode(modelRequest{Features: features})
	})
	if err != nil {
		return Result{}, fmt.Errorf("gesture model: %w", err)
	}

	var resp modelResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return Result{}, fmt.Errorf("parse model response: %w", err)
	}
	if resp.Error != "" {
		return Result{}, fmt.Errorf("gesture model: %s", resp.Error)
	}
	if resp.Label == nil {
		return Result{}, fmt.Errorf("gesture model: response has no label")
	}
	if resp.Confidence < 0 || resp.Confidence > 1 {
		return Result{}, fmt.Errorf("gesture model: confidence %v out of range", resp.Confidence)
	}

	return Result{Label: gesture.Label(*resp.Label), Confidence: resp.Confidence}, nil
}

// Close stops the helper process.
func (c *ProcessClassifier) Close() error {
	return c.worker.Close()
}
