package classifier

import "sync"

// MockClassifier returns scripted results. Once a sequence is exhausted it
// keeps returning the fallback result.
type MockClassifier struct {
	mu       sync.Mutex
	fallback Result
	sequence []Result
	err      error
	inputs   [][]float64
}

// NewMockClassifier returns a mock that answers fallback to every call.
func NewMockClassifier(fallback Result) *MockClassifier {
	return &MockClassifier{fallback: fallback}
}

// SetSequence scripts one result per call.
func (m *MockClassifier) SetSequence(seq []Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = seq
}

// SetError makes every call fail with err.
func (m *MockClassifier) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Classify implements Classifier.
func (m *MockClassifier) Classify(features []float64) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.inputs = append(m.inputs, features)
	if m.err != nil {
		return Result{}, m.err
	}
	if len(m.sequence) > 0 {
		next := m.sequence[0]
		m.sequence = m.sequence[1:]
		return next, nil
	}
	return m.fallback, nil
}

// Calls returns how many times Classify was called.
func (m *MockClassifier) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inputs)
}

// Close is a no-op.
func (m *MockClassifier) Close() error {
	return nil
}
