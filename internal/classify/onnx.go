//go:build cgo
// +build cgo

package classify

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ONNXScorer runs an exported classifier via ONNX Runtime. It requires CGO
// and the onnxruntime shared library. The model takes a term-frequency
// feature vector and yields per-class probabilities.
type ONNXScorer struct {
	session    *ort.AdvancedSession
	vectorizer *Vectorizer
	numClasses int
	// Pre-allocated tensors for Run(); input data is updated in place.
	inputTensor *ort.Tensor[float32]
	probsTensor *ort.Tensor[float32]
	mu          sync.Mutex
}

// NewONNXScorer creates a scorer for the model at modelPath using the given
// vectorizer. numClasses must match the model's output width.
// InitializeEnvironment is called if not already done.
func NewONNXScorer(modelPath string, vectorizer *Vectorizer, numClasses int) (*ONNXScorer, error) {
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX runtime: %w", err)
	}

	dims := vectorizer.Dimensions()
	inputTensor, err := ort.NewTensor(ort.NewShape(1, int64(dims)), make([]float32, dims))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	probsTensor, err := ort.NewTensor(ort.NewShape(1, int64(numClasses)), make([]float32, numClasses))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("failed to create probabilities tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"float_input"},
		[]string{"probabilities"},
		[]ort.ArbitraryTensor{inputTensor},
		[]ort.ArbitraryTensor{probsTensor},
		nil,
	)
	if err != nil {
		inputTensor.Destroy()
		probsTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &ONNXScorer{
		session:     session,
		vectorizer:  vectorizer,
		numClasses:  numClasses,
		inputTensor: inputTensor,
		probsTensor: probsTensor,
	}, nil
}

// Predict vectorizes text, runs the model, and returns the winning class id
// with its probability.
func (s *ONNXScorer) Predict(ctx context.Context, text string) (int, float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy(s.inputTensor.GetData(), s.vectorizer.Vectorize(text))

	if err := s.session.Run(); err != nil {
		return 0, 0, fmt.Errorf("inference failed: %w", err)
	}

	probs := s.probsTensor.GetData()
	best, bestProb := 0, float32(-1)
	for i := 0; i < s.numClasses && i < len(probs); i++ {
		if probs[i] > bestProb {
			best, bestProb = i, probs[i]
		}
	}
	return best, float64(bestProb), nil
}

// Close destroys the session and tensors.
func (s *ONNXScorer) Close() error {
	var err error
	if s.session != nil {
		err = s.session.Destroy()
		s.session = nil
	}
	if s.inputTensor != nil {
		_ = s.inputTensor.Destroy()
		s.inputTensor = nil
	}
	if s.probsTensor != nil {
		_ = s.probsTensor.Destroy()
		s.probsTensor = nil
	}
	return err
}
