//go:build !cgo
// +build !cgo

package classify

import (
	"context"
	"errors"
)

// ONNXScorer stub type when built without CGO (see onnx.go for real implementation).
type ONNXScorer struct{}

// NewONNXScorer returns an error when built without CGO (ONNX not available).
func NewONNXScorer(_ string, _ *Vectorizer, _ int) (*ONNXScorer, error) {
	return nil, errors.New("ONNX scorer requires CGO; build with CGO_ENABLED=1 and onnxruntime")
}

func (s *ONNXScorer) Predict(_ context.Context, _ string) (int, float64, error) {
	return 0, 0, errors.New("ONNX scorer not available")
}

func (s *ONNXScorer) Close() error { return nil }
