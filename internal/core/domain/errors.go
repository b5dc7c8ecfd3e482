package domain

import (
	"errors"
	"fmt"
)

// ============================================================================
// Model Lifecycle Errors
// ============================================================================

var (
	ErrModelNotFound      = errors.New("model file not found")
	ErrModelNotLoaded     = errors.New("model not loaded")
	ErrModelLoadFailed    = errors.New("model could not be loaded")
	ErrModelAlreadyLoaded = errors.New("model already loaded")
	ErrInvalidArtifact    = errors.New("file is not a valid model artifact")
)

// ============================================================================
// Inference Errors
// ============================================================================

// InferenceErrorKind classifies failures of a forward pass.
type InferenceErrorKind string

const (
	InferenceErrShapeMismatch     InferenceErrorKind = "SHAPE_MISMATCH"
	InferenceErrInternalFramework InferenceErrorKind = "INTERNAL_FRAMEWORK_ERROR"
)

// InferenceError is returned for any failure during a forward pass.
type InferenceError struct {
	Kind InferenceErrorKind
	Err  error
}

func NewInferenceError(kind InferenceErrorKind, err error) *InferenceError {
	return &InferenceError{Kind: kind, Err: err}
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

// Detail is the underlying error text without the kind prefix.
func (e *InferenceError) Detail() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return e.Err.Error()
}

// ============================================================================
// Control Plane Errors
// ============================================================================

// Not found errors
var (
	ErrDeploymentNotFound = errors.New("model deployment not found")
)

// Conflict errors
var (
	ErrDeploymentExists = errors.New("model deployment with this name already exists")
)

// Validation errors
var (
	ErrMissingModelFile = errors.New("no model file provided")
	ErrInvalidModelName = errors.New("model name is required")
	ErrInvalidReplicas  = errors.New("replicas must be between 0 and 100")
	ErrUploadTooLarge   = errors.New("model file exceeds the upload limit")
)

// Availability errors
var (
	ErrClusterNotAvailable = errors.New("kubernetes integration is not available")
	ErrClusterOperation    = errors.New("kubernetes operation failed")
	ErrUpstreamUnavailable = errors.New("inference server unreachable")
)
