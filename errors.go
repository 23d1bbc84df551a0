package main

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	GenericError    = iota + 100 // generic error
	BadRequest                   // 101 bad request
	ModelError                   // 102 model is not available
	InputError                   // 103 invalid input
	PredictionError              // 104 prediction error
	TemplateError                // 105 template error
	FileIOError                  // 106 file IO error
	JsonMarshal                  // 107 json.Marshal error
)

// helper function to return human error message for given error code
func errorMessage(code int) string {
	switch code {
	case 0:
		return ""
	case GenericError:
		return "generic error"
	case BadRequest:
		return "bad request"
	case ModelError:
		return "model is not available"
	case InputError:
		return "invalid input"
	case PredictionError:
		return "prediction error"
	case TemplateError:
		return "template error"
	case FileIOError:
		return "file IO error"
	case JsonMarshal:
		return "JSON marshal error"
	}
	return fmt.Sprintf("Not Implemented error for code %d", code)
}

// ErrorKind represents category of predict error
type ErrorKind int

// predict error kinds
const (
	ModelUnavailable ErrorKind = iota
	InvalidInput
	PredictionFailure
)

// ErrNoModel is used when classifier is not loaded
var ErrNoModel = errors.New("model is not loaded")

// PredictError represents failure of predict request
type PredictError struct {
	Kind ErrorKind
	Err  error
}

// Error implements error interface
func (e *PredictError) Error() string {
	switch e.Kind {
	case ModelUnavailable:
		return fmt.Sprintf("Model file not found. Place %s in root directory.", Config.ModelFile)
	case InvalidInput:
		return fmt.Sprintf("Invalid input: %v", e.Err)
	}
	return fmt.Sprintf("Prediction failed: %v", e.Err)
}

// Unwrap returns underlying error
func (e *PredictError) Unwrap() error {
	return e.Err
}

// Code returns server error code of predict error
func (e *PredictError) Code() int {
	switch e.Kind {
	case ModelUnavailable:
		return ModelError
	case InvalidInput:
		return InputError
	}
	return PredictionError
}

// HTTPCode returns HTTP status code used in JSON responses
func (e *PredictError) HTTPCode() int {
	switch e.Kind {
	case ModelUnavailable:
		return http.StatusServiceUnavailable
	case InvalidInput:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
