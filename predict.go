package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// FieldError represents invalid form field
type FieldError struct {
	Field string // feature name
	Value string // submitted value
	Err   error  // parse error, nil if field is missing
}

// Error implements error interface
func (e *FieldError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("missing field %s", e.Field)
	}
	return fmt.Sprintf("field %s: value %q %v", e.Field, e.Value, e.Err)
}

// Unwrap returns underlying error
func (e *FieldError) Unwrap() error {
	return e.Err
}

// FieldErrors represents all invalid fields of the form
type FieldErrors []error

// Error implements error interface
func (e FieldErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Unwrap returns list of field errors
func (e FieldErrors) Unwrap() []error {
	return e
}

// helper function to parse single form field
func parseField(name string, values url.Values) (float64, error) {
	vals, ok := values[name]
	if !ok || len(vals) == 0 {
		return 0, &FieldError{Field: name}
	}
	val := strings.TrimSpace(vals[0])
	if val == "" {
		return 0, &FieldError{Field: name}
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, &FieldError{Field: name, Value: vals[0], Err: errors.New("is not a number")}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &FieldError{Field: name, Value: vals[0], Err: errors.New("is not a finite number")}
	}
	return f, nil
}

// parseFeatures builds feature vector from form values in FeatureNames
// order, all invalid fields are reported together
func parseFeatures(values url.Values) (FeatureVector, error) {
	features := make(FeatureVector, 0, len(FeatureNames))
	var errs FieldErrors
	for _, name := range FeatureNames {
		f, err := parseField(name, values)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		features = append(features, f)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return features, nil
}

// Predictor holds read-only classifier shared by all requests
type Predictor struct {
	Classifier Classifier
}

// Available reports if classifier is loaded
func (p *Predictor) Available() bool {
	return p != nil && p.Classifier != nil
}

// Predict performs classification of submitted form values
func (p *Predictor) Predict(ctx context.Context, values url.Values) (Prediction, error) {
	var pred Prediction
	if !p.Available() {
		return pred, &PredictError{Kind: ModelUnavailable, Err: ErrNoModel}
	}
	features, err := parseFeatures(values)
	if err != nil {
		return pred, &PredictError{Kind: InvalidInput, Err: err}
	}
	output, err := p.classify(ctx, features)
	if err != nil {
		return pred, &PredictError{Kind: PredictionFailure, Err: err}
	}
	class, err := classID(output)
	if err != nil {
		return pred, &PredictError{Kind: PredictionFailure, Err: err}
	}
	if Config.Verbose > 0 {
		log.Printf("features %v output %v class %d", features.Map(), output, class)
	}
	pred.Class = class
	pred.Label = lookupLabel(class)
	return pred, nil
}

// helper function to call classifier, panics are reported as errors
func (p *Predictor) classify(ctx context.Context, features FeatureVector) (output []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ERROR: classifier panic %v", r)
			err = fmt.Errorf("classifier panic: %v", r)
		}
	}()
	return p.Classifier.Predict(ctx, features)
}
