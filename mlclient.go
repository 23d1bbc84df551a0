package main

// client functions for ML backends
//
// Copyright (c) 2023 - Valentin Kuznetsov <vkuznet@gmail.com>
//

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"
)

// RemoteClassifier delegates predictions to ML backend server
type RemoteClassifier struct {
	URI    string       // ML backend predict URI, e.g. http://localhost:8083/predict
	Model  string       // model name known to ML backend
	client *http.Client // HTTP client used for backend calls
}

// NewRemoteClassifier creates classifier for given ML backend
func NewRemoteClassifier(uri, model string, timeout time.Duration) *RemoteClassifier {
	return &RemoteClassifier{
		URI:    uri,
		Model:  model,
		client: &http.Client{Timeout: timeout},
	}
}

// Predict implements Classifier interface. The feature vector is sent as
// multipart form, one field per feature name plus mandatory model field.
func (rc *RemoteClassifier) Predict(ctx context.Context, features FeatureVector) ([]float64, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for i, name := range FeatureNames {
		if i >= len(features) {
			break
		}
		val := strconv.FormatFloat(features[i], 'g', -1, 64)
		if err := writer.WriteField(name, val); err != nil {
			return nil, err
		}
	}
	if err := writer.WriteField("model", rc.Model); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	if Config.Verbose > 0 {
		log.Printf("POST request to %s with body\n%v", rc.URI, body.String())
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rc.URI, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	rsp, err := rc.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer rsp.Body.Close()
	data, err := io.ReadAll(rsp.Body)
	if err != nil {
		return nil, err
	}
	if rsp.StatusCode != http.StatusOK {
		log.Printf("Request failed with response code: %d", rsp.StatusCode)
		return nil, fmt.Errorf("ML backend response status %s", rsp.Status)
	}
	return parseBackendOutput(data)
}

// helper function to parse ML backend reply, it can be either a number,
// list of numbers, list of lists (we take first row), or an object with
// prediction(s) or probabilities key
func parseBackendOutput(data []byte) ([]float64, error) {
	var rec interface{}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&rec); err != nil {
		return nil, fmt.Errorf("unable to parse ML backend reply: %w", err)
	}
	return toFloats(rec)
}

// helper function to convert decoded JSON value to list of floats
func toFloats(rec interface{}) ([]float64, error) {
	switch v := rec.(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, err
		}
		return []float64{f}, nil
	case []interface{}:
		if len(v) == 0 {
			return nil, errors.New("ML backend returned empty list")
		}
		if _, ok := v[0].([]interface{}); ok {
			return toFloats(v[0])
		}
		out := make([]float64, 0, len(v))
		for _, item := range v {
			n, ok := item.(json.Number)
			if !ok {
				return nil, fmt.Errorf("ML backend returned non numeric value %v", item)
			}
			f, err := n.Float64()
			if err != nil {
				return nil, err
			}
			out = append(out, f)
		}
		return out, nil
	case map[string]interface{}:
		for _, key := range []string{"prediction", "predictions", "probabilities"} {
			if val, ok := v[key]; ok {
				return toFloats(val)
			}
		}
		if msg, ok := v["error"]; ok {
			return nil, fmt.Errorf("ML backend error: %v", msg)
		}
	}
	return nil, fmt.Errorf("unsupported ML backend reply %v", rec)
}
