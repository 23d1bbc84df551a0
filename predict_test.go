package main

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
)

// TestParseFeatures
func TestParseFeatures(t *testing.T) {
	values := validForm()
	values.Set("humidity", "  60.5 ")
	features, err := parseFeatures(values)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expect := FeatureVector{150, 80, 40, 20, 5, 30, 25, 60.5, 10}
	if len(features) != len(expect) {
		t.Fatalf("got %v, expect %v", features, expect)
	}
	for i := range expect {
		if features[i] != expect[i] {
			t.Errorf("feature %s got %v, expect %v", FeatureNames[i], features[i], expect[i])
		}
	}
	if m := features.Map(); m["PM2_5"] != 40 || m["windspeed"] != 10 {
		t.Errorf("wrong feature map %v", m)
	}
}

// TestParseFeaturesErrors
func TestParseFeaturesErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(url.Values)
		fields []string
	}{
		{"not a number", func(v url.Values) { v.Set("PM10", "abc") }, []string{"PM10"}},
		{"missing", func(v url.Values) { v.Del("O3") }, []string{"O3"}},
		{"empty", func(v url.Values) { v.Set("SO2", " ") }, []string{"SO2"}},
		{"nan", func(v url.Values) { v.Set("NO2", "NaN") }, []string{"NO2"}},
		{"inf", func(v url.Values) { v.Set("AQI", "+Inf") }, []string{"AQI"}},
		{"several", func(v url.Values) {
			v.Set("AQI", "x")
			v.Del("windspeed")
		}, []string{"AQI", "windspeed"}},
	}
	for _, tt := range tests {
		values := validForm()
		tt.modify(values)
		features, err := parseFeatures(values)
		if err == nil {
			t.Errorf("%s: expect error", tt.name)
			continue
		}
		if features != nil {
			t.Errorf("%s: expect no features, got %v", tt.name, features)
		}
		var ferrs FieldErrors
		if !errors.As(err, &ferrs) || len(ferrs) != len(tt.fields) {
			t.Errorf("%s: expect %d field errors, got %v", tt.name, len(tt.fields), err)
			continue
		}
		for i, field := range tt.fields {
			var ferr *FieldError
			if !errors.As(ferrs[i], &ferr) || ferr.Field != field {
				t.Errorf("%s: expect error for field %s, got %v", tt.name, field, ferrs[i])
			}
		}
	}
}

// TestPredictorPredict
func TestPredictorPredict(t *testing.T) {
	initTestConfig(t)
	ctx := context.Background()

	// example from the air quality reference table
	fake := &fakeClassifier{output: []float64{2}}
	p := &Predictor{Classifier: fake}
	pred, err := p.Predict(ctx, validForm())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pred.Text != "Moderate" || pred.Style != "moderate" || pred.Class != 2 {
		t.Errorf("wrong prediction %+v", pred)
	}
	if len(fake.got) != 9 || fake.got[0] != 150 || fake.got[8] != 10 {
		t.Errorf("classifier got wrong features %v", fake.got)
	}

	// every class id in label map
	for class, label := range LabelMap {
		p := &Predictor{Classifier: &fakeClassifier{output: []float64{float64(class)}}}
		pred, err := p.Predict(ctx, validForm())
		if err != nil || pred.Label != label {
			t.Errorf("class %d: got %+v (%v), expect %+v", class, pred, err, label)
		}
	}

	// class outside of label map
	p = &Predictor{Classifier: &fakeClassifier{output: []float64{7}}}
	pred, err = p.Predict(ctx, validForm())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pred.Label != UnknownLabel {
		t.Errorf("expect unknown label, got %+v", pred)
	}
}

// TestPredictorErrors
func TestPredictorErrors(t *testing.T) {
	initTestConfig(t)
	ctx := context.Background()
	bad := validForm()
	bad.Set("PM10", "abc")

	tests := []struct {
		name   string
		p      *Predictor
		values url.Values
		kind   ErrorKind
		msg    string
	}{
		{"no model", &Predictor{}, validForm(), ModelUnavailable, "Model file not found"},
		{"no model bad input", &Predictor{}, bad, ModelUnavailable, "Model file not found"},
		{"nil predictor", nil, validForm(), ModelUnavailable, "Model file not found"},
		{"bad input", &Predictor{Classifier: &fakeClassifier{output: []float64{1}}}, bad, InvalidInput, "Invalid input"},
		{"classifier error", &Predictor{Classifier: &fakeClassifier{err: errors.New("boom")}}, validForm(), PredictionFailure, "boom"},
		{"classifier panic", &Predictor{Classifier: &fakeClassifier{panic: true}}, validForm(), PredictionFailure, "broken model"},
		{"empty output", &Predictor{Classifier: &fakeClassifier{}}, validForm(), PredictionFailure, "empty classifier output"},
	}
	for _, tt := range tests {
		pred, err := tt.p.Predict(ctx, tt.values)
		if err == nil {
			t.Errorf("%s: expect error", tt.name)
			continue
		}
		if pred.Text != "" {
			t.Errorf("%s: expect no label, got %+v", tt.name, pred)
		}
		var perr *PredictError
		if !errors.As(err, &perr) || perr.Kind != tt.kind {
			t.Errorf("%s: wrong error kind %v", tt.name, err)
		}
		if !strings.Contains(err.Error(), tt.msg) {
			t.Errorf("%s: error %q does not contain %q", tt.name, err, tt.msg)
		}
	}
}
