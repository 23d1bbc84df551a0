package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

// helper function to perform HTTP request against server router
func doRequest(t *testing.T, p *Predictor, method, path string, form url.Values, accept string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rr := httptest.NewRecorder()
	bunRouter(p).ServeHTTP(rr, req)
	return rr
}

// TestPages
func TestPages(t *testing.T) {
	initTestConfig(t)
	p := &Predictor{Classifier: &fakeClassifier{output: []float64{2}}}
	tests := []struct {
		path   string
		title  string
		expect string
	}{
		{"/", "Home", "Start prediction"},
		{"/about", "About", "About AQHub"},
		{"/insights", "Insights", "Insights"},
		{"/tips", "Health Tips", "When air quality is High"},
		{"/predict", "Predict", `name="PM2_5"`},
	}
	for _, tt := range tests {
		rr := doRequest(t, p, http.MethodGet, tt.path, nil, "")
		if rr.Code != http.StatusOK {
			t.Errorf("GET %s: status %d", tt.path, rr.Code)
			continue
		}
		body := rr.Body.String()
		if !strings.Contains(body, "<title>AQHub | "+tt.title+"</title>") {
			t.Errorf("GET %s: missing title %s", tt.path, tt.title)
		}
		if !strings.Contains(body, tt.expect) {
			t.Errorf("GET %s: body does not contain %q", tt.path, tt.expect)
		}
		if rr.Header().Get("X-Request-Id") == "" {
			t.Errorf("GET %s: missing request id", tt.path)
		}
	}
}

// TestPredictGet
func TestPredictGet(t *testing.T) {
	initTestConfig(t)
	rr := doRequest(t, &Predictor{}, http.MethodGet, "/predict", nil, "")
	body := rr.Body.String()
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	if strings.Contains(body, "alert error") || strings.Contains(body, "Predicted air quality") {
		t.Errorf("GET /predict should show empty form, got\n%s", body)
	}
	for _, name := range FeatureNames {
		if !strings.Contains(body, `name="`+name+`"`) {
			t.Errorf("form does not contain %s input", name)
		}
	}
}

// TestPredictPost
func TestPredictPost(t *testing.T) {
	initTestConfig(t)
	p := &Predictor{Classifier: &fakeClassifier{output: []float64{2}}}
	rr := doRequest(t, p, http.MethodPost, "/predict", validForm(), "")
	body := rr.Body.String()
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	if !strings.Contains(body, `<span class="badge moderate">Moderate</span>`) {
		t.Errorf("missing prediction in\n%s", body)
	}
	if strings.Contains(body, "alert error") {
		t.Errorf("unexpected error in\n%s", body)
	}
	if !strings.Contains(body, `value="150"`) {
		t.Error("submitted values are not kept in the form")
	}
}

// TestPredictPostErrors
func TestPredictPostErrors(t *testing.T) {
	initTestConfig(t)
	bad := validForm()
	bad.Set("PM10", "abc")
	missing := validForm()
	missing.Del("windspeed")
	tests := []struct {
		name   string
		p      *Predictor
		form   url.Values
		expect string
	}{
		{"invalid", &Predictor{Classifier: &fakeClassifier{output: []float64{2}}}, bad, "Invalid input"},
		{"missing", &Predictor{Classifier: &fakeClassifier{output: []float64{2}}}, missing, "missing field windspeed"},
		{"no model", &Predictor{}, validForm(), "Model file not found"},
		{"no model invalid", &Predictor{}, bad, "Model file not found"},
	}
	for _, tt := range tests {
		rr := doRequest(t, tt.p, http.MethodPost, "/predict", tt.form, "")
		body := rr.Body.String()
		if rr.Code != http.StatusOK {
			t.Errorf("%s: status %d", tt.name, rr.Code)
		}
		if !strings.Contains(body, tt.expect) {
			t.Errorf("%s: body does not contain %q", tt.name, tt.expect)
		}
		if strings.Contains(body, "Predicted air quality") {
			t.Errorf("%s: unexpected prediction", tt.name)
		}
	}
}

// TestPredictJSON
func TestPredictJSON(t *testing.T) {
	initTestConfig(t)
	bad := validForm()
	bad.Set("PM10", "abc")
	tests := []struct {
		name     string
		p        *Predictor
		form     url.Values
		httpCode int
		code     int
		label    string
	}{
		{"ok", &Predictor{Classifier: &fakeClassifier{output: []float64{0.1, 0.7, 0.2}}}, validForm(), http.StatusOK, 0, "High"},
		{"unknown", &Predictor{Classifier: &fakeClassifier{output: []float64{9}}}, validForm(), http.StatusOK, 0, "Unknown"},
		{"invalid", &Predictor{Classifier: &fakeClassifier{output: []float64{2}}}, bad, http.StatusBadRequest, InputError, ""},
		{"no model", &Predictor{}, validForm(), http.StatusServiceUnavailable, ModelError, ""},
		{"failure", &Predictor{Classifier: &fakeClassifier{panic: true}}, validForm(), http.StatusInternalServerError, PredictionError, ""},
	}
	for _, tt := range tests {
		rr := doRequest(t, tt.p, http.MethodPost, "/predict", tt.form, "application/json")
		if rr.Code != tt.httpCode {
			t.Errorf("%s: status %d, expect %d", tt.name, rr.Code, tt.httpCode)
		}
		var rec HTTPResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &rec); err != nil {
			t.Errorf("%s: invalid json %v", tt.name, err)
			continue
		}
		if rec.Code != tt.code {
			t.Errorf("%s: code %d, expect %d", tt.name, rec.Code, tt.code)
		}
		if tt.label == "" {
			if rec.Prediction != nil || rec.Error == "" {
				t.Errorf("%s: expect error and no prediction, got %+v", tt.name, rec)
			}
			continue
		}
		if rec.Prediction == nil || rec.Prediction.Text != tt.label || rec.Error != "" {
			t.Errorf("%s: expect label %s, got %+v", tt.name, tt.label, rec)
		}
	}
}

// TestNotFound
func TestNotFound(t *testing.T) {
	initTestConfig(t)
	rr := doRequest(t, &Predictor{}, http.MethodGet, "/no-such-page", nil, "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("status %d, expect %d", rr.Code, http.StatusNotFound)
	}
}

// TestStaticFiles
func TestStaticFiles(t *testing.T) {
	initTestConfig(t)
	for _, path := range []string{"/css/main.css", "/images/logo.svg"} {
		rr := doRequest(t, &Predictor{}, http.MethodGet, path, nil, "")
		if rr.Code != http.StatusOK {
			t.Errorf("GET %s: status %d", path, rr.Code)
		}
	}
}

// TestBasePath
func TestBasePath(t *testing.T) {
	initTestConfig(t)
	Config.Base = "/aq"
	defer func() { Config.Base = "" }()
	rr := doRequest(t, &Predictor{}, http.MethodGet, "/aq/tips", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `href="/aq/predict"`) {
		t.Error("navigation links do not use base path")
	}
}
