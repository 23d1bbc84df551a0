package main

// handlers module holds all HTTP handlers functions
//
// Copyright (c) 2023 - Valentin Kuznetsov <vkuznet@gmail.com>
//

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPResponse represents HTTP JSON response
type HTTPResponse struct {
	Method      string      `json:"method"`               // HTTP method
	Path        string      `json:"path"`                 // URL path
	RemoteAddr  string      `json:"remote_addr"`          // http.Request remote address
	HTTPCode    int         `json:"http_code"`            // HTTP status code
	Code        int         `json:"code"`                 // server status code
	Reason      string      `json:"reason"`               // error code reason
	Timestamp   string      `json:"timestamp"`            // timestamp of the response
	Title       string      `json:"title"`                // page title
	Content     string      `json:"content,omitempty"`    // page content
	Error       string      `json:"error,omitempty"`      // error message
	Prediction  *Prediction `json:"prediction,omitempty"` // prediction result
	ElapsedTime string      `json:"elapsed_time"`         // elapsed time of HTTP request
}

// FormField represents input field of predict form
type FormField struct {
	Name  string // form field name
	Label string // display name
	Value string // submitted value
}

// helper function to check if client asks for JSON
func acceptJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// helper function to parse given template and return HTML page
func tmplPage(tmpl string, tmplData TmplRecord) (string, error) {
	if tmplData == nil {
		tmplData = make(TmplRecord)
	}
	var templates Templates
	return templates.Tmpl(tmpl, tmplData)
}

// helper function to generate HTML or JSON response
func httpResponse(w http.ResponseWriter, r *http.Request, tmpl TmplRecord) {
	httpCode := tmpl.GetInt("HttpCode")
	code := tmpl.GetInt("Code")
	if !acceptJSON(r) {
		var page strings.Builder
		for _, tfile := range []string{"top.tmpl", tmpl.GetString("Template"), "bottom.tmpl"} {
			html, err := tmplPage(tfile, tmpl)
			if err != nil {
				log.Printf("ERROR: unable to render %s, error %v", tfile, err)
				http.Error(w, errorMessage(TemplateError), http.StatusInternalServerError)
				return
			}
			page.WriteString(html)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if httpCode != 0 {
			w.WriteHeader(httpCode)
		}
		w.Write([]byte(page.String()))
		return
	}
	if httpCode == 0 {
		httpCode = http.StatusOK
	}
	hrec := HTTPResponse{
		Method:      r.Method,
		Path:        r.RequestURI,
		RemoteAddr:  r.RemoteAddr,
		Timestamp:   time.Now().String(),
		Code:        code,
		Reason:      errorMessage(code),
		HTTPCode:    httpCode,
		Title:       tmpl.GetString("Title"),
		Content:     tmpl.GetString("Content"),
		Error:       tmpl.GetError(),
		ElapsedTime: tmpl.GetElapsedTime(),
	}
	if pred, ok := tmpl["Prediction"].(*Prediction); ok {
		hrec.Prediction = pred
	}
	if Config.Verbose > 0 {
		log.Printf("HTTPResponse: %+v", hrec)
	}
	data, err := json.MarshalIndent(hrec, "", "   ")
	if err != nil {
		data = []byte(err.Error())
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpCode)
	w.Write(data)
}

// helper function to provide standard HTTP error reply
func httpError(w http.ResponseWriter, r *http.Request, tmpl TmplRecord, code int, err error, httpCode int) {
	tmpl["Code"] = code
	tmpl["Error"] = err.Error()
	tmpl["HttpCode"] = httpCode
	tmpl["Template"] = "error.tmpl"
	httpResponse(w, r, tmpl)
}

// helper function to make initial template struct
func makeTmpl(title string) TmplRecord {
	tmpl := make(TmplRecord)
	tmpl["Title"] = title
	tmpl["Base"] = Config.Base
	tmpl["ServerInfo"] = info()
	tmpl["StartTime"] = time.Now()
	return tmpl
}

// helper function to check if HTTP request contains form-data
func formData(r *http.Request) bool {
	for key, values := range r.Header {
		if strings.ToLower(key) == "content-type" {
			for _, v := range values {
				if strings.Contains(strings.ToLower(v), "form-data") {
					return true
				}
			}
		}
	}
	return false
}

// helper function to get submitted form values, only request body
// fields are taken into account
func formValues(r *http.Request) (url.Values, error) {
	var err error
	if formData(r) {
		err = r.ParseMultipartForm(32 << 20) // maxMemory
	} else {
		err = r.ParseForm()
	}
	return r.PostForm, err
}

// helper function to build predict form fields
func formFields(values url.Values) []FormField {
	fields := make([]FormField, 0, len(FeatureNames))
	for _, name := range FeatureNames {
		fields = append(fields, FormField{
			Name:  name,
			Label: strings.ReplaceAll(name, "_", "."),
			Value: values.Get(name),
		})
	}
	return fields
}

// helper function to render page with markdown content
func contentPage(w http.ResponseWriter, r *http.Request, title, tfile, mdfile string) {
	tmpl := makeTmpl(title)
	content, err := mdToHTML(mdfile)
	if err != nil {
		httpError(w, r, tmpl, FileIOError, err, http.StatusInternalServerError)
		return
	}
	tmpl["Content"] = template.HTML(content)
	tmpl["Template"] = tfile
	httpResponse(w, r, tmpl)
}

// HomeHandler handles home page
func HomeHandler(w http.ResponseWriter, r *http.Request) {
	tmpl := makeTmpl("Home")
	tmpl["Template"] = "home.tmpl"
	httpResponse(w, r, tmpl)
}

// AboutHandler handles about page
func AboutHandler(w http.ResponseWriter, r *http.Request) {
	contentPage(w, r, "About", "about.tmpl", "about.md")
}

// InsightsHandler handles insights page
func InsightsHandler(w http.ResponseWriter, r *http.Request) {
	contentPage(w, r, "Insights", "insights.tmpl", "insights.md")
}

// TipsHandler handles health tips page
func TipsHandler(w http.ResponseWriter, r *http.Request) {
	contentPage(w, r, "Health Tips", "tips.tmpl", "tips.md")
}

// PredictHandler returns handler of predict page. GET request shows
// empty form, POST request classifies submitted readings.
func PredictHandler(p *Predictor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tmpl := makeTmpl("Predict")
		tmpl["Template"] = "predict.tmpl"
		if r.Method != http.MethodPost {
			tmpl["Fields"] = formFields(nil)
			httpResponse(w, r, tmpl)
			return
		}

		values, ferr := formValues(r)
		var pred Prediction
		var err error
		switch {
		case !p.Available():
			err = &PredictError{Kind: ModelUnavailable, Err: ErrNoModel}
		case ferr != nil:
			err = &PredictError{Kind: InvalidInput, Err: ferr}
		default:
			pred, err = p.Predict(r.Context(), values)
		}
		tmpl["Fields"] = formFields(values)
		if err != nil {
			var perr *PredictError
			if errors.As(err, &perr) {
				tmpl["Code"] = perr.Code()
				if acceptJSON(r) {
					tmpl["HttpCode"] = perr.HTTPCode()
				}
			}
			tmpl["Error"] = err.Error()
			if Config.Verbose > 0 {
				log.Printf("predict error: %v", err)
			}
			httpResponse(w, r, tmpl)
			return
		}
		tmpl["Prediction"] = &pred
		tmpl["PredictedLabel"] = pred.Text
		tmpl["BadgeClass"] = pred.Style
		httpResponse(w, r, tmpl)
	}
}

// NotFoundHandler handles unknown pages
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	tmpl := makeTmpl("Not found")
	msg := fmt.Sprintf("Page %s not found", r.URL.Path)
	httpError(w, r, tmpl, BadRequest, errors.New(msg), http.StatusNotFound)
}

// MethodNotAllowedHandler handles unsupported HTTP methods
func MethodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	tmpl := makeTmpl("Error")
	msg := fmt.Sprintf("Unsupported HTTP method %s", r.Method)
	httpError(w, r, tmpl, BadRequest, errors.New(msg), http.StatusMethodNotAllowed)
}
