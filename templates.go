package main

// templates module
//
// Copyright (c) 2023 - Valentin Kuznetsov <vkuznet@gmail.com>
//

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"strconv"
	"time"
)

// TmplRecord represent template record
type TmplRecord map[string]interface{}

// GetString converts given value for provided key to string data-type
func (t TmplRecord) GetString(key string) string {
	if v, ok := t[key]; ok && v != nil {
		return fmt.Sprintf("%v", v)
	}
	return ""
}

// GetInt converts given value for provided key to int data-type
func (t TmplRecord) GetInt(key string) int {
	if v, ok := t[key]; ok {
		if val, err := strconv.Atoi(fmt.Sprintf("%v", v)); err == nil {
			return val
		} else {
			log.Println("ERROR:", err)
		}
	}
	return 0
}

// GetError returns error string
func (t TmplRecord) GetError() string {
	return t.GetString("Error")
}

// GetElapsedTime returns elapsed time since StartTime of the record
func (t TmplRecord) GetElapsedTime() string {
	if v, ok := t["StartTime"]; ok {
		if start, ok := v.(time.Time); ok {
			return time.Since(start).String()
		}
	}
	return ""
}

// Templates structure
type Templates struct {
	html string
}

// Tmpl method for ServerTemplates structure
func (q *Templates) Tmpl(tfile string, tmplData map[string]interface{}) (string, error) {
	if q.html != "" {
		return q.html, nil
	}

	// get template from embed.FS
	filenames := []string{"static/templates/" + tfile}
	t, err := template.New(tfile).ParseFS(StaticFs, filenames...)
	if err != nil {
		return "", err
	}
	buf := new(bytes.Buffer)
	if err := t.Execute(buf, tmplData); err != nil {
		return "", err
	}
	q.html = buf.String()
	return q.html, nil
}
