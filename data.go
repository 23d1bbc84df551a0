package main

// data module holds all data representations used in our package
//
// Copyright (c) 2023 - Valentin Kuznetsov <vkuznet@gmail.com>
//

// FeatureNames defines names of input readings in the order
// the classifier was trained on
var FeatureNames = []string{
	"AQI",
	"PM10",
	"PM2_5",
	"NO2",
	"SO2",
	"O3",
	"Temperature",
	"humidity",
	"windspeed",
}

// FeatureVector represents ordered input readings of single prediction
type FeatureVector []float64

// Map returns feature vector as map of feature names and values
func (f FeatureVector) Map() map[string]float64 {
	rec := make(map[string]float64, len(f))
	for i, v := range f {
		if i < len(FeatureNames) {
			rec[FeatureNames[i]] = v
		}
	}
	return rec
}

// Label represents display label and style tag of air quality category
type Label struct {
	Text  string `json:"label"` // display label
	Style string `json:"style"` // css style tag
}

// UnknownLabel is used for classes outside of LabelMap
var UnknownLabel = Label{Text: "Unknown", Style: "unknown"}

// LabelMap maps classifier output to air quality category
var LabelMap = map[int]Label{
	0: {Text: "Very High", Style: "very-high"},
	1: {Text: "High", Style: "high"},
	2: {Text: "Moderate", Style: "moderate"},
	3: {Text: "Low", Style: "low"},
	4: {Text: "Very Low", Style: "very-low"},
}

// lookupLabel returns label for given class id
func lookupLabel(class int) Label {
	if label, ok := LabelMap[class]; ok {
		return label
	}
	return UnknownLabel
}

// Prediction represents outcome of classification
type Prediction struct {
	Class int `json:"class"` // classifier output
	Label
}
