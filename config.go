package main

// config module
//
// Copyright (c) 2023 - Valentin Kuznetsov <vkuznet@gmail.com>
//

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	limiter "github.com/ulule/limiter/v3"
	"gopkg.in/yaml.v2"
)

// Configuration stores server configuration parameters
type Configuration struct {
	// web server parts
	Base    string `json:"base" yaml:"base"`                                                                  // base URL
	LogFile string `json:"log_file" yaml:"log_file"`                                                          // server log file
	Port    int    `json:"port" yaml:"port" validate:"gte=0,lte=65535"`                                       // server port number
	Verbose int    `json:"verbose" yaml:"verbose" validate:"gte=0"`                                           // verbose output
	Rate    string `json:"rate" yaml:"rate"`                                                                  // github.com/ulule/limiter rate value
	XFrame  string `json:"X-Frame-Options" yaml:"X-Frame-Options" validate:"omitempty,oneof=DENY SAMEORIGIN"` // X-Frame-Options header

	// model parts
	ModelFile      string `json:"model_file" yaml:"model_file"`                            // model bundle file
	ModelName      string `json:"model_name" yaml:"model_name"`                            // model name sent to ML backend
	Backend        string `json:"backend" yaml:"backend" validate:"omitempty,url"`         // ML backend URI
	BackendTimeout int    `json:"backend_timeout" yaml:"backend_timeout" validate:"gte=0"` // ML backend timeout in seconds

	// server parts
	RootCAs     string   `json:"rootCAs" yaml:"rootCAs"`                                            // server Root CAs path
	ServerCrt   string   `json:"server_cert" yaml:"server_cert" validate:"required_with=ServerKey"` // server certificate
	ServerKey   string   `json:"server_key" yaml:"server_key" validate:"required_with=ServerCrt"`   // server certificate key
	DomainNames []string `json:"domain_names" yaml:"domain_names" validate:"dive,hostname"`         // LetsEncrypt domain names
}

// Config variable represents configuration object
var Config Configuration

// helper function to parse server configuration file,
// empty file name means default configuration
func parseConfig(configFile string) error {
	Config = Configuration{}
	if configFile != "" {
		data, err := os.ReadFile(filepath.Clean(configFile))
		if err != nil {
			log.Println("Unable to read", err)
			return err
		}
		ext := strings.ToLower(filepath.Ext(configFile))
		if ext == ".yaml" || ext == ".yml" {
			err = yaml.Unmarshal(data, &Config)
		} else {
			err = json.Unmarshal(data, &Config)
		}
		if err != nil {
			log.Println("Unable to parse", err)
			return err
		}
	}
	setDefaults()
	return validateConfig()
}

// helper function to assign default values
func setDefaults() {
	if Config.Port == 0 {
		Config.Port = 8181
	}
	if Config.Rate == "" {
		Config.Rate = "100-S"
	}
	if Config.ModelFile == "" {
		Config.ModelFile = "classification_model.json"
	}
	if Config.ModelName == "" {
		Config.ModelName = "air_quality"
	}
	if Config.BackendTimeout == 0 {
		Config.BackendTimeout = 10
	}
	if Config.XFrame == "" {
		Config.XFrame = "DENY"
	}
}

// helper function to validate configuration
func validateConfig() error {
	validate := validator.New()
	if err := validate.Struct(Config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := limiter.NewRateFromFormatted(Config.Rate); err != nil {
		return fmt.Errorf("invalid rate '%s': %w", Config.Rate, err)
	}
	return nil
}
