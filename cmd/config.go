// Copyright 2025 The placesbot Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/jcodagnone/placesbot/chat"
	"github.com/jcodagnone/placesbot/email"
	"github.com/jcodagnone/placesbot/geocode"
	"github.com/jcodagnone/placesbot/llm"
	"github.com/jcodagnone/placesbot/places"
	"github.com/jcodagnone/placesbot/utils/httputils"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the runtime configuration, read from flags, the environment and
// an optional .env file (in that order of precedence).
type Config struct {
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	MapsAPIKey        string
	MapsKeyFromADC    bool
	GCPProject        string
	Language          string
	RequestsPerSecond float64

	GmailUser        string
	GmailAppPassword string
	EmailTo          string
	SMTPHost         string
	SMTPPort         int

	HTTPTimeout    time.Duration
	TraceHTTP      bool
	TraceHTTPBody  bool
	ResolveWorkers int
}

// secrets and endpoints only come from the environment
var envOnly = []string{
	"openai_api_key", "openai_model", "openai_base_url",
	"google_maps_api_key",
	"gmail_user", "gmail_app_password", "email_to", "smtp_host", "smtp_port",
}

func addConfigFlags(flags *pflag.FlagSet) {
	flags.String("env-file", ".env", "dotenv file loaded before reading the environment")
	flags.Duration("http-timeout", 30*time.Second, "timeout for every outgoing HTTP request")
	flags.Bool("trace-http", false, "log HTTP requests and responses (API keys are redacted)")
	flags.Bool("trace-http-body", false, "also log HTTP bodies (implies --trace-http)")
	flags.Int("resolve-workers", 1, "concurrent geocoding lookups per answer")
	flags.Float64("maps-rps", 10, "maximum Google Maps requests per second, 0 disables the limiter")
	flags.String("maps-language", "en", "language of Google Maps results")
	flags.Bool("maps-key-from-adc", false, "look up the Maps API key with Application Default Credentials when GOOGLE_MAPS_API_KEY is empty")
	flags.String("gcp-project", "", "project holding the Maps API key (defaults to the ADC project)")
}

// loadConfig binds flags and environment variables into a Config.
func loadConfig(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for _, key := range envOnly {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if envFile := v.GetString("env-file"); envFile != "" {
		// existing variables win over the file
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	v.SetDefault("openai_model", llm.DefaultModel)
	v.SetDefault("smtp_host", email.DefaultHost)
	v.SetDefault("smtp_port", email.DefaultPort)

	cfg := &Config{
		OpenAIAPIKey:      v.GetString("openai_api_key"),
		OpenAIModel:       v.GetString("openai_model"),
		OpenAIBaseURL:     v.GetString("openai_base_url"),
		MapsAPIKey:        v.GetString("google_maps_api_key"),
		MapsKeyFromADC:    v.GetBool("maps-key-from-adc"),
		GCPProject:        v.GetString("gcp-project"),
		Language:          v.GetString("maps-language"),
		RequestsPerSecond: v.GetFloat64("maps-rps"),
		GmailUser:         v.GetString("gmail_user"),
		GmailAppPassword:  v.GetString("gmail_app_password"),
		EmailTo:           v.GetString("email_to"),
		SMTPHost:          v.GetString("smtp_host"),
		SMTPPort:          v.GetInt("smtp_port"),
		HTTPTimeout:       v.GetDuration("http-timeout"),
		TraceHTTP:         v.GetBool("trace-http") || v.GetBool("trace-http-body"),
		TraceHTTPBody:     v.GetBool("trace-http-body"),
		ResolveWorkers:    v.GetInt("resolve-workers"),
	}

	if cfg.ResolveWorkers < 1 {
		cfg.ResolveWorkers = 1
	}

	return cfg, nil
}

func (c *Config) httpClient() *httputils.ClientOptions {
	return &httputils.ClientOptions{
		UserAgent:           fmt.Sprintf("placesbot/%s (+https://github.com/jcodagnone/placesbot)", Version),
		Timeout:             c.HTTPTimeout,
		EnableHTTPTrace:     c.TraceHTTP,
		EnableHTTPBodyTrace: c.TraceHTTPBody,
	}
}

// recommender fails with llm.ErrMissingAPIKey when OPENAI_API_KEY is empty.
func (c *Config) recommender() (llm.Recommender, error) {
	return llm.NewOpenAIClient(llm.OpenAIOptions{
		APIKey:  c.OpenAIAPIKey,
		Model:   c.OpenAIModel,
		BaseURL: c.OpenAIBaseURL,
		HTTP:    httputils.NewClient(c.httpClient()),
	})
}

// geocoder builds the Google Maps client, optionally discovering the API key
// through Application Default Credentials.
func (c *Config) geocoder(ctx context.Context) (*geocode.Client, error) {
	apiKey := c.MapsAPIKey
	if apiKey == "" && c.MapsKeyFromADC {
		log.Println("GOOGLE_MAPS_API_KEY is not set. Attempting to retrieve via ADC...")

		var err error

		apiKey, err = geocode.APIKeyFromADC(ctx, c.GCPProject, geocode.DefaultKeyDisplayName)
		if err != nil {
			log.Printf("Failed to retrieve API key via ADC: %v", err)
		} else {
			log.Println("✅ Successfully retrieved Google Maps API Key via ADC")
		}
	}

	return geocode.NewClient(geocode.Options{
		APIKey:            apiKey,
		Language:          c.Language,
		RequestsPerSecond: c.RequestsPerSecond,
		HTTP:              httputils.NewClient(c.httpClient()),
	})
}

// resolver returns the two tier Google resolver, or one reporting the
// configuration error on every call when no key is available.
func (c *Config) resolver(ctx context.Context) *places.Resolver {
	client, err := c.geocoder(ctx)
	if err != nil {
		log.Printf("Geocoding disabled: %v", err)

		return places.Unavailable(err)
	}

	r := places.NewResolver(places.GoogleStrategies(client)...)
	r.Workers = c.ResolveWorkers
	r.Progress = true

	return r
}

// mailer returns nil when the SMTP credentials are not configured.
func (c *Config) mailer() chat.Mailer {
	m, err := email.New(email.Options{
		Host:     c.SMTPHost,
		Port:     c.SMTPPort,
		Username: c.GmailUser,
		Password: c.GmailAppPassword,
		To:       c.EmailTo,
		Timeout:  c.HTTPTimeout,
	})
	if err != nil {
		log.Printf("Email disabled: %v", err)

		return nil
	}

	return m
}
