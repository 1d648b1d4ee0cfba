// Package config loads the trip form configuration from a .env file, the
// process environment and an optional YAML profile.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-tripform/pkg/client"
	"github.com/goliatone/go-tripform/pkg/trip"
	"github.com/goliatone/go-tripform/pkg/validation"
)

// DefaultAPIURL is the local development endpoint of the planning service.
const DefaultAPIURL = "http://localhost:8000"

// Config holds all configuration values for the trip form.
type Config struct {
	// APIURL is the planning service base URL. TRIPFORM_API_URL, falling
	// back to NEXT_PUBLIC_API_URL, then DefaultAPIURL.
	APIURL string

	// Contract selects the planning contract: "plan" (default) or "legacy".
	Contract client.Contract

	// LogLevel is one of debug, info, warn, error. Defaults to "info".
	LogLevel string

	// Timeout bounds each HTTP request. Defaults to 30s.
	Timeout time.Duration

	// SearchRPS throttles airport searches. Zero disables throttling.
	// Defaults to 5.
	SearchRPS float64

	// Debounce is the airport lookup quiet period. Defaults to 300ms.
	Debounce time.Duration

	// OpenAPI optionally replaces the embedded service description with a
	// file path or http(s) URL (TRIPFORM_OPENAPI).
	OpenAPI string

	// ProfilePath is the optional YAML profile (TRIPFORM_PROFILE).
	ProfilePath string

	// Profile is the parsed profile; zero when ProfilePath is empty.
	Profile Profile
}

// Load reads envFiles (".env" when none are given; a missing file is not an
// error) without overriding variables already set, then builds a Config from
// the environment. The returned error lists every invalid variable.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", file, err)
		}
	}

	cfg := Config{
		APIURL:      strings.TrimRight(getEnv("TRIPFORM_API_URL", getEnv("NEXT_PUBLIC_API_URL", DefaultAPIURL)), "/"),
		LogLevel:    strings.ToLower(getEnv("TRIPFORM_LOG_LEVEL", "info")),
		OpenAPI:     strings.TrimSpace(getEnv("TRIPFORM_OPENAPI", "")),
		ProfilePath: getEnv("TRIPFORM_PROFILE", ""),
	}

	var problems []string

	contract, ok := client.ParseContract(strings.ToLower(getEnv("TRIPFORM_CONTRACT", string(client.ContractPlan))))
	if !ok {
		problems = append(problems, "TRIPFORM_CONTRACT must be plan or legacy")
	}
	cfg.Contract = contract

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		problems = append(problems, "TRIPFORM_LOG_LEVEL must be debug, info, warn or error")
	}

	var err error
	if cfg.Timeout, err = getDuration("TRIPFORM_TIMEOUT", 30*time.Second); err != nil {
		problems = append(problems, err.Error())
	}
	if cfg.Debounce, err = getDuration("TRIPFORM_DEBOUNCE", 300*time.Millisecond); err != nil {
		problems = append(problems, err.Error())
	}
	if cfg.SearchRPS, err = getFloat("TRIPFORM_SEARCH_RPS", 5); err != nil {
		problems = append(problems, err.Error())
	}

	if cfg.ProfilePath != "" {
		profile, err := LoadProfile(cfg.ProfilePath)
		if err != nil {
			problems = append(problems, err.Error())
		}
		cfg.Profile = profile
	}

	if len(problems) > 0 {
		return Config{}, fmt.Errorf("config: invalid values: %s", strings.Join(problems, "; "))
	}
	return cfg, nil
}

// Level returns the parsed log level, defaulting to info.
func (c Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback, fmt.Errorf("%s must be a positive duration such as 300ms", key)
	}
	return d, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 {
		return fallback, fmt.Errorf("%s must be a non-negative number", key)
	}
	return f, nil
}

// Profile is the YAML profile: prefilled form values and overrides for
// validation defaults, airport search and the legacy contract.
type Profile struct {
	// Fields prefills the form. Keys may be canonical or front end names.
	Fields map[string]string `yaml:"fields"`

	Defaults struct {
		OriginCountry  string `yaml:"origin_country"`
		OriginTimezone string `yaml:"origin_timezone"`
		International  *bool  `yaml:"international"`
		CheckedBaggage *bool  `yaml:"checked_baggage"`
		AssignedSeat   *bool  `yaml:"assigned_seat"`
		Days           int    `yaml:"days"`
	} `yaml:"defaults"`

	Search struct {
		Limit int      `yaml:"limit"`
		Lat   *float64 `yaml:"lat"`
		Lon   *float64 `yaml:"lon"`
	} `yaml:"search"`

	Legacy struct {
		DestinationTimezone string `yaml:"destination_timezone"`
		TravelMinutes       int    `yaml:"travel_minutes"`
	} `yaml:"legacy"`
}

// LoadProfile reads and parses a YAML profile.
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("TRIPFORM_PROFILE: read %s: %w", path, err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("TRIPFORM_PROFILE: parse %s: %w", path, err)
	}
	if p.Defaults.Days < 0 || p.Defaults.Days > 60 {
		return Profile{}, fmt.Errorf("TRIPFORM_PROFILE: defaults.days must be between 1 and 60")
	}
	if (p.Search.Lat == nil) != (p.Search.Lon == nil) {
		return Profile{}, fmt.Errorf("TRIPFORM_PROFILE: search.lat and search.lon must be set together")
	}
	return p, nil
}

// InitialFields returns the prefilled form values in canonical names.
func (p Profile) InitialFields() trip.RawFields {
	if len(p.Fields) == 0 {
		return trip.RawFields{}
	}
	return trip.FromConsultorFields(p.Fields)
}

// ValidationDefaults overlays the profile defaults onto base.
func (p Profile) ValidationDefaults(base validation.Defaults) validation.Defaults {
	d := p.Defaults
	if d.OriginCountry != "" {
		base.OriginCountry = d.OriginCountry
	}
	if d.OriginTimezone != "" {
		base.OriginTimezone = d.OriginTimezone
	}
	if d.International != nil {
		base.International = *d.International
	}
	if d.CheckedBaggage != nil {
		base.CheckedBaggage = *d.CheckedBaggage
	}
	if d.AssignedSeat != nil {
		base.AssignedSeat = *d.AssignedSeat
	}
	if d.Days > 0 {
		base.Days = d.Days
	}
	return base
}

// SearchParams returns the airport search defaults.
func (p Profile) SearchParams() client.SearchParams {
	return client.SearchParams{Limit: p.Search.Limit, Lat: p.Search.Lat, Lon: p.Search.Lon}
}
