package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/goliatone/go-tripform"
	"github.com/goliatone/go-tripform/internal/config"
	"github.com/goliatone/go-tripform/internal/prompt"
	"github.com/goliatone/go-tripform/internal/session"
	"github.com/goliatone/go-tripform/pkg/client"
)

func main() {
	envFile := flag.String("env", ".env", "dotenv file to load (missing file is ignored)")
	apiURL := flag.String("api", "", "planning service base URL (overrides TRIPFORM_API_URL)")
	contractName := flag.String("contract", "", "planning contract: plan or legacy (overrides TRIPFORM_CONTRACT)")
	openAPI := flag.String("openapi", "", "service description file or URL replacing the embedded one (overrides TRIPFORM_OPENAPI)")
	profilePath := flag.String("profile", "", "YAML profile with prefilled fields and defaults (overrides TRIPFORM_PROFILE)")
	knownZones := flag.Bool("known-timezones", false, "reject origin timezones missing from the IANA list")
	check := flag.Bool("check", false, "only check the planning service health and exit")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if v := strings.TrimSpace(*openAPI); v != "" {
		cfg.OpenAPI = v
	}
	if err := applyFlags(&cfg, *apiURL, *contractName, *profilePath); err != nil {
		log.Fatalf("Invalid flags: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))

	var opts []tripform.Option
	opts = append(opts, tripform.WithLogger(logger))
	if *knownZones {
		opts = append(opts, tripform.WithKnownTimezones())
	}
	app, err := tripform.New(cfg, opts...)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *check {
		if err := app.Check(ctx); err != nil {
			log.Fatalf("Planning service check failed: %v", err)
		}
		fmt.Printf("Planning service at %s is healthy\n", app.Client.BaseURL())
		return
	}

	s, err := app.NewSession(prompt.NewSurveyDriver(os.Stdout))
	if err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}
	if _, err := s.Run(ctx); err != nil {
		switch {
		case errors.Is(err, prompt.ErrAborted), errors.Is(err, context.Canceled):
			fmt.Fprintln(os.Stderr, "Cancelled.")
			os.Exit(130)
		case errors.Is(err, session.ErrGaveUp):
			os.Exit(1)
		default:
			log.Fatalf("Session failed: %v", err)
		}
	}
}

func applyFlags(cfg *config.Config, apiURL, contractName, profilePath string) error {
	if v := strings.TrimSpace(apiURL); v != "" {
		cfg.APIURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(contractName); v != "" {
		c, ok := client.ParseContract(strings.ToLower(v))
		if !ok {
			return fmt.Errorf("-contract must be plan or legacy, got %q", v)
		}
		cfg.Contract = c
	}
	if v := strings.TrimSpace(profilePath); v != "" {
		profile, err := config.LoadProfile(v)
		if err != nil {
			return err
		}
		cfg.ProfilePath = v
		cfg.Profile = profile
	}
	return nil
}
