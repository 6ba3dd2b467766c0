package main

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/rs/zerolog/log"
)

// Config contains configuration for the exporter.
type Config struct {
	Username       string
	Password       string
	BaseDir        string
	MonthOffset    int
	CacheDirectory string
}

// App wires the Enedis client to the export pipeline.
type App struct {
	Config *Config
	Client *Client
}

func NewApp(config *Config) *App {
	rt := http.DefaultTransport

	if config.CacheDirectory != "disable" {
		cacheDir := config.CacheDirectory
		if cacheDir == "" {
			cacheDir = os.TempDir()
		}
		if err := os.MkdirAll(cacheDir, 0755); err != nil {
			log.Fatal().Err(err).Msg("failed to create cache dir")
		}

		rt = &CachingRoundTripper{
			UnderlyingTransport: http.DefaultTransport, CacheDir: path.Clean(cacheDir),
		}

		log.Info().Str("dir", cacheDir).Msg("HTTP caching enabled")
	}

	return &App{
		Config: config,
		Client: &Client{Transport: rt},
	}
}

// exportWindows computes the two date ranges to request: the prior 12 months
// up to today for monthly data, and a rolling one-month window ending
// yesterday, shifted offset months back, for daily data.
func exportWindows(today time.Time, offset int) (monthStart, monthEnd, dayStart, dayEnd time.Time) {
	monthStart = addCalendarMonths(today, -11)
	monthEnd = today
	dayStart = addCalendarMonths(today, -(offset + 1)).AddDate(0, 0, -1)
	dayEnd = addCalendarMonths(today, -offset).AddDate(0, 0, -1)
	return
}

// dtostr formats a date the way the Enedis API expects request dates.
func dtostr(t time.Time) string {
	return t.Format(wireDateLayout)
}

// Run drives one export: authenticate, fetch both windows, export. A login
// failure surfaces as ErrLoginFailed; a failed granularity export is logged
// and suppressed so the remaining ones still run.
func (app *App) Run(today time.Time) error {
	log.Info().Str("username", app.Config.Username).Msg("logging in")
	token, err := app.Client.Login(app.Config.Username, app.Config.Password)
	if err != nil {
		return fmt.Errorf("logging in: %w", err)
	}
	log.Info().Msg("logged in successfully")

	monthStart, monthEnd, dayStart, dayEnd := exportWindows(today, app.Config.MonthOffset)

	log.Info().Str("from", dtostr(monthStart)).Str("to", dtostr(monthEnd)).Msg("retrieving monthly data")
	resMonth, err := app.Client.GetDataPerMonth(token, monthStart, monthEnd)
	if err != nil {
		return fmt.Errorf("fetching monthly data: %w", err)
	}
	log.Info().Int("points", len(resMonth.Graphe.Data)).Msg("got monthly data")

	log.Info().Str("from", dtostr(dayStart)).Str("to", dtostr(dayEnd)).Msg("retrieving daily data")
	resDay, err := app.Client.GetDataPerDay(token, dayStart, dayEnd)
	if err != nil {
		return fmt.Errorf("fetching daily data: %w", err)
	}
	log.Info().Int("points", len(resDay.Graphe.Data)).Msg("got daily data")

	// The Enedis service is not robust and often returns empty or partial
	// windows; a bad report for one granularity must not abort the run.
	if err := exportDaysValues(resDay, app.Config.BaseDir); err != nil {
		log.Error().Err(err).Msg("days values not exported")
	} else {
		log.Info().Str("file", GranularityDay.fileName).Msg("exported days values")
	}

	return nil
}
