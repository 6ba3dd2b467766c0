package main

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// envOrString returns the environment variable value if set, otherwise returns the default value.
func envOrString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func parseFlags() *Config {
	// Local runs keep credentials in a .env file; absence is fine.
	_ = godotenv.Load()

	username := flag.String("username", envOrString("LINKY_USERNAME", ""), "Enedis account identifier")
	password := flag.String("password", envOrString("LINKY_PASSWORD", ""), "Enedis account password")
	baseDir := flag.String("basedir", envOrString("BASE_DIR", ""), "Directory the export files are written to")
	cacheDir := flag.String("cache", envOrString("CACHE_DIR", "disable"), "Directory for HTTP cache ('disable' to disable, empty for temporary directory)")
	flag.Parse()

	if *username == "" || *password == "" || *baseDir == "" {
		log.Fatal().Msgf("Required configuration missing. Usage: %s -username=... -password=... -basedir=... <month offset>", os.Args[0])
	}

	if flag.NArg() != 1 {
		log.Fatal().Msgf("Usage: %s [flags] <month offset>", os.Args[0])
	}
	offset, err := strconv.Atoi(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("month offset must be an integer")
	}

	return &Config{
		Username:       *username,
		Password:       *password,
		BaseDir:        *baseDir,
		MonthOffset:    offset,
		CacheDirectory: *cacheDir,
	}
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	config := parseFlags()
	app := NewApp(config)

	if err := app.Run(time.Now()); err != nil {
		if errors.Is(err, ErrLoginFailed) {
			log.Error().Err(err).Msg("authentication failed")
			os.Exit(1)
		}
		log.Fatal().Err(err).Msg("export run failed")
	}
}
