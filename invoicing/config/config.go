// Package config reads the command line tool settings from the
// environment, optionally seeded from a .env file.
package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
)

const Prefix = "SIMPLEINVOICING_"

type Config struct {
	Endpoint              string        `env:"ENDPOINT" envDefault:"https://simpleinvoicing.warberryapps.com/data/api/invoice/generate"`
	HTTPTimeout           time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
	OutputDir             string        `env:"OUTPUT_DIR" envDefault:"."`
	ValidatePaymentDetail bool          `env:"VALIDATE_PAYMENT_DETAILS" envDefault:"false"`
	Debug                 bool          `env:"DEBUG"`
	Browser               BrowserConfig
}

type BrowserConfig struct {
	ChromePath   string        `env:"CHROME_PATH"`
	NoSandbox    bool          `env:"NO_SANDBOX"`
	AutoDownload bool          `env:"AUTO_DOWNLOAD"`
	Headless     bool          `env:"HEADLESS" envDefault:"true"`
	StageAddr    string        `env:"STAGE_ADDR" envDefault:"127.0.0.1:0"`
	PrintDelay   time.Duration `env:"PRINT_DELAY" envDefault:"100ms"`
	Timeout      time.Duration `env:"BROWSER_TIMEOUT" envDefault:"30s"`
}

// New loads envPath when it exists and parses SIMPLEINVOICING_* variables.
// Variables already set in the environment win over the file.
func New(envPath string) (Config, error) {
	var c Config

	if envPath != "" {
		err := godotenv.Load(envPath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, errors.Wrap(err, "load env file")
		}
	}

	if err := env.ParseWithOptions(&c, env.Options{Prefix: Prefix}); err != nil {
		return Config{}, errors.Wrap(err, "parse environment")
	}

	if c.HTTPTimeout < 0 {
		return Config{}, errors.Errorf("%sHTTP_TIMEOUT must not be negative: %s", Prefix, c.HTTPTimeout)
	}
	if c.Browser.PrintDelay < 0 {
		return Config{}, errors.Errorf("%sPRINT_DELAY must not be negative: %s", Prefix, c.Browser.PrintDelay)
	}
	return c, nil
}
