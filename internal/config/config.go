package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"linknorm/internal/urlutil"
)

// Config holds the application's configuration values.
type Config struct {
	DatabaseDriver string
	DatabaseURL    string
	RenormInterval time.Duration
	MaxConcurrency int
	ShutdownGrace  time.Duration
	HTTPPort       string

	Normalization NormalizationConfig
}

// NormalizationConfig is the file-configurable subset of the pipeline
// options. It mirrors urlutil.Options one to one; pointer fields mean
// "unset, keep the default".
type NormalizationConfig struct {
	SortQuery                *bool  `yaml:"sort_query"`
	StripAuthentication      *bool  `yaml:"strip_authentication"`
	StripTrailingSlash       *bool  `yaml:"strip_trailing_slash"`
	StripIndex               *bool  `yaml:"strip_index"`
	StripProtocol            *bool  `yaml:"strip_protocol"`
	StripIrrelevantSubdomain *bool  `yaml:"strip_irrelevant_subdomain"`
	StripLangSubdomains      *bool  `yaml:"strip_lang_subdomains"`
	StripFragment            string `yaml:"strip_fragment"`
	NormalizeAMP             *bool  `yaml:"normalize_amp"`
	FixCommonMistakes        *bool  `yaml:"fix_common_mistakes"`
	ResolveObviousRedirects  *bool  `yaml:"resolve_obvious_redirects"`
	Quoted                   *bool  `yaml:"quoted"`
}

// Load loads configuration from environment variables with sane defaults,
// then overlays the YAML file named by LINKNORM_CONFIG, if any.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseDriver: getEnv("DATABASE_DRIVER", "sqlite"),
		DatabaseURL:    getEnv("DATABASE_URL", "linknorm.db"),
		RenormInterval: getEnvDuration("RENORM_INTERVAL", 0),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 8),
		ShutdownGrace:  getEnvDuration("SHUTDOWN_GRACE", 10*time.Second),
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
	}

	if path := os.Getenv("LINKNORM_CONFIG"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		var file struct {
			Normalization NormalizationConfig `yaml:"normalization"`
		}
		if err := yaml.Unmarshal(b, &file); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
		cfg.Normalization = file.Normalization
	}

	return cfg, nil
}

// NormalizeOptions materializes the pipeline options: the library defaults,
// overridden by whatever the config file set.
func (c *Config) NormalizeOptions() urlutil.Options {
	opts := urlutil.DefaultOptions()
	n := c.Normalization

	setBool(&opts.SortQuery, n.SortQuery)
	setBool(&opts.StripAuthentication, n.StripAuthentication)
	setBool(&opts.StripTrailingSlash, n.StripTrailingSlash)
	setBool(&opts.StripIndex, n.StripIndex)
	setBool(&opts.StripProtocol, n.StripProtocol)
	setBool(&opts.StripIrrelevantSubdomain, n.StripIrrelevantSubdomain)
	setBool(&opts.StripLangSubdomains, n.StripLangSubdomains)
	setBool(&opts.NormalizeAMP, n.NormalizeAMP)
	setBool(&opts.FixCommonMistakes, n.FixCommonMistakes)
	setBool(&opts.ResolveObviousRedirects, n.ResolveObviousRedirects)
	setBool(&opts.Quoted, n.Quoted)

	switch n.StripFragment {
	case "off":
		opts.FragmentPolicy = urlutil.FragmentKeep
	case "always":
		opts.FragmentPolicy = urlutil.FragmentStripAlways
	case "except-routing":
		opts.FragmentPolicy = urlutil.FragmentStripExceptRouting
	}

	return opts
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

// Helper function to get an environment variable or return a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// Helper function to get an environment variable as an integer.
func getEnvInt(key string, fallback int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return fallback
}

// Helper function to get an environment variable as a time.Duration.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := time.ParseDuration(valueStr); err == nil {
			return value
		}
	}
	return fallback
}
