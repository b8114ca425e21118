// Package config loads the service configuration from a YAML file with
// environment-variable overrides for the values that change between
// deployments.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Identity struct {
		// local | httpapi
		Driver  string        `yaml:"driver"`
		BaseURL string        `yaml:"base_url"`
		APIKey  string        `yaml:"api_key"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"identity"`

	Blob struct {
		// fs | httpapi
		Driver  string        `yaml:"driver"`
		Root    string        `yaml:"root"`     // fs
		BaseURL string        `yaml:"base_url"` // fs: public prefix; httpapi: store endpoint
		Token   string        `yaml:"token"`    // httpapi
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"blob"`

	Profile struct {
		// fs | pg
		Driver string `yaml:"driver"`
		Root   string `yaml:"root"` // fs
		DSN    string `yaml:"dsn"`  // pg
	} `yaml:"profile"`

	Cache struct {
		// memory | redis
		Kind  string        `yaml:"kind"`
		TTL   time.Duration `yaml:"ttl"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	Provision struct {
		// per remote call; expired calls surface as unreachable
		CallTimeout time.Duration `yaml:"call_timeout"`
	} `yaml:"provision"`

	SMTP struct {
		Host               string `yaml:"host"`
		Port               int    `yaml:"port"`
		Username           string `yaml:"username"`
		Password           string `yaml:"password"`
		From               string `yaml:"from"`
		TLS                string `yaml:"tls"` // auto | starttls | ssl | none
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
	} `yaml:"smtp"`

	Catalog struct {
		// optional override of the embedded guide data
		Path string `yaml:"path"`
	} `yaml:"catalog"`
}

// Load reads the config file at path (optional, "" skips the file),
// applies env overrides and defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	overlay(&c.App.Env, "APP_ENV")
	overlay(&c.Server.Addr, "SERVER_ADDR")
	overlay(&c.Log.Level, "LOG_LEVEL")

	overlay(&c.Identity.Driver, "IDENTITY_DRIVER")
	overlay(&c.Identity.BaseURL, "IDENTITY_BASE_URL")
	overlay(&c.Identity.APIKey, "IDENTITY_API_KEY")

	overlay(&c.Blob.Driver, "BLOB_DRIVER")
	overlay(&c.Blob.Root, "BLOB_ROOT")
	overlay(&c.Blob.BaseURL, "BLOB_BASE_URL")
	overlay(&c.Blob.Token, "BLOB_TOKEN")

	overlay(&c.Profile.Driver, "PROFILE_DRIVER")
	overlay(&c.Profile.Root, "PROFILE_ROOT")
	overlay(&c.Profile.DSN, "PROFILE_DSN")

	overlay(&c.Cache.Kind, "CACHE_KIND")
	overlay(&c.Cache.Redis.Addr, "REDIS_ADDR")
	overlay(&c.Cache.Redis.Password, "REDIS_PASSWORD")
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Cache.Redis.DB = n
		}
	}

	overlay(&c.SMTP.Host, "SMTP_HOST")
	overlay(&c.SMTP.Username, "SMTP_USERNAME")
	overlay(&c.SMTP.Password, "SMTP_PASSWORD")
	overlay(&c.SMTP.From, "SMTP_FROM")
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.SMTP.Port = n
		}
	}

	overlay(&c.Catalog.Path, "CATALOG_PATH")
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Identity.Driver == "" {
		c.Identity.Driver = "local"
	}
	if c.Identity.Timeout == 0 {
		c.Identity.Timeout = 10 * time.Second
	}
	if c.Blob.Driver == "" {
		c.Blob.Driver = "fs"
	}
	if c.Blob.Timeout == 0 {
		c.Blob.Timeout = 30 * time.Second
	}
	if c.Blob.BaseURL == "" {
		c.Blob.BaseURL = "http://localhost:8080/blobs"
	}
	if c.Profile.Driver == "" {
		c.Profile.Driver = "fs"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 5 * time.Minute
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "plantit"
	}
	if c.Provision.CallTimeout == 0 {
		c.Provision.CallTimeout = 15 * time.Second
	}
}

func overlay(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
