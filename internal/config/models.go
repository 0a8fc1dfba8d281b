package config

import (
	"fmt"
	"time"

	"github.com/mikey/intake-pipeline/internal/rules"
)

// CacheConfig represents the configuration for the ephemeral cache
type CacheConfig struct {
	Type          string
	TTL           time.Duration
	SweepSchedule string
	SQLitePath    string
	MySQLDSN      string
}

// TTLHours returns the TTL in whole hours, rounding up partial hours. A
// non-positive TTL yields 0, which stores entries that never expire.
func (c CacheConfig) TTLHours() int {
	if c.TTL <= 0 {
		return 0
	}
	hours := int(c.TTL / time.Hour)
	if c.TTL%time.Hour != 0 {
		hours++
	}
	return hours
}

// RecordsConfig represents the configuration for the durable record store
type RecordsConfig struct {
	Type       string
	SQLitePath string
	MySQLDSN   string
}

// IntakeConfig represents the configuration for the intake listener
type IntakeConfig struct {
	Type              string
	ListenAddress     string
	Domain            string
	UploadDir         string
	MaxMessageBytes   int64
	AllowedExtensions []string
}

// GetCache returns the cache configuration
func (c *Config) GetCache() (CacheConfig, error) {
	ttl, err := c.GetDuration("cache.ttl")
	if err != nil {
		return CacheConfig{}, fmt.Errorf("invalid cache.ttl: %w", err)
	}
	return CacheConfig{
		Type:          c.GetString("cache.type"),
		TTL:           ttl,
		SweepSchedule: c.GetString("cache.sweep_schedule"),
		SQLitePath:    c.GetString("cache.sqlite_path"),
		MySQLDSN:      c.GetString("cache.mysql_dsn"),
	}, nil
}

// GetRecords returns the record store configuration
func (c *Config) GetRecords() RecordsConfig {
	return RecordsConfig{
		Type:       c.GetString("records.type"),
		SQLitePath: c.GetString("records.sqlite_path"),
		MySQLDSN:   c.GetString("records.mysql_dsn"),
	}
}

// GetIntake returns the intake listener configuration
func (c *Config) GetIntake() IntakeConfig {
	return IntakeConfig{
		Type:              c.GetString("intake.type"),
		ListenAddress:     c.GetString("intake.listen_address"),
		Domain:            c.GetString("intake.domain"),
		UploadDir:         c.GetString("intake.upload_dir"),
		MaxMessageBytes:   c.v.GetInt64("intake.max_message_bytes"),
		AllowedExtensions: c.GetStringSlice("intake.allowed_extensions"),
	}
}

// GetRules returns the built-in rules overlaid with any tables set under
// the rules key
func (c *Config) GetRules() (rules.Rules, error) {
	base := rules.Default()
	if !c.v.IsSet("rules") {
		return base, nil
	}
	var override rules.Rules
	if err := c.v.UnmarshalKey("rules", &override); err != nil {
		return rules.Rules{}, fmt.Errorf("invalid rules: %w", err)
	}
	return base.Merge(override), nil
}
