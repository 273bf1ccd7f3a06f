// Package config loads triage settings from defaults, an optional config
// file, TRIAGE_* environment variables and bound command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"triage/internal/builder"
)

// EnvPrefix is prepended to every environment override (TRIAGE_DB, ...).
const EnvPrefix = "TRIAGE"

// DefaultFile is looked up relative to the working directory.
var DefaultFile = filepath.Join(".triage", "config.yaml")

// Keys.
const (
	KeyDB            = "db"
	KeyWorkspace     = "workspace"
	KeyLogLevel      = "log.level"
	KeyLogFormat     = "log.format"
	KeyTracing       = "tracing.exporter"
	KeyMetricsAddr   = "metrics.addr"
	KeyWorkers       = "workers"
	KeyLookupTimeout = "timeline.lookup_timeout"
	KeyPreempt       = "timeline.preempt"
	KeyRecentDays    = "thresholds.recent_change_days"
	KeyInsufficient  = "thresholds.insufficient_evidence"
	KeyMixedGap      = "thresholds.mixed_gap"
	KeyMixedFloor    = "thresholds.mixed_floor"
	KeyMinorityShare = "thresholds.minority_share"
)

// Config is the resolved configuration.
type Config struct {
	DB          string
	Workspace   string
	LogLevel    string
	LogFormat   string
	Tracing     string
	MetricsAddr string
	Thresholds  builder.Thresholds
}

// New returns a viper instance carrying the defaults and env binding.
func New() *viper.Viper {
	v := viper.New()
	th := builder.DefaultThresholds()
	v.SetDefault(KeyDB, filepath.Join(".triage", "triage.db"))
	v.SetDefault(KeyWorkspace, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyTracing, "none")
	v.SetDefault(KeyMetricsAddr, "")
	v.SetDefault(KeyWorkers, th.Workers)
	v.SetDefault(KeyLookupTimeout, th.LookupTimeout)
	v.SetDefault(KeyPreempt, th.TimelinePreempt)
	v.SetDefault(KeyRecentDays, th.RecentChangeDays)
	v.SetDefault(KeyInsufficient, th.InsufficientEvidence)
	v.SetDefault(KeyMixedGap, th.MixedGap)
	v.SetDefault(KeyMixedFloor, th.MixedFloor)
	v.SetDefault(KeyMinorityShare, th.MinorityShare)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path (or DefaultFile when path is empty and it exists) into v
// and resolves a Config. A missing default file is not an error.
func Load(v *viper.Viper, path string) (Config, error) {
	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}
	return Resolve(v)
}

// Resolve builds a Config from v without reading any file.
func Resolve(v *viper.Viper) (Config, error) {
	c := Config{
		DB:          v.GetString(KeyDB),
		Workspace:   v.GetString(KeyWorkspace),
		LogLevel:    v.GetString(KeyLogLevel),
		LogFormat:   v.GetString(KeyLogFormat),
		Tracing:     v.GetString(KeyTracing),
		MetricsAddr: v.GetString(KeyMetricsAddr),
		Thresholds: builder.Thresholds{
			TimelinePreempt:      v.GetFloat64(KeyPreempt),
			RecentChangeDays:     v.GetInt(KeyRecentDays),
			InsufficientEvidence: v.GetFloat64(KeyInsufficient),
			MixedGap:             v.GetFloat64(KeyMixedGap),
			MixedFloor:           v.GetFloat64(KeyMixedFloor),
			MinorityShare:        v.GetFloat64(KeyMinorityShare),
			Workers:              v.GetInt(KeyWorkers),
			LookupTimeout:        v.GetDuration(KeyLookupTimeout),
		},
	}
	if c.Thresholds.LookupTimeout <= 0 {
		c.Thresholds.LookupTimeout = 10 * time.Second
	}
	if err := c.Thresholds.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return c, nil
}
