package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ReportingConfig holds the reduction target policy used by dashboards and
// the energy formula.
type ReportingConfig struct {
	BaselineYear             int     `mapstructure:"baselineYear"`
	TargetYear               int     `mapstructure:"targetYear"`
	ReductionFraction        float64 `mapstructure:"reductionFraction"`
	FallbackBaseline         float64 `mapstructure:"fallbackBaseline"`
	TreatZeroAsMissing       bool    `mapstructure:"treatZeroAsMissing"`
	ClampNegativeNetActivity bool    `mapstructure:"clampNegativeNetActivity"`
}

func DefaultReportingConfig() ReportingConfig {
	return ReportingConfig{
		BaselineYear:             2024,
		TargetYear:               2030,
		ReductionFraction:        0.45,
		FallbackBaseline:         752733.86,
		TreatZeroAsMissing:       true,
		ClampNegativeNetActivity: false,
	}
}

type ReportingConfigHolder struct {
	current atomic.Value // holds ReportingConfig
}

// NewStaticReportingConfigHolder wraps a fixed configuration.
func NewStaticReportingConfigHolder(cfg ReportingConfig) *ReportingConfigHolder {
	holder := &ReportingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

// NewReportingConfigHolder reads reporting.yml and keeps watching it. Edits
// that fail validation are logged and ignored.
func NewReportingConfigHolder() (*ReportingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("reporting")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/carbon")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CARBON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultReportingConfig()
	v.SetDefault("reporting.baselineYear", defaults.BaselineYear)
	v.SetDefault("reporting.targetYear", defaults.TargetYear)
	v.SetDefault("reporting.reductionFraction", defaults.ReductionFraction)
	v.SetDefault("reporting.fallbackBaseline", defaults.FallbackBaseline)
	v.SetDefault("reporting.treatZeroAsMissing", defaults.TreatZeroAsMissing)
	v.SetDefault("reporting.clampNegativeNetActivity", defaults.ClampNegativeNetActivity)

	found := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		found = false
	}

	cfg, err := unmarshalReporting(v)
	if err != nil {
		return nil, err
	}
	if err := ValidateReportingConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticReportingConfigHolder(cfg)
	if !found {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := unmarshalReporting(v)
		if err != nil {
			log.Printf("[reporting-config] reload failed: %v", err)
			return
		}
		if err := ValidateReportingConfig(updated); err != nil {
			log.Printf("[reporting-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[reporting-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// unmarshalReporting decodes through AllSettings so keys missing from the
// file keep their defaults.
func unmarshalReporting(v *viper.Viper) (ReportingConfig, error) {
	var wrapper struct {
		Reporting ReportingConfig `mapstructure:"reporting"`
	}
	if err := v.Unmarshal(&wrapper); err != nil {
		return ReportingConfig{}, err
	}
	return wrapper.Reporting, nil
}

func (h *ReportingConfigHolder) Get() ReportingConfig {
	if h == nil {
		return DefaultReportingConfig()
	}
	cfg, ok := h.current.Load().(ReportingConfig)
	if !ok {
		return DefaultReportingConfig()
	}
	return cfg
}

func ValidateReportingConfig(cfg ReportingConfig) error {
	if cfg.BaselineYear <= 0 {
		return errors.New("reporting.baselineYear must be positive")
	}
	if cfg.TargetYear <= cfg.BaselineYear {
		return errors.New("reporting.targetYear must be after reporting.baselineYear")
	}
	if cfg.ReductionFraction < 0 || cfg.ReductionFraction > 1 {
		return errors.New("reporting.reductionFraction must be within [0, 1]")
	}
	if cfg.FallbackBaseline < 0 {
		return errors.New("reporting.fallbackBaseline cannot be negative")
	}
	return nil
}
