package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// SettlementConfig carries the operational tunables of the settlement
// core. It is reloadable at runtime so drift tolerances can be adjusted
// without a restart.
type SettlementConfig struct {
	// ReconcileInterval is how often the out-of-band drift audit runs.
	ReconcileInterval time.Duration `mapstructure:"reconcileInterval"`
	// DriftTolerance is the absolute amount of divergence between the
	// summed ledger and the stored received amount that is reported.
	DriftTolerance float64 `mapstructure:"driftTolerance"`
	// DebitWarnThreshold logs a warning when a manual debit exceeds
	// this amount. Debits themselves are unbounded.
	DebitWarnThreshold float64 `mapstructure:"debitWarnThreshold"`
	// BalanceRetryAttempts bounds the optimistic-version retry loop on
	// concurrent balance updates.
	BalanceRetryAttempts int `mapstructure:"balanceRetryAttempts"`
}

func DefaultSettlementConfig() SettlementConfig {
	return SettlementConfig{
		ReconcileInterval:    15 * time.Minute,
		DriftTolerance:       0.01,
		DebitWarnThreshold:   100_000,
		BalanceRetryAttempts: 3,
	}
}

type SettlementConfigHolder struct {
	current atomic.Value // holds SettlementConfig
}

func NewSettlementConfigHolder() (*SettlementConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("settlement")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/vaahan/config")
	v.AddConfigPath("/etc/vaahan")
	v.AddConfigPath(".")

	v.SetEnvPrefix("VAAHAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultSettlementConfig()
		v.SetDefault("settlement.reconcileInterval", defaults.ReconcileInterval)
		v.SetDefault("settlement.driftTolerance", defaults.DriftTolerance)
		v.SetDefault("settlement.debitWarnThreshold", defaults.DebitWarnThreshold)
		v.SetDefault("settlement.balanceRetryAttempts", defaults.BalanceRetryAttempts)
	}

	var cfg SettlementConfig
	if err := v.UnmarshalKey("settlement", &cfg); err != nil {
		return nil, err
	}
	if err := validateSettlementConfig(cfg); err != nil {
		return nil, err
	}

	holder := &SettlementConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated SettlementConfig
		if err := v.UnmarshalKey("settlement", &updated); err != nil {
			log.Printf("[settlement-config] reload failed: %v", err)
			return
		}
		if err := validateSettlementConfig(updated); err != nil {
			log.Printf("[settlement-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[settlement-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticSettlementConfigHolder wraps a fixed config with no file
// watching. Used by tests and one-shot tooling.
func NewStaticSettlementConfigHolder(cfg SettlementConfig) *SettlementConfigHolder {
	holder := &SettlementConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *SettlementConfigHolder) Get() SettlementConfig {
	return h.current.Load().(SettlementConfig)
}

func validateSettlementConfig(cfg SettlementConfig) error {
	if cfg.ReconcileInterval <= 0 {
		return errors.New("settlement.reconcileInterval must be positive")
	}
	if cfg.DriftTolerance < 0 {
		return errors.New("settlement.driftTolerance cannot be negative")
	}
	if cfg.BalanceRetryAttempts < 1 {
		return errors.New("settlement.balanceRetryAttempts must be at least 1")
	}
	return nil
}
