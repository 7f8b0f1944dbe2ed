package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSettlementConfig(t *testing.T) {
	cfg := DefaultSettlementConfig()
	assert.Equal(t, 15*time.Minute, cfg.ReconcileInterval)
	assert.Equal(t, 0.01, cfg.DriftTolerance)
	assert.Equal(t, 3, cfg.BalanceRetryAttempts)
}

func TestStaticHolderGet(t *testing.T) {
	cfg := DefaultSettlementConfig()
	cfg.DriftTolerance = 5

	holder := NewStaticSettlementConfigHolder(cfg)
	assert.Equal(t, 5.0, holder.Get().DriftTolerance)
}

func TestValidateSettlementConfig(t *testing.T) {
	assert.NoError(t, validateSettlementConfig(DefaultSettlementConfig()))

	bad := DefaultSettlementConfig()
	bad.ReconcileInterval = 0
	assert.Error(t, validateSettlementConfig(bad))

	bad = DefaultSettlementConfig()
	bad.DriftTolerance = -1
	assert.Error(t, validateSettlementConfig(bad))

	bad = DefaultSettlementConfig()
	bad.BalanceRetryAttempts = 0
	assert.Error(t, validateSettlementConfig(bad))
}
