package analytics

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"dkit-partners/src/models"

	"github.com/stretchr/testify/assert"
)

// -----------------------------------------------------------------------------
// Metric points
// -----------------------------------------------------------------------------

func TestMetricPointRanges(t *testing.T) {
	synth := NewSynthesizer(rand.New(rand.NewSource(42)))
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 1000; i++ {
		p := synth.MetricPoint("prj", ts)

		assert.Equal(t, "prj", p.ProjectID)
		assert.Equal(t, ts, p.T)
		assert.GreaterOrEqual(t, p.VolumeUsd, 10000.0)
		assert.Less(t, p.VolumeUsd, 25000.0)

		rate := p.FeesUsd / p.VolumeUsd
		assert.GreaterOrEqual(t, rate, 0.003)
		assert.Less(t, rate, 0.005)

		assert.GreaterOrEqual(t, p.Trades, 20)
		assert.Less(t, p.Trades, 60)
	}
}

func TestMetricPointDeterministicValues(t *testing.T) {
	a := NewSynthesizer(rand.New(rand.NewSource(7)))
	b := NewSynthesizer(rand.New(rand.NewSource(7)))
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 10; i++ {
		pa := a.MetricPoint("prj", ts)
		pb := b.MetricPoint("prj", ts)

		// IDs are fresh uuids; the metric values follow the seed.
		assert.Equal(t, pa.VolumeUsd, pb.VolumeUsd)
		assert.Equal(t, pa.FeesUsd, pb.FeesUsd)
		assert.Equal(t, pa.Trades, pb.Trades)
		assert.NotEqual(t, pa.ID, pb.ID)
	}
}

// -----------------------------------------------------------------------------
// Transaction seed
// -----------------------------------------------------------------------------

func TestTransactionsSeed(t *testing.T) {
	synth := NewSynthesizer(rand.New(rand.NewSource(42)))
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	txs := synth.Transactions("prj", now)

	assert.GreaterOrEqual(t, len(txs), 8)
	assert.LessOrEqual(t, len(txs), 11)

	// The two newest rows cover the non-terminal statuses
	assert.Equal(t, models.TxStatusRunning, txs[0].Status)
	assert.Equal(t, models.TxStatusRefunded, txs[1].Status)

	for i, tx := range txs {
		assert.Equal(t, "prj", tx.ProjectID)
		assert.True(t, tx.Ts.Before(now), "tx %d must be in the past", i)
		assert.True(t, tx.Ts.After(now.Add(-24*time.Hour)), "tx %d too old", i)

		assert.GreaterOrEqual(t, tx.UsdNotional, 1000.0)
		assert.Less(t, tx.UsdNotional, 6000.0)
		assert.InDelta(t, tx.UsdNotional*0.003, tx.FeeUsd, 1e-9)

		assert.True(t, strings.HasPrefix(tx.TxHash, "0x"))
		assert.Len(t, tx.TxHash, 34)

		assert.True(t, strings.HasSuffix(tx.AmountIn, tx.AssetFrom))
		assert.True(t, strings.HasSuffix(tx.AmountOut, tx.AssetTo))
		assert.Contains(t, tx.Route, "→")
	}

	// Rows get older as the index grows
	for i := 1; i < len(txs); i++ {
		assert.True(t, txs[i].Ts.Before(txs[i-1].Ts))
	}
}
