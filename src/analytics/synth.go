package analytics

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"dkit-partners/src/models"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Synthetic data generation
//
// There is no live swap-indexing pipeline behind the dashboard; metric points
// and the transaction log are synthesized. The random source is injected so
// callers (and tests) control determinism.
// -----------------------------------------------------------------------------

var swapPairs = []struct {
	From  string
	To    string
	Route string
}{
	{"BTC", "ETH", "BTC→ETH"},
	{"ETH", "USDC", "ETH→USDC"},
	{"USDC", "BTC", "USDC→BTC"},
	{"ETH", "BTC", "ETH→BTC"},
	{"BTC", "USDT", "BTC→USDT"},
	{"SOL", "ETH", "SOL→ETH"},
	{"RUNE", "BTC", "RUNE→BTC"},
}

var chains = []string{models.ChainThor, models.ChainMaya, models.ChainChainflip}

var statuses = []string{models.TxStatusCompleted, models.TxStatusRunning, models.TxStatusRefunded}

// -----------------------------------------------------------------------------

type Synthesizer struct {
	rng *rand.Rand
}

// -----------------------------------------------------------------------------

// NewSynthesizer creates a synthesizer backed by the given random source.
func NewSynthesizer(rng *rand.Rand) *Synthesizer {
	return &Synthesizer{rng: rng}
}

// NewDefaultSynthesizer creates a synthesizer seeded from the clock.
func NewDefaultSynthesizer() *Synthesizer {
	return NewSynthesizer(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// -----------------------------------------------------------------------------

// MetricPoint synthesizes one hourly metric row. Each hour is independent;
// there is no smoothing across hours.
func (s *Synthesizer) MetricPoint(projectID string, t time.Time) models.MMetricPoint {
	volume := 10000 + s.rng.Float64()*15000
	fees := volume * (0.003 + s.rng.Float64()*0.002)
	trades := 20 + s.rng.Intn(40)

	return models.MMetricPoint{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		T:         t,
		VolumeUsd: volume,
		FeesUsd:   fees,
		Trades:    trades,
	}
}

// -----------------------------------------------------------------------------

// Transactions synthesizes the seeded swap log for a fresh project: 8-11
// rows spread over the last ~20 hours. The two most recent rows are pinned
// to Running and Refunded so every status appears in the table.
func (s *Synthesizer) Transactions(projectID string, now time.Time) []models.MTransaction {
	count := 8 + s.rng.Intn(4)
	txs := make([]models.MTransaction, 0, count)

	for i := 0; i < count; i++ {
		hoursAgo := float64(i*2) + s.rng.Float64()*2
		ts := now.Add(-time.Duration(hoursAgo * float64(time.Hour)))

		pair := swapPairs[s.rng.Intn(len(swapPairs))]
		chain := chains[s.rng.Intn(len(chains))]

		var status string
		switch i {
		case 0:
			status = models.TxStatusRunning
		case 1:
			status = models.TxStatusRefunded
		default:
			status = statuses[s.rng.Intn(len(statuses))]
		}

		notional := 1000 + s.rng.Float64()*5000
		amountIn := s.rng.Float64()*5 + 0.1
		amountOut := amountIn * (0.95 + s.rng.Float64()*0.04)

		txs = append(txs, models.MTransaction{
			ID:          uuid.New().String(),
			ProjectID:   projectID,
			Ts:          ts,
			Route:       pair.Route,
			AssetFrom:   pair.From,
			AssetTo:     pair.To,
			AmountIn:    fmt.Sprintf("%.4f %s", amountIn, pair.From),
			AmountOut:   fmt.Sprintf("%.4f %s", amountOut, pair.To),
			UsdNotional: notional,
			FeeUsd:      notional * 0.003,
			Status:      status,
			TxHash:      "0x" + strings.ReplaceAll(uuid.New().String(), "-", ""),
			Chain:       chain,
		})
	}

	return txs
}
