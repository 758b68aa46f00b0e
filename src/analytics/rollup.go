package analytics

import (
	"time"

	"dkit-partners/src/models"
)

// -----------------------------------------------------------------------------
// Rollup Aggregator
//
// Pure reduction of an ordered point set into the chart series plus summary
// totals. The trailing 24h/48h windows are anchored on wall-clock "now", not
// on the query range, so a query excluding recent hours yields change24h = 0.
// -----------------------------------------------------------------------------

// BuildReport reduces metric points into a series and rollup totals.
func BuildReport(points []models.MMetricPoint, now time.Time, btcPrice float64) models.MMetricsResponse {
	series := make([]models.MSeriesPoint, 0, len(points))

	var volumeSum, feesSum float64
	var tradesSum int

	dayAgo := now.Add(-24 * time.Hour)
	twoDaysAgo := now.Add(-48 * time.Hour)
	var last24hFees, prev24hFees float64

	for _, p := range points {
		series = append(series, models.MSeriesPoint{
			T:         p.T.UTC().Format(time.RFC3339),
			VolumeUsd: Round2(p.VolumeUsd),
			FeesUsd:   Round2(p.FeesUsd),
			Trades:    p.Trades,
		})

		// Totals are computed from the unrounded sources, not from the
		// rounded series values.
		volumeSum += p.VolumeUsd
		feesSum += p.FeesUsd
		tradesSum += p.Trades

		if !p.T.Before(dayAgo) {
			last24hFees += p.FeesUsd
		} else if !p.T.Before(twoDaysAgo) {
			prev24hFees += p.FeesUsd
		}
	}

	change24h := 0.0
	if prev24hFees > 0 {
		change24h = Round4((last24hFees - prev24hFees) / prev24hFees)
	}

	return models.MMetricsResponse{
		Series: series,
		Totals: models.MTotals{
			VolumeUsd:     Round2(volumeSum),
			FeesUsd:       Round2(feesSum),
			Trades:        tradesSum,
			Change24h:     change24h,
			BtcEquivalent: Round4(feesSum / btcPrice),
		},
	}
}

// -----------------------------------------------------------------------------

// FormatTransaction converts a stored transaction into its display shape.
func FormatTransaction(tx models.MTransaction) models.MTransactionView {
	return models.MTransactionView{
		ID:          tx.ID,
		ProjectID:   tx.ProjectID,
		Ts:          tx.Ts.UTC().Format(time.RFC3339),
		Route:       tx.Route,
		AssetFrom:   tx.AssetFrom,
		AssetTo:     tx.AssetTo,
		AmountIn:    tx.AmountIn,
		AmountOut:   tx.AmountOut,
		UsdNotional: Round2(tx.UsdNotional),
		FeeUsd:      Round2(tx.FeeUsd),
		Status:      tx.Status,
		TxHash:      tx.TxHash,
		Chain:       tx.Chain,
	}
}
