package models

// -----------------------------------------------------------------------------
// API response shapes
// -----------------------------------------------------------------------------

// MSeriesPoint is one chart-ready entry of the metrics series.
type MSeriesPoint struct {
	T         string  `json:"t"`
	VolumeUsd float64 `json:"volumeUsd"`
	FeesUsd   float64 `json:"feesUsd"`
	Trades    int     `json:"trades"`
}

// MTotals is the rollup over the queried series.
type MTotals struct {
	VolumeUsd     float64 `json:"volumeUsd"`
	FeesUsd       float64 `json:"feesUsd"`
	Trades        int     `json:"trades"`
	Change24h     float64 `json:"change24h"`
	BtcEquivalent float64 `json:"btcEquivalent"`
}

// MMetricsResponse is the payload of GET /api/metrics.
type MMetricsResponse struct {
	Series []MSeriesPoint `json:"series"`
	Totals MTotals        `json:"totals"`
}

// -----------------------------------------------------------------------------

// MTransactionView is a display-formatted transaction row.
type MTransactionView struct {
	ID          string  `json:"id"`
	ProjectID   string  `json:"projectId"`
	Ts          string  `json:"ts"`
	Route       string  `json:"route"`
	AssetFrom   string  `json:"assetFrom"`
	AssetTo     string  `json:"assetTo"`
	AmountIn    string  `json:"amountIn"`
	AmountOut   string  `json:"amountOut"`
	UsdNotional float64 `json:"usdNotional"`
	FeeUsd      float64 `json:"feeUsd"`
	Status      string  `json:"status"`
	TxHash      string  `json:"txHash"`
	Chain       string  `json:"chain"`
}

// -----------------------------------------------------------------------------

// MMeResponse is the payload of GET /api/me.
type MMeResponse struct {
	User    MUser    `json:"user"`
	Project MProject `json:"project"`
}

// -----------------------------------------------------------------------------
// Live update payload pushed over the websocket
// -----------------------------------------------------------------------------

type MLiveUpdate struct {
	Type      string           `json:"type"` // "INITIAL" or "UPDATE"
	ProjectID string           `json:"project_id"`
	Metrics   MMetricsResponse `json:"metrics"`
	Timestamp int64            `json:"timestamp"`
}
