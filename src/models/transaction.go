package models

import "time"

// Transaction statuses
const (
	TxStatusCompleted = "Completed"
	TxStatusRunning   = "Running"
	TxStatusRefunded  = "Refunded"
)

// Settlement chains
const (
	ChainThor      = "THOR"
	ChainMaya      = "MAYA"
	ChainChainflip = "CHAINFLIP"
)

// -----------------------------------------------------------------------------

// MTransaction represents a single swap event attributed to a project.
type MTransaction struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Ts          time.Time `json:"-"`
	Route       string    `json:"route"`
	AssetFrom   string    `json:"asset_from"`
	AssetTo     string    `json:"asset_to"`
	AmountIn    string    `json:"amount_in"`
	AmountOut   string    `json:"amount_out"`
	UsdNotional float64   `json:"usd_notional"`
	FeeUsd      float64   `json:"fee_usd"`
	Status      string    `json:"status"`
	TxHash      string    `json:"tx_hash"`
	Chain       string    `json:"chain"`
}
