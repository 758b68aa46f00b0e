package models

// MConfig Structure
type MConfig struct {
	Name      string           `yaml:"name"`
	Host      string           `yaml:"host"`
	Port      int              `yaml:"port"`
	LogLevel  string           `yaml:"log_level"`
	Storage   MStorageConfig   `yaml:"storage"`
	Auth      MAuthConfig      `yaml:"auth"`
	Analytics MAnalyticsConfig `yaml:"analytics"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MAuthConfig struct {
	SessionTTLDays int `yaml:"session_ttl_days"`
	BcryptCost     int `yaml:"bcrypt_cost"`
}

type MAnalyticsConfig struct {
	BackfillDays           int     `yaml:"backfill_days"`
	BtcPriceUsd            float64 `yaml:"btc_price_usd"`
	DefaultTxLimit         int     `yaml:"default_tx_limit"`
	RefreshIntervalSeconds int     `yaml:"refresh_interval_seconds"`
}
