package models

// MProject represents a registered DeFi integration with its tracking
// identifiers. All identifier fields are optional until onboarding completes.
type MProject struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	LogoUrl          string `json:"logo_url"`
	DappUrl          string `json:"dapp_url"`
	BtcAddress       string `json:"btc_address"`
	ThorName         string `json:"thor_name"`
	MayaName         string `json:"maya_name"`
	ChainflipAddress string `json:"chainflip_address"`
	SetupCompleted   bool   `json:"setup_completed"`
}

// -----------------------------------------------------------------------------

// MProjectUpdate carries a partial project update. Nil fields are left
// untouched.
type MProjectUpdate struct {
	Name             *string `json:"name"`
	LogoUrl          *string `json:"logo_url"`
	DappUrl          *string `json:"dapp_url"`
	BtcAddress       *string `json:"btc_address"`
	ThorName         *string `json:"thor_name"`
	MayaName         *string `json:"maya_name"`
	ChainflipAddress *string `json:"chainflip_address"`
	SetupCompleted   *bool   `json:"setup_completed"`
}
