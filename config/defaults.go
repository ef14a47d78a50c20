package config

// DefaultProduction returns the default engine configuration for the
// production network.
func DefaultProduction() *Config {
	return &Config{
		Network: Production,
		DataDir: DefaultDataDir(),
		Horizon: HorizonConfig{
			URL:            "https://horizon.stellar.org",
			TimeoutSeconds: 10,
		},
		Activation: ActivationConfig{
			URL:          "https://activation.production.threefoldtoken.com",
			TrustLineURL: "https://tokenservices.production.threefoldtoken.com",
		},
		Escrow: EscrowConfig{
			URL: "https://unlock.production.threefoldtoken.com",
		},
		Vesting: VestingConfig{
			URL:       "https://vesting.production.threefoldtoken.com",
			AssetCode: "TFT",
		},
		Currencies: []string{"TFT", "TFTA", "FreeTFT"},
		Sync: SyncConfig{
			ReconcileSeconds: 300,
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}

// DefaultTestnet returns the default engine configuration for testnet.
func DefaultTestnet() *Config {
	cfg := DefaultProduction()
	cfg.Network = Testnet
	cfg.Horizon.URL = "https://horizon-testnet.stellar.org"
	cfg.Activation.URL = "https://activation.testnet.threefoldtoken.com"
	cfg.Activation.FriendbotURL = "https://friendbot.stellar.org"
	cfg.Activation.TrustLineURL = "https://tokenservices.testnet.threefoldtoken.com"
	cfg.Escrow.URL = "https://unlock.testnet.threefoldtoken.com"
	cfg.Vesting.URL = "https://vesting.testnet.threefoldtoken.com"
	return cfg
}

// Default returns the default engine configuration for the given network.
func Default(network NetworkType) *Config {
	switch network {
	case Testnet:
		return DefaultTestnet()
	default:
		return DefaultProduction()
	}
}
