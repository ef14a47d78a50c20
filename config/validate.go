package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks runtime engine config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Network != Production && cfg.Network != Testnet {
		return fmt.Errorf("network must be %q or %q", Production, Testnet)
	}

	if err := validateURL(cfg.Horizon.URL, "horizon.url"); err != nil {
		return err
	}
	if cfg.Horizon.TimeoutSeconds <= 0 {
		return fmt.Errorf("horizon.timeout must be positive")
	}

	if cfg.Network == Production {
		if err := validateURL(cfg.Activation.URL, "activation.url"); err != nil {
			return err
		}
	} else if err := validateURL(cfg.Activation.FriendbotURL, "activation.friendbot"); err != nil {
		return err
	}
	if err := validateURL(cfg.Activation.TrustLineURL, "activation.trustline"); err != nil {
		return err
	}
	if err := validateURL(cfg.Escrow.URL, "escrow.url"); err != nil {
		return err
	}
	if err := validateURL(cfg.Vesting.URL, "vesting.url"); err != nil {
		return err
	}
	if cfg.Vesting.AssetCode == "" {
		return fmt.Errorf("vesting.asset must not be empty")
	}

	if len(cfg.Currencies) == 0 {
		return fmt.Errorf("currencies must list at least one asset code")
	}
	seen := make(map[string]struct{}, len(cfg.Currencies))
	for i, c := range cfg.Currencies {
		c = strings.TrimSpace(c)
		if c == "" {
			return fmt.Errorf("currencies[%d] is empty", i)
		}
		if _, ok := seen[c]; ok {
			return fmt.Errorf("currencies has duplicate asset code %q", c)
		}
		seen[c] = struct{}{}
		cfg.Currencies[i] = c
	}

	if cfg.Sync.ReconcileSeconds <= 0 {
		return fmt.Errorf("sync.reconcile must be positive")
	}

	return nil
}

func validateURL(raw, field string) error {
	if raw == "" {
		return fmt.Errorf("%s must not be empty", field)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s is not a valid URL", field)
	}
	return nil
}
