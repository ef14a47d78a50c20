package main

import (
	"fmt"
	"strings"

	"github.com/jimber/tft-wallet/pkg/strkey"
)

// validateAddress checks that s is a well-formed account address.
func validateAddress(s string) error {
	if _, err := strkey.DecodeAccountID(s); err != nil {
		return fmt.Errorf("invalid account address: %w", err)
	}
	return nil
}

// shortenAddress renders an address for notifications and list rows:
// first and last four characters with an ellipsis between.
func shortenAddress(s string) string {
	if len(s) <= 11 {
		return s
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// parseTags splits a comma-separated tag string, trimming whitespace
// and dropping empties and duplicates while keeping first-seen order.
func parseTags(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, tag := range strings.Split(s, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
