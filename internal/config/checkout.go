package config

import (
	"os"
	"strconv"
)

// CheckoutConfig carries the fixed per-event checkout parameters and the
// payment provider credentials.  Everything here used to live inline in
// the checkout flow; it is now injected so that nothing in the workflow
// or gateway is hard-coded.  SplitJSON holds the provider's income split
// configuration as raw JSON; the gateway client parses it.
type CheckoutConfig struct {
	AmountMinor  int64  // ticket price in minor currency units (single tier, no partial payments)
	Currency     string // ISO currency code
	RefPrefix    string // transaction reference prefix
	Description  string // payment description shown by the provider
	APIKey       string // provider API key
	ContractCode string // provider contract code
	BaseURL      string // provider API base URL; empty disables the gateway
	SplitJSON    string // income split rules, raw JSON
}

func envInt64(k string, d int64) int64 {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n
	}
	return d
}

// LoadCheckoutConfig reads the checkout parameters from the environment.
// Defaults describe the current event; provider credentials have no
// default and an unconfigured gateway rejects checkout attempts rather
// than failing startup.
func LoadCheckoutConfig() CheckoutConfig {
	return CheckoutConfig{
		AmountMinor:  envInt64("CHECKOUT_AMOUNT_MINOR", 2500000),
		Currency:     getenv("CHECKOUT_CURRENCY", "NGN"),
		RefPrefix:    getenv("CHECKOUT_REF_PREFIX", "LW"),
		Description:  getenv("CHECKOUT_DESCRIPTION", "Lahray World"),
		APIKey:       envStr("PAYMENT_API_KEY", ""),
		ContractCode: envStr("PAYMENT_CONTRACT_CODE", ""),
		BaseURL:      envStr("PAYMENT_BASE_URL", ""),
		SplitJSON:    envStr("PAYMENT_SPLIT_CONFIG", ""),
	}
}
