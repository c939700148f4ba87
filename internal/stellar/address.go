package stellar

import (
	"fmt"

	"github.com/stellar/go/amount"
	"github.com/stellar/go/strkey"
)

// IsAccountAddress reports whether s is a valid G... account id.
func IsAccountAddress(s string) bool {
	return strkey.IsValidEd25519PublicKey(s)
}

// IsContractAddress reports whether s is a valid C... contract address.
func IsContractAddress(s string) bool {
	_, err := strkey.Decode(strkey.VersionByteContract, s)
	return err == nil
}

// AccountKeyBytes decodes a G... account id into its raw ed25519 public key.
func AccountKeyBytes(address string) ([]byte, error) {
	raw, err := strkey.Decode(strkey.VersionByteAccountID, address)
	if err != nil {
		return nil, fmt.Errorf("invalid stellar account address: %w", err)
	}
	return raw, nil
}

// ParseAmount converts a decimal token amount ("125.50") into stroops.
func ParseAmount(s string) (int64, error) {
	v, err := amount.ParseInt64(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return v, nil
}

// FormatAmount renders stroops as a 7-decimal string.
func FormatAmount(stroops int64) string {
	return amount.StringFromInt64(stroops)
}
