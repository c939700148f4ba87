package stellar

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// ProofPrefix is prepended to the signed message so a wallet signature for
// this service can never double as a transaction signature.
const ProofPrefix = "stellar-p2p-wallet-proof/v1/"

// Proof carries the wallet's answer to a server-issued challenge.
type Proof struct {
	Address   string `json:"address"`   // G... account id, also the signing key
	Challenge string `json:"challenge"` // server nonce
	Signature string `json:"signature"` // base64
}

// ProofMessage builds the exact bytes the wallet must sign:
// sha256(ProofPrefix ++ address ++ ":" ++ challenge).
func ProofMessage(address, challenge string) []byte {
	h := sha256.Sum256([]byte(ProofPrefix + address + ":" + challenge))
	return h[:]
}

// VerifyProof checks that the wallet holding the address's ed25519 key
// signed the challenge. The challenge's single-use and expiry guarantees are
// the caller's responsibility (the nonce is consumed before verification).
func VerifyProof(p Proof) error {
	pubKey, err := AccountKeyBytes(p.Address)
	if err != nil {
		return err
	}
	if len(pubKey) != ed25519.PublicKeySize {
		return fmt.Errorf("invalid public key size: %d", len(pubKey))
	}

	sig, err := base64.StdEncoding.DecodeString(p.Signature)
	if err != nil {
		return fmt.Errorf("invalid signature base64: %w", err)
	}
	if len(sig) != ed25519.SignatureSize {
		return fmt.Errorf("invalid signature size: %d", len(sig))
	}

	if !ed25519.Verify(pubKey, ProofMessage(p.Address, p.Challenge), sig) {
		return fmt.Errorf("invalid signature")
	}
	return nil
}
