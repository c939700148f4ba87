package stellar

import (
	"crypto/ed25519"
	"encoding/base64"
	"testing"

	"github.com/stellar/go/strkey"
)

func testKeypair(t *testing.T) (string, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	address, err := strkey.Encode(strkey.VersionByteAccountID, pub)
	if err != nil {
		t.Fatal(err)
	}
	return address, priv
}

func TestVerifyProof_ValidSignature(t *testing.T) {
	address, priv := testKeypair(t)
	challenge := "test-nonce-12345"

	sig := ed25519.Sign(priv, ProofMessage(address, challenge))

	err := VerifyProof(Proof{
		Address:   address,
		Challenge: challenge,
		Signature: base64.StdEncoding.EncodeToString(sig),
	})
	if err != nil {
		t.Errorf("expected valid proof, got: %v", err)
	}
}

func TestVerifyProof_WrongChallenge(t *testing.T) {
	address, priv := testKeypair(t)
	sig := ed25519.Sign(priv, ProofMessage(address, "nonce-a"))

	err := VerifyProof(Proof{
		Address:   address,
		Challenge: "nonce-b",
		Signature: base64.StdEncoding.EncodeToString(sig),
	})
	if err == nil {
		t.Error("expected verification failure for mismatched challenge")
	}
}

func TestVerifyProof_WrongKey(t *testing.T) {
	address, _ := testKeypair(t)
	_, otherPriv := testKeypair(t)
	sig := ed25519.Sign(otherPriv, ProofMessage(address, "nonce"))

	err := VerifyProof(Proof{
		Address:   address,
		Challenge: "nonce",
		Signature: base64.StdEncoding.EncodeToString(sig),
	})
	if err == nil {
		t.Error("expected verification failure for foreign key signature")
	}
}

func TestVerifyProof_MalformedInputs(t *testing.T) {
	address, priv := testKeypair(t)
	sig := ed25519.Sign(priv, ProofMessage(address, "nonce"))

	tests := []struct {
		name  string
		proof Proof
	}{
		{"bad address", Proof{Address: "not-an-address", Challenge: "nonce", Signature: base64.StdEncoding.EncodeToString(sig)}},
		{"bad base64", Proof{Address: address, Challenge: "nonce", Signature: "%%%"}},
		{"short signature", Proof{Address: address, Challenge: "nonce", Signature: base64.StdEncoding.EncodeToString(sig[:10])}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := VerifyProof(tt.proof); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRegistryLookups(t *testing.T) {
	reg := NewRegistry(DefaultAssets())

	usdc, ok := reg.BySymbol("USDC")
	if !ok {
		t.Fatal("USDC missing from default registry")
	}
	if usdc.Decimals != 7 {
		t.Errorf("USDC decimals = %d, want 7", usdc.Decimals)
	}

	back, ok := reg.ByContract(usdc.Contract)
	if !ok || back.Symbol != "USDC" {
		t.Errorf("contract lookup returned %+v, ok=%v", back, ok)
	}

	if _, ok := reg.BySymbol("DOGE"); ok {
		t.Error("unknown symbol should not resolve")
	}
	if _, ok := reg.ByContract("CUNKNOWN"); ok {
		t.Error("unknown contract should not resolve")
	}
}

func TestIsAccountAddress(t *testing.T) {
	address, _ := testKeypair(t)
	if !IsAccountAddress(address) {
		t.Errorf("%s should be a valid account address", address)
	}
	if IsAccountAddress("GINVALID") {
		t.Error("malformed address accepted")
	}
	if IsAccountAddress("") {
		t.Error("empty address accepted")
	}
}

func TestParseAmountRoundTrip(t *testing.T) {
	tests := []struct {
		in      string
		stroops int64
		wantErr bool
	}{
		{"100", 100_0000000, false},
		{"0.0000001", 1, false},
		{"125.50", 125_5000000, false},
		{"", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseAmount(%q) expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q): %v", tt.in, err)
			}
			if got != tt.stroops {
				t.Errorf("ParseAmount(%q) = %d, want %d", tt.in, got, tt.stroops)
			}
		})
	}
}
