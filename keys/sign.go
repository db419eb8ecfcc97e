package keys

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"golang.org/x/crypto/sha3"
)

const (
	AlgEd25519    = "ed25519"
	AlgDilithium3 = "dilithium3"
)

// Signer signs zome call envelopes.
type Signer interface {
	Algorithm() string
	// PublicKey returns "<alg>:" + base64(public key bytes).
	PublicKey() string
	Sign(message []byte) ([]byte, error)
}

// NewSigner builds a signer for alg from a 32-byte seed.
func NewSigner(alg string, seed []byte) (Signer, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	switch alg {
	case "", AlgEd25519:
		return ed25519Signer{priv: ed25519.NewKeyFromSeed(seed)}, nil
	case AlgDilithium3:
		var s [mode3.SeedSize]byte
		copy(s[:], seed)
		pk, sk := mode3.NewKeyFromSeed(&s)
		return dilithium3Signer{pub: pk, priv: sk}, nil
	default:
		return nil, fmt.Errorf("unsupported signing algorithm: %q", alg)
	}
}

type ed25519Signer struct {
	priv ed25519.PrivateKey
}

func (s ed25519Signer) Algorithm() string { return AlgEd25519 }

func (s ed25519Signer) PublicKey() string {
	pub := s.priv.Public().(ed25519.PublicKey)
	return AlgEd25519 + ":" + base64.StdEncoding.EncodeToString(pub)
}

func (s ed25519Signer) Sign(message []byte) ([]byte, error) {
	digest := sha256.Sum256(message)
	return ed25519.Sign(s.priv, digest[:]), nil
}

type dilithium3Signer struct {
	pub  *mode3.PublicKey
	priv *mode3.PrivateKey
}

func (s dilithium3Signer) Algorithm() string { return AlgDilithium3 }

func (s dilithium3Signer) PublicKey() string {
	return AlgDilithium3 + ":" + base64.StdEncoding.EncodeToString(s.pub.Bytes())
}

func (s dilithium3Signer) Sign(message []byte) ([]byte, error) {
	digest := sha3.Sum256(message)
	sig := make([]byte, mode3.SignatureSize)
	mode3.SignTo(s.priv, digest[:], sig)
	return sig, nil
}

// Verify checks signature over message against a public key string produced
// by Signer.PublicKey.
func Verify(publicKey string, message, signature []byte) bool {
	alg, encoded, ok := strings.Cut(publicKey, ":")
	if !ok {
		return false
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return false
	}
	switch alg {
	case AlgEd25519:
		if len(raw) != ed25519.PublicKeySize {
			return false
		}
		digest := sha256.Sum256(message)
		return ed25519.Verify(ed25519.PublicKey(raw), digest[:], signature)
	case AlgDilithium3:
		var pk mode3.PublicKey
		if err := pk.UnmarshalBinary(raw); err != nil {
			return false
		}
		digest := sha3.Sum256(message)
		return mode3.Verify(&pk, digest[:], signature)
	default:
		return false
	}
}
