// Package keys provides the optional signing identity attached to zome calls.
//
// A signer is loaded from a hex-encoded 32-byte seed file. Two algorithms are
// supported: Ed25519 over sha256(message), and Dilithium3 over
// sha3-256(message). Public keys are rendered as "<alg>:" + base64(pubkey).
package keys
