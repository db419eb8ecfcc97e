// Package dna reads a DNA working directory: its descriptor (dna.json or
// dna.yaml), the wasm of every zome and any UI bundles, and computes the
// compiled DNA's deterministic hash.
package dna
