// Package publish uploads a compiled DNA into a compository cell.
//
// The work is a chain of dependent zome calls, each embedding hashes
// returned by earlier ones:
//
//	chunks -> file metadata -> zome -> dna template -> instantiated dna
//
// Every stage stops at the first error and nothing already created is
// cleaned up: chunks without an enclosing file, or files without a
// published zome, stay orphaned in the registry. A failed run starts over
// unless Options.Ledger is set, in which case calls that already returned a
// hash are skipped.
//
// Fan-out inside a stage (chunks of one file, files of one zome, zomes of one
// template) is bounded by Options and defaults to strictly sequential.
// Results are always reassembled in input order.
package publish
