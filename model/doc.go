// Package model defines the records exchanged with the compository registry
// and the error taxonomy shared by every publishing stage.
//
// Every record here is create-once: the registry content-addresses it and the
// client only ever holds the returned hash. Field order inside slices
// (chunk hashes, zome references) is part of a record's identity.
package model
