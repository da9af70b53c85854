// Package id provides identifier minting for the simulated services.
//
// This is the canonical source for ID generation across the apistub codebase.
// It provides two kinds of identifiers:
//
//   - Sequence: prefixed, zero-padded, strictly monotonic identifiers in the
//     style third-party services use for entity IDs (e.g. "rec00000000000003").
//     Each prefix owns an independent counter for the life of the Sequence.
//   - Secret: random secrets (crypto/rand) for simulated credentials such as
//     webhook MAC secrets.
package id
