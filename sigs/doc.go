/*
Package sigs implements the fixed-width recoverable signature codec.

A signature batch is the tight concatenation of 65 byte (r, s, v) triples,
one per signer. Split extracts a single triple from such a blob, and
RecoverSigner turns a triple plus the signed commitment back into the signer
identity. Identities are derived from the recovered secp256k1 public key as
RIPEMD160(SHA256(compressed pubkey)).
*/
package sigs
