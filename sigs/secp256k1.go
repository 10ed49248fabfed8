package sigs

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcec"
	"github.com/btcsuite/btcutil"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// RecoverSigner returns the identity whose key produced the given signature
// over the given commitment. A signature that cannot be recovered, for
// example because of a broken recovery byte, is malformed input.
func RecoverSigner(commitment []byte, sig Signature) (quorum.Identity, error) {
	// btcec expects the compact layout with the recovery header byte
	// first, while the wire layout carries it last.
	compact := make([]byte, SignatureLength)
	compact[0] = sig.V
	copy(compact[1:33], sig.R[:])
	copy(compact[33:], sig.S[:])

	pub, _, err := btcec.RecoverCompact(btcec.S256(), compact, commitment)
	if err != nil {
		return quorum.Identity{}, errors.Wrapf(errors.ErrMalformedInput, "signature recovery: %s", err)
	}
	return IdentityFromPubKey(pub), nil
}

// IdentityFromPubKey derives the identity of the given public key.
func IdentityFromPubKey(pub *btcec.PublicKey) quorum.Identity {
	var id quorum.Identity
	copy(id[:], btcutil.Hash160(pub.SerializeCompressed()))
	return id
}

// Sign produces a recoverable signature over the given commitment. It is
// used by clients and tests. Verification on the engine side needs only the
// public recovery path.
func Sign(key *btcec.PrivateKey, commitment []byte) (Signature, error) {
	raw, err := btcec.SignCompact(btcec.S256(), key, commitment, true)
	if err != nil {
		return Signature{}, errors.Wrapf(errors.ErrMalformedInput, "sign: %s", err)
	}
	var sig Signature
	sig.V = raw[0]
	copy(sig.R[:], raw[1:33])
	copy(sig.S[:], raw[33:])
	return sig, nil
}

// GenPrivateKey returns a random new private key.
func GenPrivateKey() *btcec.PrivateKey {
	key, err := btcec.NewPrivateKey(btcec.S256())
	if err != nil {
		panic(err)
	}
	return key
}

// PrivateKeyFromSeed will deterministically generate a private key from a
// given seed. Use if you have a strong source of external randomness, or
// for deterministic keys in test cases.
func PrivateKeyFromSeed(seed []byte) *btcec.PrivateKey {
	h := sha256.Sum256(seed)
	key, _ := btcec.PrivKeyFromBytes(btcec.S256(), h[:])
	return key
}
