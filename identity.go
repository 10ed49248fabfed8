package quorum

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/iov-one/quorum/errors"
)

// IdentityLength is the length of all identities. It must not change during
// the lifetime of a deployment as identities are used as map keys and as raw
// bytes inside signed commitments.
const IdentityLength = 20

var (
	// Sentinel is the reserved identity anchoring the circular membership
	// list. It is never a member and never a valid signer.
	Sentinel = Identity{IdentityLength - 1: 0x01}

	// IsValidChainID is the RegExp to ensure valid chain IDs
	IsValidChainID = regexp.MustCompile(`^[a-zA-Z0-9_\-]{6,20}$`).MatchString

	zeroIdentity Identity
)

// Identity is a collision-free, one-way digest of a public key. It is the
// fixed size value members are known by and signatures recover to.
//
// It is an array and not a slice so that it can be used as a map key.
type Identity [IdentityLength]byte

// IdentityFromBytes converts raw bytes into an Identity, enforcing the
// proper size.
func IdentityFromBytes(raw []byte) (Identity, error) {
	var id Identity
	if len(raw) != IdentityLength {
		return id, errors.Wrapf(errors.ErrMalformedInput, "identity must be %d bytes", IdentityLength)
	}
	copy(id[:], raw)
	return id, nil
}

// IsZero returns true for the zero identity. The zero identity is never a
// valid member.
func (a Identity) IsZero() bool {
	return a == zeroIdentity
}

// Equals checks if two identities are the same
func (a Identity) Equals(b Identity) bool {
	return a == b
}

// Compare orders identities by raw byte value. This is the total order used
// to enforce strictly ascending signature batches.
func (a Identity) Compare(b Identity) int {
	return bytes.Compare(a[:], b[:])
}

// String returns a human readable string.
func (a Identity) String() string {
	if a.IsZero() {
		return "(zero)"
	}
	return strings.ToUpper(hex.EncodeToString(a[:]))
}

// Validate returns an error if the identity is one of the reserved values.
func (a Identity) Validate() error {
	if a.IsZero() {
		return errors.Wrap(errors.ErrInvalidIdentity, "zero identity")
	}
	if a == Sentinel {
		return errors.Wrap(errors.ErrInvalidIdentity, "sentinel identity")
	}
	return nil
}

// MarshalJSON provides a hex representation for JSON, to override the
// standard base64 array encoding.
func (a Identity) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.ToUpper(hex.EncodeToString(a[:])))
}

func (a *Identity) UnmarshalJSON(raw []byte) error {
	var enc string
	if err := json.Unmarshal(raw, &enc); err != nil {
		return errors.Wrap(errors.ErrMalformedInput, "cannot decode json")
	}
	val, err := hex.DecodeString(enc)
	if err != nil {
		return errors.Wrap(errors.ErrMalformedInput, "cannot decode hex")
	}
	id, err := IdentityFromBytes(val)
	if err != nil {
		return err
	}
	*a = id
	return nil
}
