package quorumtest

import (
	"sort"

	"github.com/btcsuite/btcd/btcec"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/registry"
	"github.com/iov-one/quorum/sigs"
)

// Signer is a test key with its derived identity.
type Signer struct {
	Key *btcec.PrivateKey
	ID  quorum.Identity
}

// NewSigner returns a signer with a random new key.
func NewSigner() *Signer {
	return wrap(sigs.GenPrivateKey())
}

// SignerFromSeed returns a deterministic signer. Use for reproducible test
// fixtures.
func SignerFromSeed(seed string) *Signer {
	return wrap(sigs.PrivateKeyFromSeed([]byte(seed)))
}

func wrap(key *btcec.PrivateKey) *Signer {
	return &Signer{
		Key: key,
		ID:  sigs.IdentityFromPubKey(key.PubKey()),
	}
}

// Sign returns the signature of this signer over the given commitment.
func (s *Signer) Sign(commitment []byte) sigs.Signature {
	sig, err := sigs.Sign(s.Key, commitment)
	if err != nil {
		panic(err)
	}
	return sig
}

// Ascending returns the given signers sorted by identity, the order a
// valid signature batch must follow.
func Ascending(signers ...*Signer) []*Signer {
	sorted := append([]*Signer(nil), signers...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID.Compare(sorted[j].ID) < 0
	})
	return sorted
}

// SignBatch returns the packed signature blob of all signers over the
// given commitment, sorted in ascending identity order.
func SignBatch(commitment []byte, signers ...*Signer) []byte {
	blob := make([]byte, 0, sigs.BatchSize(len(signers)))
	for _, s := range Ascending(signers...) {
		blob = append(blob, s.Sign(commitment).Bytes()...)
	}
	return blob
}

// Identities maps signers to their identities, keeping the order.
func Identities(signers ...*Signer) []quorum.Identity {
	ids := make([]quorum.Identity, len(signers))
	for i, s := range signers {
		ids[i] = s.ID
	}
	return ids
}

// Events is a registry.EventSink recording everything emitted.
type Events struct {
	Events []registry.Event
}

func (e *Events) Emit(ev registry.Event) {
	e.Events = append(e.Events, ev)
}

// Types returns the type identifiers of all recorded events, in emission
// order.
func (e *Events) Types() []string {
	types := make([]string, len(e.Events))
	for i, ev := range e.Events {
		types[i] = ev.Type()
	}
	return types
}
