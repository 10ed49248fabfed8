package engine

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/registry"
)

// Canonical encoding primitives. Commitments are a wire contract shared
// with every signer, so the encoding must be byte exact: fixed field order,
// big endian integers, length prefixed variable data and raw fixed size
// identities. Any change here is a breaking protocol version bump.

func writeUint32(w *bytes.Buffer, v uint32) {
	var raw [4]byte
	binary.BigEndian.PutUint32(raw[:], v)
	w.Write(raw[:])
}

func writeUint64(w *bytes.Buffer, v uint64) {
	var raw [8]byte
	binary.BigEndian.PutUint64(raw[:], v)
	w.Write(raw[:])
}

func writeBytes(w *bytes.Buffer, b []byte) {
	writeUint32(w, uint32(len(b)))
	w.Write(b)
}

func writeString(w *bytes.Buffer, s string) {
	writeBytes(w, []byte(s))
}

func writeIdentity(w *bytes.Buffer, id quorum.Identity) {
	w.Write(id[:])
}

func writeMembers(w *bytes.Buffer, owners []quorum.Identity, weights []registry.Weight) {
	writeUint32(w, uint32(len(owners)))
	for _, owner := range owners {
		writeIdentity(w, owner)
	}
	writeUint32(w, uint32(len(weights)))
	for _, weight := range weights {
		writeUint32(w, uint32(weight))
	}
}

// commitment builds the 32 byte value signers authorize: the hash of the
// message path, its canonical fields and the nonce, folded together with
// the domain separator.
func commitment(separator []byte, msg Msg, nonce uint64) []byte {
	var buf bytes.Buffer
	writeString(&buf, msg.Path())
	msg.encode(&buf)
	writeUint64(&buf, nonce)
	inner := sha256.Sum256(buf.Bytes())

	var outer bytes.Buffer
	outer.Write(separator)
	outer.Write(inner[:])
	final := sha256.Sum256(outer.Bytes())
	return final[:]
}
