package sigs

// SignatureLength is the size of one serialized signature: 32 bytes r,
// 32 bytes s and a single recovery byte v.
const SignatureLength = 65

// Signature is a single recoverable signature over a 32 byte commitment.
type Signature struct {
	R [32]byte
	S [32]byte
	V byte
}

// Split returns the signature stored at the given slot of a tightly packed
// signature blob.
//
// This is a pure function with no bounds checking beyond what slicing
// implies. The caller is responsible for verifying the blob length covers
// all slots it intends to read.
func Split(blob []byte, index int) Signature {
	var sig Signature
	raw := blob[index*SignatureLength : (index+1)*SignatureLength]
	copy(sig.R[:], raw[:32])
	copy(sig.S[:], raw[32:64])
	sig.V = raw[64]
	return sig
}

// Bytes serializes the signature in the r || s || v wire layout.
func (sig Signature) Bytes() []byte {
	raw := make([]byte, SignatureLength)
	copy(raw[:32], sig.R[:])
	copy(raw[32:64], sig.S[:])
	raw[64] = sig.V
	return raw
}

// BatchSize returns the exact blob length of the given number of packed
// signatures.
func BatchSize(count int) int {
	return count * SignatureLength
}
