package crypto

import (
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// Transcript accumulates serialized group elements for a Fiat-Shamir style
// challenge. Points are appended in their fixed-size uncompressed encoding;
// the literal tag is appended last, right before hashing.
type Transcript struct {
	buf []byte
}

// NewTranscript returns a transcript with room for sizeHint bytes.
func NewTranscript(sizeHint int) *Transcript {
	return &Transcript{buf: make([]byte, 0, sizeHint)}
}

// AppendG1 appends the encodings of ps in order.
func (t *Transcript) AppendG1(ps ...*bls12381.G1Affine) *Transcript {
	for _, p := range ps {
		t.buf = append(t.buf, G1Bytes(p)...)
	}
	return t
}

// AppendG2 appends the encodings of ps in order.
func (t *Transcript) AppendG2(ps ...*bls12381.G2Affine) *Transcript {
	for _, p := range ps {
		t.buf = append(t.buf, G2Bytes(p)...)
	}
	return t
}

// AppendBytes appends raw bytes, typically a previously built prefix.
func (t *Transcript) AppendBytes(b []byte) *Transcript {
	t.buf = append(t.buf, b...)
	return t
}

// Bytes returns the accumulated transcript without a tag.
func (t *Transcript) Bytes() []byte {
	return t.buf
}

// Challenge appends tag and hashes the transcript to a scalar. The
// transcript can be reused afterwards; the tag is not retained.
func (t *Transcript) Challenge(tag string) (fr.Element, error) {
	msg := make([]byte, 0, len(t.buf)+len(tag))
	msg = append(msg, t.buf...)
	msg = append(msg, tag...)
	return HashToScalar(msg)
}
