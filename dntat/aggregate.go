package dntat

import (
	"encoding/binary"
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"golang.org/x/crypto/sha3"

	"github.com/eth2030/dntat/crypto"
	"github.com/eth2030/dntat/metrics"
)

// Hash tags appended to transcripts before hashing to the scalar field.
const (
	tagAggregate = "agg"
	tagTheta     = "3"
	tagRequest   = "1"
)

// setIDLabel separates the participant set commitment from other SHA3 uses.
const setIDLabel = "dntat/participants/v1"

// AggregatePublicKey is the verification key for tokens issued jointly by
// an ordered list of signers. Keys[j] = sum_i a_i * pk_i.G2[j].
type AggregatePublicKey struct {
	Keys    [Width]bls12381.G2Affine
	Signers int
	// SetID commits to the ordered signer list the key was built from.
	SetID [32]byte
}

// Coefficients returns the aggregation coefficients
//
//	a_i = H(pk_1.G2[0] || ... || pk_n.G2[0] || pk_i.G2[0] || "agg")
//
// in list order. They depend on the order of pks, so the same list must be
// used for key aggregation and token aggregation.
func Coefficients(pks []*SignerPublicKey) ([]fr.Element, error) {
	if len(pks) == 0 {
		return nil, ErrNoSigners
	}
	prefix := crypto.NewTranscript(len(pks) * crypto.G2Size)
	for _, pk := range pks {
		if pk == nil {
			return nil, ErrNilKey
		}
		prefix.AppendG2(&pk.G2[0])
	}
	base := prefix.Bytes()

	out := make([]fr.Element, len(pks))
	for i, pk := range pks {
		t := crypto.NewTranscript(len(base) + crypto.G2Size + len(tagAggregate))
		t.AppendBytes(base).AppendG2(&pk.G2[0])
		a, err := t.Challenge(tagAggregate)
		if err != nil {
			return nil, err
		}
		out[i] = a
	}
	return out, nil
}

// AggregateKeys combines the signers' G2 keys into one verification key.
// The result is deterministic in the ordered list. Keys are not validated
// here; callers taking keys from untrusted sources run
// SignerPublicKey.Validate first, or issue through a Signer built with
// WithKeyValidation.
func AggregateKeys(pks []*SignerPublicKey) (*AggregatePublicKey, error) {
	timer := metrics.NewTimer(metrics.KeyAggregateTime)
	defer timer.Stop()

	coeffs, err := Coefficients(pks)
	if err != nil {
		return nil, err
	}
	apk := &AggregatePublicKey{Signers: len(pks), SetID: ParticipantSetID(pks)}
	column := make([]bls12381.G2Affine, len(pks))
	for j := 0; j < Width; j++ {
		for i, pk := range pks {
			column[i] = pk.G2[j]
		}
		k, err := crypto.MultiExpG2(column, coeffs, 0)
		if err != nil {
			return nil, fmt.Errorf("dntat: aggregate key component %d: %w", j, err)
		}
		apk.Keys[j] = k
	}
	metrics.KeysAggregated.Inc()
	return apk, nil
}

// ParticipantSetID returns a SHA3-256 commitment to every component of the
// ordered signer list. Nil entries hash as empty keys.
func ParticipantSetID(pks []*SignerPublicKey) [32]byte {
	h := sha3.New256()
	h.Write([]byte(setIDLabel))
	var count [8]byte
	binary.BigEndian.PutUint64(count[:], uint64(len(pks)))
	h.Write(count[:])
	var empty SignerPublicKey
	for _, pk := range pks {
		if pk == nil {
			pk = &empty
		}
		for j := 0; j < Width; j++ {
			h.Write(crypto.G1Bytes(&pk.G1[j]))
			h.Write(crypto.G2Bytes(&pk.G2[j]))
		}
	}
	var id [32]byte
	copy(id[:], h.Sum(nil))
	return id
}

// Covers reports whether apk was aggregated from exactly pks in this order.
func (apk *AggregatePublicKey) Covers(pks []*SignerPublicKey) bool {
	if apk == nil || apk.Signers != len(pks) {
		return false
	}
	return apk.SetID == ParticipantSetID(pks)
}

// Equal reports whether two aggregate keys are identical.
func (apk *AggregatePublicKey) Equal(other *AggregatePublicKey) bool {
	if apk == nil || other == nil {
		return apk == other
	}
	if apk.Signers != other.Signers || apk.SetID != other.SetID {
		return false
	}
	for j := 0; j < Width; j++ {
		if !apk.Keys[j].Equal(&other.Keys[j]) {
			return false
		}
	}
	return true
}
