package dntat

import (
	"encoding/json"
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/eth2030/dntat/crypto"
)

// JSON forms use 0x-prefixed hex with compressed point encodings. Decoding
// rejects points outside the prime-order subgroups.

type tokenJSON struct {
	Omega hexutil.Bytes `json:"omega"`
	HBar  hexutil.Bytes `json:"hbar"`
	Sigma hexutil.Bytes `json:"sigma"`
}

// MarshalJSON implements json.Marshaler.
func (t *Token) MarshalJSON() ([]byte, error) {
	hbar, sigma := t.HBar.Bytes(), t.Sigma.Bytes()
	return json.Marshal(tokenJSON{
		Omega: crypto.ScalarBytes(&t.Omega),
		HBar:  hbar[:],
		Sigma: sigma[:],
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Token) UnmarshalJSON(data []byte) error {
	var enc tokenJSON
	if err := json.Unmarshal(data, &enc); err != nil {
		return fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	omega, err := crypto.ScalarFromBytes(enc.Omega)
	if err != nil {
		return fmt.Errorf("%w: omega: %v", ErrEncoding, err)
	}
	hbar, err := decodeG1(enc.HBar)
	if err != nil {
		return fmt.Errorf("%w: hbar: %v", ErrEncoding, err)
	}
	sigma, err := decodeG1(enc.Sigma)
	if err != nil {
		return fmt.Errorf("%w: sigma: %v", ErrEncoding, err)
	}
	t.Omega, t.HBar, t.Sigma = omega, hbar, sigma
	return nil
}

type aggregateKeyJSON struct {
	Keys    []hexutil.Bytes `json:"keys"`
	Signers hexutil.Uint64  `json:"signers"`
	SetID   hexutil.Bytes   `json:"setId"`
}

// MarshalJSON implements json.Marshaler.
func (apk *AggregatePublicKey) MarshalJSON() ([]byte, error) {
	enc := aggregateKeyJSON{
		Keys:    make([]hexutil.Bytes, Width),
		Signers: hexutil.Uint64(apk.Signers),
		SetID:   apk.SetID[:],
	}
	for j := range apk.Keys {
		b := apk.Keys[j].Bytes()
		enc.Keys[j] = b[:]
	}
	return json.Marshal(enc)
}

// UnmarshalJSON implements json.Unmarshaler.
func (apk *AggregatePublicKey) UnmarshalJSON(data []byte) error {
	var enc aggregateKeyJSON
	if err := json.Unmarshal(data, &enc); err != nil {
		return fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	if len(enc.Keys) != Width {
		return fmt.Errorf("%w: %d key components, want %d", ErrEncoding, len(enc.Keys), Width)
	}
	if len(enc.SetID) != len(apk.SetID) {
		return fmt.Errorf("%w: set id length %d", ErrEncoding, len(enc.SetID))
	}
	if enc.Signers == 0 {
		return fmt.Errorf("%w: zero signers", ErrEncoding)
	}
	var out AggregatePublicKey
	for j, b := range enc.Keys {
		k, err := decodeG2(b)
		if err != nil {
			return fmt.Errorf("%w: key %d: %v", ErrEncoding, j, err)
		}
		out.Keys[j] = k
	}
	out.Signers = int(enc.Signers)
	copy(out.SetID[:], enc.SetID)
	*apk = out
	return nil
}

// decodeG1 accepts only the compressed form used by the JSON encoding.
func decodeG1(b []byte) (bls12381.G1Affine, error) {
	if len(b) != crypto.G1CompressedSize {
		return bls12381.G1Affine{}, crypto.ErrPointEncoding
	}
	return crypto.G1FromBytes(b)
}

func decodeG2(b []byte) (bls12381.G2Affine, error) {
	if len(b) != crypto.G2CompressedSize {
		return bls12381.G2Affine{}, crypto.ErrPointEncoding
	}
	return crypto.G2FromBytes(b)
}
