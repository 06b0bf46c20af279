package dntat

import (
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// Issue runs a full signing session and aggregates the result into a token
// for apk. It refuses to sign when apk was not built from exactly pks in
// this order, since such a token could never verify. With WithKeyValidation
// every signer key is also checked with SignerPublicKey.Validate.
func (s *Signer) Issue(sks []*SignerSecretKey, pks []*SignerPublicKey, apk *AggregatePublicKey, sku *fr.Element, pku *bls12381.G1Affine) (*Token, *SignResult, error) {
	if apk == nil {
		return nil, nil, ErrNilKey
	}
	if !apk.Covers(pks) {
		return nil, nil, fmt.Errorf("%w: key built for %d signers, got %d", ErrParticipantMismatch, apk.Signers, len(pks))
	}
	if s.validateKeys {
		for i, pk := range pks {
			if err := pk.Validate(); err != nil {
				return nil, nil, fmt.Errorf("signer %d: %w", i, err)
			}
		}
	}
	res, err := s.Sign(sks, pks, sku, pku)
	if err != nil {
		return nil, nil, err
	}
	tok, err := res.Aggregate(pks)
	if err != nil {
		return nil, nil, err
	}
	return tok, res, nil
}

// Issue runs Signer.Issue with a default Signer.
func Issue(sks []*SignerSecretKey, pks []*SignerPublicKey, apk *AggregatePublicKey, sku *fr.Element, pku *bls12381.G1Affine) (*Token, error) {
	tok, _, err := NewSigner().Issue(sks, pks, apk, sku, pku)
	return tok, err
}
