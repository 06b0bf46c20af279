package dntat

import "errors"

// Input-shape and issuance errors. Verification never returns an error; it
// reports false for malformed and invalid tokens alike.
var (
	ErrNoSigners            = errors.New("dntat: at least one signer is required")
	ErrKeyCountMismatch     = errors.New("dntat: secret and public key lists differ in length")
	ErrPartialCountMismatch = errors.New("dntat: partial signature and public key lists differ in length")
	ErrNilKey               = errors.New("dntat: nil key")
	ErrInvalidPublicKey     = errors.New("dntat: malformed signer public key")
	ErrInvalidPoint         = errors.New("dntat: point is not a valid subgroup element")
	ErrParticipantMismatch  = errors.New("dntat: aggregate key does not cover the signer list in this order")
	ErrSignerFailed         = errors.New("dntat: signer task failed")
	ErrEncoding             = errors.New("dntat: malformed encoding")
)
