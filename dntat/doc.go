// Package dntat implements a threshold multi-signer anonymous token scheme
// over BLS12-381.
//
// A fixed, ordered list of signers each hold a four-component key. A user
// with secret sku blinds a request, every signer answers it with a partial
// signature, and the user aggregates the partials into a token
// (omega, hbar, sigma). The token verifies against the aggregate key of the
// signer list with one pairing equation, and two tokens for the same user
// cannot be linked to each other by the signers.
//
// Typical flow:
//
//	pk, sk, _ := dntat.GenerateSignerKeyPair()      // per signer
//	apk, _ := dntat.AggregateKeys(pks)              // once per signer set
//	pku, sku, _ := dntat.GenerateUserKeyPair()
//	res, _ := dntat.Sign(sks, pks, &sku, &pku)
//	tok, _ := res.Aggregate(pks)
//	ok := dntat.Verify(tok, apk, &sku)
//
// The order of pks matters. Key aggregation and token aggregation derive the
// same per-signer coefficients from the ordered list, so both must see the
// same list in the same order.
package dntat
