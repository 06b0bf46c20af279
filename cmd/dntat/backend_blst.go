//go:build blst

package main

import "github.com/eth2030/dntat/crypto"

func init() {
	pairingBackends["blst"] = crypto.BlstPairingBackend{}
}
