package main

import (
	"sort"

	"github.com/eth2030/dntat/crypto"
)

// pairingBackends lists the pairing backends compiled into this binary.
// The blst backend registers itself when built with -tags blst.
var pairingBackends = map[string]crypto.PairingBackend{
	"gnark": crypto.GnarkPairingBackend{},
}

func backendNames() []string {
	names := make([]string, 0, len(pairingBackends))
	for name := range pairingBackends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
