package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/spf13/cobra"

	"github.com/eth2030/dntat/dntat"
)

var errDemoFailed = errors.New("demo: unexpected verification result")

func newDemoCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Issue one token, verify it, then verify a tampered copy",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.demo()
		},
	}
	cmd.Flags().Int("signers", DefaultConfig().Signers, "number of signers")
	return cmd
}

func (a *app) demo() error {
	logger := a.log.Module("demo")
	n := a.cfg.Signers

	sks, pks, err := generateSigners(n)
	if err != nil {
		return err
	}
	apk, err := dntat.AggregateKeys(pks)
	if err != nil {
		return err
	}
	pku, sku, err := dntat.GenerateUserKeyPair()
	if err != nil {
		return err
	}
	logger.Info("signer set ready", "signers", n, "setid", fmt.Sprintf("%x", apk.SetID[:8]))

	signer := a.newSigner()
	tok, res, err := signer.Issue(sks, pks, apk, &sku, &pku)
	if err != nil {
		return err
	}
	for i := range res.Partials {
		if !dntat.VerifyPartial(&res.Partials[i], pks[i], &res.HBar, &res.Omega, &sku) {
			logger.Warn("partial signature rejected", "signer", i)
		}
	}

	out, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "token:\n%s\n", out)

	valid := dntat.Verify(tok, apk, &sku)
	fmt.Fprintf(a.stdout, "verify: %v\n", valid)

	if res.Proof != nil {
		fmt.Fprintf(a.stdout, "request proof: %v\n", dntat.VerifyRequest(res.Request, res.Proof, &pku))
	}

	tampered := *tok
	var one fr.Element
	one.SetOne()
	tampered.Omega.Add(&tampered.Omega, &one)
	rejected := !dntat.Verify(&tampered, apk, &sku)
	fmt.Fprintf(a.stdout, "tampered omega rejected: %v\n", rejected)

	if !valid || !rejected {
		return errDemoFailed
	}
	return nil
}

func (a *app) newSigner() *dntat.Signer {
	return dntat.NewSigner(
		dntat.WithWorkers(a.cfg.Workers),
		dntat.WithRequestProof(a.cfg.Proof),
		dntat.WithKeyValidation(true),
		dntat.WithLogger(a.log.Module("dntat")),
	)
}

func generateSigners(n int) ([]*dntat.SignerSecretKey, []*dntat.SignerPublicKey, error) {
	sks := make([]*dntat.SignerSecretKey, n)
	pks := make([]*dntat.SignerPublicKey, n)
	for i := 0; i < n; i++ {
		pk, sk, err := dntat.GenerateSignerKeyPair()
		if err != nil {
			return nil, nil, fmt.Errorf("signer %d: %w", i, err)
		}
		sks[i], pks[i] = sk, pk
	}
	return sks, pks, nil
}
