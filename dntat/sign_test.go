package dntat

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/eth2030/dntat/crypto"
	"github.com/eth2030/dntat/log"
	"github.com/eth2030/dntat/metrics"
)

// ---------------------------------------------------------------------------
// Input shape
// ---------------------------------------------------------------------------

func TestSign_InputErrors(t *testing.T) {
	f := newFixture(t, 2)
	var badPku bls12381.G1Affine

	tests := []struct {
		name string
		sks  []*SignerSecretKey
		pks  []*SignerPublicKey
		sku  *fr.Element
		pku  *bls12381.G1Affine
		want error
	}{
		{"empty", nil, nil, &f.sku, &f.pku, ErrNoSigners},
		{"length mismatch", f.sks, f.pks[:1], &f.sku, &f.pku, ErrKeyCountMismatch},
		{"nil secret", []*SignerSecretKey{f.sks[0], nil}, f.pks, &f.sku, &f.pku, ErrNilKey},
		{"nil public", f.sks, []*SignerPublicKey{nil, f.pks[1]}, &f.sku, &f.pku, ErrNilKey},
		{"nil sku", f.sks, f.pks, nil, &f.pku, ErrNilKey},
		{"nil pku", f.sks, f.pks, &f.sku, nil, ErrNilKey},
		{"identity pku", f.sks, f.pks, &f.sku, &badPku, ErrInvalidPoint},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Sign(tt.sks, tt.pks, tt.sku, tt.pku)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if res != nil {
				t.Fatal("result returned alongside error")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Partial signatures
// ---------------------------------------------------------------------------

func TestPartialSign_Unblinds(t *testing.T) {
	f := newFixture(t, 3)
	sess, err := newSession(&f.sku)
	if err != nil {
		t.Fatalf("newSession: %v", err)
	}
	parts, err := NewSigner().partials(sess, f.sks, f.pks)
	if err != nil {
		t.Fatalf("partials: %v", err)
	}
	for i, sk := range f.sks {
		// e = x1 + theta*x2 + sku*x3 + omega*x4
		var e, tmp fr.Element
		e.Set(&sk.X[0])
		e.Add(&e, tmp.Mul(&sess.theta, &sk.X[1]))
		e.Add(&e, tmp.Mul(&sess.sku, &sk.X[2]))
		e.Add(&e, tmp.Mul(&sess.omega, &sk.X[3]))
		want := crypto.MulG1(&sess.hbar, &e)
		if !parts[i].Equal(&want) {
			t.Fatalf("partial %d != hbar^(x.m)", i)
		}
		if !VerifyPartial(&parts[i], f.pks[i], &sess.hbar, &sess.omega, &f.sku) {
			t.Fatalf("VerifyPartial rejected partial %d", i)
		}
	}
}

func TestSign_WorkerCountNeutral(t *testing.T) {
	f := newFixture(t, 5)
	sess, err := newSession(&f.sku)
	if err != nil {
		t.Fatalf("newSession: %v", err)
	}
	base, err := NewSigner(WithWorkers(1)).partials(sess, f.sks, f.pks)
	if err != nil {
		t.Fatalf("partials(workers=1): %v", err)
	}
	for _, w := range []int{0, 2, 5, 16} {
		got, err := NewSigner(WithWorkers(w)).partials(sess, f.sks, f.pks)
		if err != nil {
			t.Fatalf("partials(workers=%d): %v", w, err)
		}
		for i := range base {
			if !got[i].Equal(&base[i]) {
				t.Fatalf("workers=%d: partial %d differs from sequential run", w, i)
			}
		}
	}
}

func TestSign_Unlinkable(t *testing.T) {
	f := newFixture(t, 2)
	s := NewSigner()
	tok1, _ := f.issue(t, s)
	tok2, _ := f.issue(t, s)
	if tok1.HBar.Equal(&tok2.HBar) {
		t.Fatal("two sessions share hbar")
	}
	if tok1.Omega.Equal(&tok2.Omega) {
		t.Fatal("two sessions share omega")
	}
	if tok1.Sigma.Equal(&tok2.Sigma) {
		t.Fatal("two sessions share sigma")
	}
	if !Verify(tok1, f.apk, &f.sku) || !Verify(tok2, f.apk, &f.sku) {
		t.Fatal("fresh tokens do not verify")
	}
}

// ---------------------------------------------------------------------------
// Failure propagation
// ---------------------------------------------------------------------------

func TestSign_SignerErrorFailsSession(t *testing.T) {
	f := newFixture(t, 4)
	before := metrics.SignFailures.Value()

	var buf bytes.Buffer
	logger := log.NewWithHandler(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := NewSigner(WithLogger(logger))
	s.fault = func(i int) error {
		if i == 2 {
			return errors.New("hsm unavailable")
		}
		return nil
	}

	res, err := s.Sign(f.sks, f.pks, &f.sku, &f.pku)
	if !errors.Is(err, ErrSignerFailed) {
		t.Fatalf("err = %v, want ErrSignerFailed", err)
	}
	if res != nil {
		t.Fatal("partial results returned on failure")
	}
	if got := metrics.SignFailures.Value() - before; got != 1 {
		t.Fatalf("SignFailures delta = %d, want 1", got)
	}
	if !strings.Contains(buf.String(), "signer task failed") {
		t.Fatalf("failure not logged: %q", buf.String())
	}
}

func TestSign_SignerPanicFailsSession(t *testing.T) {
	f := newFixture(t, 3)
	s := NewSigner(WithWorkers(1))
	s.fault = func(i int) error {
		if i == 0 {
			panic("corrupted key material")
		}
		return nil
	}
	res, err := s.Sign(f.sks, f.pks, &f.sku, &f.pku)
	if !errors.Is(err, ErrSignerFailed) {
		t.Fatalf("err = %v, want ErrSignerFailed", err)
	}
	if res != nil {
		t.Fatal("partial results returned after panic")
	}
	if busy := metrics.SignWorkersBusy.Value(); busy != 0 {
		t.Fatalf("SignWorkersBusy = %d after join, want 0", busy)
	}
}

func TestSign_AllTasksJoined(t *testing.T) {
	f := newFixture(t, 6)
	var ran atomic.Int32
	s := NewSigner(WithWorkers(2))
	s.fault = func(int) error {
		ran.Add(1)
		return nil
	}
	res, err := s.Sign(f.sks, f.pks, &f.sku, &f.pku)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if got := ran.Load(); got != 6 {
		t.Fatalf("tasks run = %d, want 6", got)
	}
	if len(res.Partials) != 6 {
		t.Fatalf("len(Partials) = %d, want 6", len(res.Partials))
	}
	for i := range res.Partials {
		if res.Partials[i].IsInfinity() {
			t.Fatalf("partial %d left unset", i)
		}
	}
}

func TestSign_ProofOptional(t *testing.T) {
	f := newFixture(t, 2)
	_, res := f.issue(t, NewSigner())
	if res.Proof != nil || res.Request != nil {
		t.Fatal("proof attached without WithRequestProof")
	}
	_, res = f.issue(t, NewSigner(WithRequestProof(true)))
	if res.Proof == nil || res.Request == nil {
		t.Fatal("proof missing with WithRequestProof(true)")
	}
}

func TestSign_DebugLogFollowsLevel(t *testing.T) {
	f := newFixture(t, 2)
	for _, tt := range []struct {
		level slog.Level
		want  bool
	}{
		{slog.LevelInfo, false},
		{slog.LevelDebug, true},
	} {
		var buf bytes.Buffer
		logger := log.NewWithHandler(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: tt.level}))
		if _, err := NewSigner(WithLogger(logger)).Sign(f.sks, f.pks, &f.sku, &f.pku); err != nil {
			t.Fatalf("Sign: %v", err)
		}
		if got := strings.Contains(buf.String(), "sign session complete"); got != tt.want {
			t.Fatalf("level %v: session log present = %v, want %v", tt.level, got, tt.want)
		}
	}
}
