package dntat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"golang.org/x/sync/errgroup"

	"github.com/eth2030/dntat/crypto"
	"github.com/eth2030/dntat/log"
	"github.com/eth2030/dntat/metrics"
)

// SignResult is the output of one signing session: one partial signature per
// signer in input order, plus the session values the token carries.
type SignResult struct {
	Partials []bls12381.G1Affine
	HBar     bls12381.G1Affine
	Omega    fr.Element

	// Request and Proof are set only when request proofs are enabled.
	Request *Request
	Proof   *RequestProof
}

// Option configures a Signer.
type Option func(*Signer)

// WithWorkers caps the number of signer tasks running at once. n <= 0 runs
// every signer in its own goroutine.
func WithWorkers(n int) Option {
	return func(s *Signer) { s.workers = n }
}

// WithRequestProof makes Sign attach a proof that the blinded request is
// well formed and bound to pku.
func WithRequestProof(on bool) Option {
	return func(s *Signer) { s.proof = on }
}

// WithKeyValidation makes Issue run SignerPublicKey.Validate on every
// signer key before signing.
func WithKeyValidation(on bool) Option {
	return func(s *Signer) { s.validateKeys = on }
}

// WithLogger replaces the signer's logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Signer) {
		if l != nil {
			s.log = l
		}
	}
}

// Signer runs signing sessions. A Signer holds no per-session state and may
// be used from multiple goroutines.
type Signer struct {
	workers      int
	proof        bool
	validateKeys bool
	log          *log.Logger

	// fault, when set, runs at the start of every signer task.
	fault func(i int) error
}

// NewSigner returns a Signer with the given options applied.
func NewSigner(opts ...Option) *Signer {
	s := &Signer{log: log.Default().Module("dntat")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sign runs a session with a default Signer.
func Sign(sks []*SignerSecretKey, pks []*SignerPublicKey, sku *fr.Element, pku *bls12381.G1Affine) (*SignResult, error) {
	return NewSigner().Sign(sks, pks, sku, pku)
}

// session is the user-side state of one request. r[0..4] hold r1..r5.
type session struct {
	h     bls12381.G1Affine
	hbar  bls12381.G1Affine
	r     [5]fr.Element
	theta fr.Element
	omega fr.Element
	sku   fr.Element
	t     [Width]bls12381.G1Affine

	// corr holds the exponents applied to pk_i.G1[0..3] to strip the r2..r5
	// blinding from the request.
	corr [Width]fr.Element
}

// Sign blinds the user's request and has every signer produce a partial
// signature on it concurrently. Either all partials are returned or none.
func (s *Signer) Sign(sks []*SignerSecretKey, pks []*SignerPublicKey, sku *fr.Element, pku *bls12381.G1Affine) (*SignResult, error) {
	if err := checkSignInputs(sks, pks, sku, pku); err != nil {
		return nil, err
	}
	start := time.Now()

	sess, err := newSession(sku)
	if err != nil {
		metrics.SignFailures.Inc()
		return nil, err
	}
	partials, err := s.partials(sess, sks, pks)
	if err != nil {
		metrics.SignFailures.Inc()
		return nil, err
	}

	res := &SignResult{Partials: partials, HBar: sess.hbar, Omega: sess.omega}
	if s.proof {
		req := sess.request()
		proof, err := proveRequest(sess, pku)
		if err != nil {
			metrics.SignFailures.Inc()
			return nil, err
		}
		res.Request, res.Proof = req, proof
	}

	elapsed := time.Since(start)
	metrics.SignSessions.Inc()
	metrics.SignTime.Observe(metrics.Millis(elapsed))
	if s.log.Enabled(slog.LevelDebug) {
		s.log.Debug("sign session complete", "signers", len(sks), "workers", s.workers, "proof", s.proof, "elapsed", elapsed)
	}
	return res, nil
}

func checkSignInputs(sks []*SignerSecretKey, pks []*SignerPublicKey, sku *fr.Element, pku *bls12381.G1Affine) error {
	if len(sks) == 0 {
		return ErrNoSigners
	}
	if len(sks) != len(pks) {
		return fmt.Errorf("%w: %d secret keys, %d public keys", ErrKeyCountMismatch, len(sks), len(pks))
	}
	if sku == nil || pku == nil {
		return ErrNilKey
	}
	for i := range sks {
		if sks[i] == nil || pks[i] == nil {
			return fmt.Errorf("%w: signer %d", ErrNilKey, i)
		}
	}
	if !crypto.ValidG1(pku) {
		return fmt.Errorf("%w: user public key", ErrInvalidPoint)
	}
	return nil
}

// newSession samples the blinding randomness and builds the request
//
//	h    = g1^random1
//	hbar = h^r1
//	T1   = hbar * g1^r2
//	T2   = T1^theta * g1^r3
//	T3   = T1^sku * g1^r4
//	T4   = T1^omega * g1^r5
//
// with theta = H(hbar || "3").
func newSession(sku *fr.Element) (*session, error) {
	rs, err := crypto.RandomScalars(7)
	if err != nil {
		return nil, err
	}
	sess := &session{sku: *sku, omega: rs[6]}
	copy(sess.r[:], rs[1:6])

	g1 := crypto.G1Generator()
	sess.h = crypto.MulG1(&g1, &rs[0])
	sess.hbar = crypto.MulG1(&sess.h, &sess.r[0])
	if sess.theta, err = challengeTheta(&sess.hbar); err != nil {
		return nil, err
	}

	blind := crypto.MulG1(&g1, &sess.r[1])
	sess.t[0] = crypto.AddG1(&sess.hbar, &blind)
	exps := [Width - 1]fr.Element{sess.theta, sess.sku, sess.omega}
	for j := 1; j < Width; j++ {
		if sess.t[j], err = crypto.MultiExpG1(
			[]bls12381.G1Affine{sess.t[0], g1},
			[]fr.Element{exps[j-1], sess.r[j+1]}, 1); err != nil {
			return nil, err
		}
	}

	// T1 = hbar * g1^r2 and T_j = hbar^e * g1^(e*r2 + r_j) for e in
	// (theta, sku, omega), so the slots are corrected by -r2 and -(e*r2 + r_j).
	sess.corr[0].Neg(&sess.r[1])
	for j := 1; j < Width; j++ {
		var c fr.Element
		c.Mul(&exps[j-1], &sess.r[1]).Add(&c, &sess.r[j+1]).Neg(&c)
		sess.corr[j] = c
	}
	return sess, nil
}

func (sess *session) request() *Request {
	return &Request{H: sess.h, T: sess.t}
}

// challengeTheta derives theta = H(hbar || "3").
func challengeTheta(hbar *bls12381.G1Affine) (fr.Element, error) {
	return crypto.NewTranscript(crypto.G1Size + len(tagTheta)).AppendG1(hbar).Challenge(tagTheta)
}

// partials fans one task per signer out over the worker limit and joins
// them. Each task writes only its own slot; the first failure is returned
// after every started task has finished.
func (s *Signer) partials(sess *session, sks []*SignerSecretKey, pks []*SignerPublicKey) ([]bls12381.G1Affine, error) {
	out := make([]bls12381.G1Affine, len(sks))
	g, ctx := errgroup.WithContext(context.Background())
	if s.workers > 0 {
		g.SetLimit(s.workers)
	}
	for i := range sks {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: panic: %v", ErrSignerFailed, r)
				}
			}()
			if ctx.Err() != nil {
				return ctx.Err()
			}
			metrics.SignWorkersBusy.Inc()
			defer metrics.SignWorkersBusy.Dec()

			p, err := s.signOne(i, sess, sks[i], pks[i])
			if err != nil {
				s.log.Warn("signer task failed", "signer", i, "err", err)
				return fmt.Errorf("%w: %v", ErrSignerFailed, err)
			}
			out[i] = p
			metrics.PartialSignatures.Inc()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Signer) signOne(i int, sess *session, sk *SignerSecretKey, pk *SignerPublicKey) (bls12381.G1Affine, error) {
	if s.fault != nil {
		if err := s.fault(i); err != nil {
			return bls12381.G1Affine{}, err
		}
	}
	return partialSign(sess, sk, pk)
}

// partialSign computes
//
//	T1^x1 * T2^x2 * T3^x3 * T4^x4 * prod_j pk.G1[j]^corr[j]
//
// as one multi-exponentiation. For a consistent key this equals
// hbar^(x1 + theta*x2 + sku*x3 + omega*x4).
func partialSign(sess *session, sk *SignerSecretKey, pk *SignerPublicKey) (bls12381.G1Affine, error) {
	points := make([]bls12381.G1Affine, 0, 2*Width)
	points = append(points, sess.t[:]...)
	points = append(points, pk.G1[:]...)
	scalars := make([]fr.Element, 0, 2*Width)
	scalars = append(scalars, sk.X[:]...)
	scalars = append(scalars, sess.corr[:]...)
	return crypto.MultiExpG1(points, scalars, 1)
}
