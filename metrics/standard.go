package metrics

// Pre-defined metrics for token issuance. All metrics live in DefaultRegistry
// so they are globally accessible without passing a registry around.

var (
	// ---- Key aggregation ----

	// KeysAggregated counts aggregate public keys computed.
	KeysAggregated = DefaultRegistry.Counter("dntat.aggregate.keys")
	// KeyAggregateTime records key aggregation duration in milliseconds.
	KeyAggregateTime = DefaultRegistry.Histogram("dntat.aggregate.keys_ms")

	// ---- Signing ----

	// SignSessions counts Sign calls that completed successfully.
	SignSessions = DefaultRegistry.Counter("dntat.sign.sessions")
	// SignFailures counts Sign calls that returned an error.
	SignFailures = DefaultRegistry.Counter("dntat.sign.failures")
	// PartialSignatures counts partial signatures produced by signer tasks.
	PartialSignatures = DefaultRegistry.Counter("dntat.sign.partials")
	// SignWorkersBusy tracks signer tasks currently running.
	SignWorkersBusy = DefaultRegistry.Gauge("dntat.sign.workers_busy")
	// SignTime records Sign duration in milliseconds.
	SignTime = DefaultRegistry.Histogram("dntat.sign.latency_ms")

	// ---- Token aggregation ----

	// TokensAggregated counts tokens assembled from partial signatures.
	TokensAggregated = DefaultRegistry.Counter("dntat.aggregate.tokens")
	// TokenAggregateTime records token aggregation duration in milliseconds.
	TokenAggregateTime = DefaultRegistry.Histogram("dntat.aggregate.tokens_ms")

	// ---- Verification ----

	// VerifyAccepted counts tokens that verified.
	VerifyAccepted = DefaultRegistry.Counter("dntat.verify.accepted")
	// VerifyRejected counts tokens that failed verification.
	VerifyRejected = DefaultRegistry.Counter("dntat.verify.rejected")
	// VerifyTime records verification duration in milliseconds.
	VerifyTime = DefaultRegistry.Histogram("dntat.verify.latency_ms")
)
