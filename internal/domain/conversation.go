package domain

import "time"

// Outcome classifies how a relay invocation ended.
type Outcome string

const (
	OutcomeReplied       Outcome = "replied"
	OutcomeInvalid       Outcome = "invalid"
	OutcomeUnconfigured  Outcome = "unconfigured"
	OutcomeProviderError Outcome = "provider_error"
)

// Exchange is the audit record of a single relay invocation. It carries
// counts and timings only, never turn content.
type Exchange struct {
	PK            string
	SK            string
	ID            string
	CorrelationID string
	Outcome       Outcome
	TurnCount     int
	ReplyLength   int
	Latency       time.Duration
	CreatedAt     time.Time
	TTL           int64
}
