package ports

import "context"

// VerifyResult is the enum-like outcome of an external verification or
// submission capability.
type VerifyResult string

const (
	VerifySuccess VerifyResult = "SUCCESS"
	VerifyFailed  VerifyResult = "FAILED"
	VerifyBlocked VerifyResult = "BLOCKED"
)

// VerifyRequest carries the collected values to the external capability.
type VerifyRequest struct {
	Bot      string
	Locale   string
	Slots    map[string]string
	Outcomes map[string]string
}

// Verifier is the injected identity-verification / submission capability.
// The fulfillment controller only maps its result to a directive; retries
// and timeouts belong to the implementation behind this interface.
type Verifier interface {
	Verify(ctx context.Context, req VerifyRequest) (VerifyResult, error)
}

// VerifierFunc adapts a function to the Verifier interface.
type VerifierFunc func(ctx context.Context, req VerifyRequest) (VerifyResult, error)

func (f VerifierFunc) Verify(ctx context.Context, req VerifyRequest) (VerifyResult, error) {
	return f(ctx, req)
}
