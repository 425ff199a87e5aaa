package zapper

import "errors"

// Failure taxonomy for the swap-and-pay pipeline. Every component failure is
// surfaced to the caller wrapping exactly one of these sentinels; nothing is
// swallowed or auto-retried once a transaction has been submitted.
var (
	// ErrInvalidPair signals a same-token swap request. These are routed to
	// direct payment by the caller; they are never quoted 1:1.
	ErrInvalidPair = errors.New("input and output tokens are the same")

	// ErrInvalidCredential signals a malformed secret key. Fatal; the user
	// must re-enter the key.
	ErrInvalidCredential = errors.New("invalid secret key")

	// ErrQuoteUnavailable signals a venue or network failure while quoting.
	// Safe to retry by re-invoking: no funds have moved.
	ErrQuoteUnavailable = errors.New("quote unavailable")

	// ErrBuildFailed signals the venue rejected transaction construction.
	// Fatal for this attempt; nothing was signed or submitted.
	ErrBuildFailed = errors.New("transaction build failed")

	// ErrSubmissionRejected signals the chain rejected the signed
	// transaction, e.g. insufficient balance.
	ErrSubmissionRejected = errors.New("transaction submission rejected")

	// ErrConfirmationTimeout signals the polling budget ran out before the
	// transaction reached a terminal status. The swap may still confirm
	// later: this is a reporting timeout, not proof of failure.
	ErrConfirmationTimeout = errors.New("confirmation timed out")

	// ErrSettlementRegistrationFailed signals the ledger call failed after a
	// confirmed swap. Requires manual reconciliation; retrying could
	// double-register the payment.
	ErrSettlementRegistrationFailed = errors.New("settlement registration failed")
)
