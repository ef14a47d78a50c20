package engine

import "errors"

// Error kinds surfaced by FetchAccount. Background reconciliation and
// subscription failures are never surfaced; they are logged and the
// affected record stays pending for a later pass.
var (
	// ErrRetryExceeded means trust-line validation never succeeded within
	// the retry ceiling.
	ErrRetryExceeded = errors.New("too many retries")

	// ErrAccountFetch means the ledger query failed for a reason other
	// than the account not existing.
	ErrAccountFetch = errors.New("something went wrong while fetching account")

	// ErrActivationNeedsManualFlow is the terminal zero-balance activation
	// condition. Callers must redirect to an out-of-band verification flow
	// instead of retrying or degrading.
	ErrActivationNeedsManualFlow = errors.New("tfchain address has 0 balance, account needs manual verification")

	// ErrActivationFailed is any other bootstrap/migration failure.
	ErrActivationFailed = errors.New("something went wrong while generating account")

	// ErrSyncInProgress means a synchronization for the same account is
	// already running; the retry loop never runs concurrently with itself.
	ErrSyncInProgress = errors.New("account synchronization already in progress")
)
