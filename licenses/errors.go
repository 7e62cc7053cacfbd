package licenses

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the aggregator and the mutation coordinator.
// Handlers branch on these with errors.Is to pick a status code; none of them
// carry store internals.
var (
	// ErrAccessDenied means the owner has no active subscription. Not
	// retryable without a billing action.
	ErrAccessDenied = errors.New("no active subscription")

	// ErrDuplicateValue means the store rejected a write on a uniqueness
	// constraint, e.g. a duplicate registration number.
	ErrDuplicateValue = errors.New("duplicate value")

	// ErrInvalidDate means an expiry date was malformed, or a renewal date
	// fell before today.
	ErrInvalidDate = errors.New("invalid expiry date")

	// ErrFetchFailed is a transient store failure during aggregation;
	// retryable.
	ErrFetchFailed = errors.New("failed to fetch licenses")

	// ErrUnauthenticated means the session is missing or expired.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrNotFound means no record matched both the id and the owner. An
	// owner-mismatched update or delete reports this rather than silently
	// succeeding.
	ErrNotFound = errors.New("no matching record")

	// ErrUnknownCategory rejects category names outside the fixed eight.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrUnknownTier rejects tier names outside the fixed five.
	ErrUnknownTier = errors.New("unknown tier")
)

// QuotaExceededError reports a create blocked by the owner's tier cap. It
// names the category and the cap so the message can be rendered inline.
type QuotaExceededError struct {
	Category Category
	Limit    int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("%s limit reached, current plan allows %d", e.Category, e.Limit)
}
