package remote

import (
	"context"
	"errors"

	"github.com/aws/smithy-go"

	"github.com/fastbreaklabs/rosterstore/store"
)

// failureClass buckets a failed DynamoDB call by how the caller should
// react: give up immediately, map to a domain error, or retry.
type failureClass int

const (
	// classAuth covers credential and signing failures. Never retried:
	// repeating a rejected signature only burns the retry budget.
	classAuth failureClass = iota

	// classConstraint covers conditional and validation rejections. The
	// request reached the table and was refused on its merits, so the
	// caller maps it to a domain error in context.
	classConstraint

	// classServer covers service-side faults that survived the SDK's own
	// retries. Not retried again here.
	classServer

	// classTransient covers throttling, timeouts, transaction contention,
	// and anything unrecognized. Retried with backoff.
	classTransient
)

// classify buckets err by its service error code. Auth is checked first:
// an expired token can surface wrapped in other failures and must never
// be retried. Unknown codes fall through to transient as the last resort,
// never to auth.
func classify(err error) failureClass {
	// An error already mapped to the store taxonomy is final: pass it
	// through untouched, never retry it.
	var mapped *store.Error
	if errors.As(err, &mapped) {
		return classConstraint
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return classTransient
	}

	var api smithy.APIError
	if !errors.As(err, &api) {
		return classTransient
	}

	switch api.ErrorCode() {
	case "AccessDeniedException",
		"UnrecognizedClientException",
		"ExpiredTokenException",
		"InvalidSignatureException",
		"MissingAuthenticationToken":
		return classAuth

	case "ConditionalCheckFailedException",
		"ValidationException",
		"DuplicateItemException":
		return classConstraint

	case "InternalServerError",
		"InternalFailure",
		"SerializationException",
		"ServiceFailure":
		return classServer

	case "ProvisionedThroughputExceededException",
		"ThrottlingException",
		"RequestLimitExceeded",
		"LimitExceededException",
		"TransactionConflictException",
		"TransactionCanceledException",
		"TransactionInProgressException",
		"RequestTimeout",
		"ServiceUnavailable",
		// A missing table usually means provisioning is still in flight,
		// so it gets the transient treatment rather than a hard failure.
		"ResourceNotFoundException":
		return classTransient
	}

	return classTransient
}
