package remote

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/smithy-go"

	"github.com/fastbreaklabs/rosterstore/store"
)

func apiError(code string) error {
	return &smithy.GenericAPIError{Code: code, Message: "simulated"}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		code string
		want failureClass
	}{
		{"AccessDeniedException", classAuth},
		{"UnrecognizedClientException", classAuth},
		{"ExpiredTokenException", classAuth},
		{"InvalidSignatureException", classAuth},
		{"MissingAuthenticationToken", classAuth},

		{"ConditionalCheckFailedException", classConstraint},
		{"ValidationException", classConstraint},
		{"DuplicateItemException", classConstraint},

		{"InternalServerError", classServer},
		{"InternalFailure", classServer},
		{"SerializationException", classServer},
		{"ServiceFailure", classServer},

		{"ProvisionedThroughputExceededException", classTransient},
		{"ThrottlingException", classTransient},
		{"RequestLimitExceeded", classTransient},
		{"LimitExceededException", classTransient},
		{"TransactionConflictException", classTransient},
		{"TransactionCanceledException", classTransient},
		{"TransactionInProgressException", classTransient},
		{"RequestTimeout", classTransient},
		{"ServiceUnavailable", classTransient},
		{"ResourceNotFoundException", classTransient},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := classify(apiError(tt.code)); got != tt.want {
				t.Errorf("expected class %d, got %d", tt.want, got)
			}
		})
	}
}

func TestClassify_UnknownCodeIsTransient(t *testing.T) {
	if got := classify(apiError("SomeBrandNewException")); got != classTransient {
		t.Errorf("expected transient for unknown code, got %d", got)
	}
}

func TestClassify_NonAPIErrorIsTransient(t *testing.T) {
	if got := classify(errors.New("connection reset")); got != classTransient {
		t.Errorf("expected transient, got %d", got)
	}
}

func TestClassify_DeadlineIsTransient(t *testing.T) {
	err := fmt.Errorf("request: %w", context.DeadlineExceeded)
	if got := classify(err); got != classTransient {
		t.Errorf("expected transient for deadline, got %d", got)
	}
}

func TestClassify_WrappedAPIError(t *testing.T) {
	err := fmt.Errorf("operation failed: %w", apiError("ExpiredTokenException"))
	if got := classify(err); got != classAuth {
		t.Errorf("expected auth through wrapping, got %d", got)
	}
}

func TestClassify_MappedStoreErrorPassesThrough(t *testing.T) {
	err := &store.Error{Kind: store.ErrServer, Err: errors.New("bad doc")}
	if got := classify(err); got != classConstraint {
		t.Errorf("expected mapped error to classify as pass-through, got %d", got)
	}
}
