package adapters

import (
	"errors"
	"fmt"
)

// FailureReason classifies a QueryFailure.
type FailureReason int

// Reasons a query can fail.
const (
	StoreUnreachable FailureReason = iota + 1
	MalformedCriteria
)

func (r FailureReason) String() string {
	switch r {
	case StoreUnreachable:
		return "store unreachable"
	case MalformedCriteria:
		return "malformed criteria"
	default:
		return fmt.Sprintf("FailureReason(%d)", int(r))
	}
}

// QueryFailure is returned when a query could not be evaluated. It is always
// distinguishable from an empty ResultSet.
type QueryFailure struct {
	Reason FailureReason
	Err    error
}

func (e *QueryFailure) Error() string {
	if e.Err == nil {
		return "query failed: " + e.Reason.String()
	}
	return fmt.Sprintf("query failed: %s: %v", e.Reason, e.Err)
}

func (e *QueryFailure) Unwrap() error { return e.Err }

// Unreachable wraps err as a StoreUnreachable failure, leaving existing
// QueryFailures untouched.
func Unreachable(err error) error {
	if err == nil {
		return nil
	}
	var qf *QueryFailure
	if errors.As(err, &qf) {
		return err
	}
	return &QueryFailure{Reason: StoreUnreachable, Err: err}
}
