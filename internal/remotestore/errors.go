package remotestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
	"github.com/dmitrijs2005/modcatalog/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
)

// Problem classifies a remote failure.
type Problem int

const (
	// ProblemUnavailable covers network, timeout and server-side failures.
	ProblemUnavailable Problem = iota
	ProblemMissingTable
	ProblemMissingColumns
	ProblemAccessPolicy
	ProblemMissingBucket
	ProblemBucketPolicy
	ProblemNotConfigured
	ProblemSchemaBootstrap
)

func (p Problem) String() string {
	switch p {
	case ProblemUnavailable:
		return "unavailable"
	case ProblemMissingTable:
		return "missing table"
	case ProblemMissingColumns:
		return "missing columns"
	case ProblemAccessPolicy:
		return "table access denied"
	case ProblemMissingBucket:
		return "missing bucket"
	case ProblemBucketPolicy:
		return "bucket access denied"
	case ProblemNotConfigured:
		return "not configured"
	case ProblemSchemaBootstrap:
		return "schema bootstrap failed"
	default:
		return fmt.Sprintf("problem(%d)", int(p))
	}
}

// Misconfigured reports whether the problem needs operator action rather than
// a retry.
func (p Problem) Misconfigured() bool {
	return p != ProblemUnavailable
}

// Error is returned by every remote operation.
//
// It matches common.ErrRemoteUnavailable or common.ErrRemoteMisconfigured with
// errors.Is, as well as the underlying driver error.
type Error struct {
	Op      string
	Problem Problem
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("remote %s: %s: %v", e.Op, e.Problem, e.Err)
}

func (e *Error) Unwrap() []error {
	sentinel := common.ErrRemoteUnavailable
	if e.Problem.Misconfigured() {
		sentinel = common.ErrRemoteMisconfigured
	}
	return []error{sentinel, e.Err}
}

// Hint returns an actionable message for misconfigurations and "" otherwise.
func (e *Error) Hint() string {
	switch e.Problem {
	case ProblemMissingTable:
		return `the "modules" table does not exist; run the schema bootstrap or create it manually`
	case ProblemMissingColumns:
		return "the modules table is missing columns; it needs id, model, brand, price, description, image_url, created_at, updated_at"
	case ProblemAccessPolicy:
		return "the database role may not read or write the modules table; grant SELECT, INSERT, UPDATE, DELETE"
	case ProblemMissingBucket:
		return "the image bucket does not exist; create it and make it publicly readable"
	case ProblemBucketPolicy:
		return "the bucket rejected the upload; add a policy that allows PutObject and public GetObject"
	case ProblemNotConfigured:
		return "blob storage is not configured; set the S3 bucket and endpoint"
	case ProblemSchemaBootstrap:
		return "could not create the remote schema; check the role's CREATE privilege"
	default:
		return ""
	}
}

// Hint extracts the hint from err when it is a remote *Error.
func Hint(err error) string {
	var re *Error
	if errors.As(err, &re) {
		return re.Hint()
	}
	return ""
}

// Postgres SQLSTATE codes that point at a broken setup rather than an outage.
const (
	pgUndefinedTable        = "42P01"
	pgUndefinedColumn       = "42703"
	pgInsufficientPrivilege = "42501"
)

func classifyPG(op string, err error) error {
	if err == nil {
		return nil
	}
	e := &Error{Op: op, Problem: ProblemUnavailable, Err: err}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUndefinedTable:
			e.Problem = ProblemMissingTable
		case pgUndefinedColumn:
			e.Problem = ProblemMissingColumns
		case pgInsufficientPrivilege:
			e.Problem = ProblemAccessPolicy
		}
	}
	return e
}

func classifyS3(op string, err error) error {
	if err == nil {
		return nil
	}
	e := &Error{Op: op, Problem: ProblemUnavailable, Err: err}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return e
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchBucket":
			e.Problem = ProblemMissingBucket
		case "AccessDenied", "Forbidden", "AllAccessDisabled":
			e.Problem = ProblemBucketPolicy
		}
	}
	return e
}
