package domain

import (
	"errors"
	"fmt"
)

type ErrCode string

const (
	CodeReportUnavailable ErrCode = "report_unavailable"
	CodeNotFound          ErrCode = "not_found"
	CodeUnauthorized      ErrCode = "unauthorized"
	CodeInternal          ErrCode = "internal_error"
)

// Stable client-facing messages. Driver text never reaches a response.
const (
	MsgReportUnavailable = "report query failed"
	MsgUnknownReport     = "unknown report"
	MsgInternal          = "internal error"
)

var ErrUnknownReport = errors.New("unknown report")

// AppError is an error whose code and message are safe to show to clients.
type AppError struct {
	Code    ErrCode
	Message string
}

func (e *AppError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

func ErrUnauthorized(msg string) error { return &AppError{Code: CodeUnauthorized, Message: msg} }

// QueryError is the internal, detailed side of a failed report: which report,
// which step (query, scan, rows) and the underlying store error.
type QueryError struct {
	Report ReportID
	Op     string
	Err    error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("report %s: %s: %v", e.Report, e.Op, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// Public maps any error to the code and message exposed to clients.
func Public(err error) (ErrCode, string) {
	if err == nil {
		return CodeInternal, MsgInternal
	}

	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code, ae.Message
	}
	if errors.Is(err, ErrUnknownReport) {
		return CodeNotFound, MsgUnknownReport
	}
	var qe *QueryError
	if errors.As(err, &qe) {
		return CodeReportUnavailable, MsgReportUnavailable
	}
	return CodeInternal, MsgInternal
}
