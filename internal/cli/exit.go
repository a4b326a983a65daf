package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/sensala/viewer/pkg/errors"
)

// Exit statuses of the sensala binary.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitUsage     = 2 // rejected input, discourse, surface, config or format
	ExitService   = 3 // the interpretation service failed or broke its contract
	ExitInterrupt = 130
)

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if stderrors.Is(err, context.Canceled) {
		return ExitInterrupt
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidDiscourse, errors.ErrCodeInvalidSurface,
		errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidFormat:
		return ExitUsage
	case errors.ErrCodeTransport, errors.ErrCodeContractViolation, errors.ErrCodeTimeout:
		return ExitService
	}
	return ExitFailure
}

// ReportError writes a command failure to w as one styled line. Coded errors
// show their message, cause and code; an interrupt is reported as such.
func ReportError(w io.Writer, err error) {
	if err == nil {
		return
	}
	if stderrors.Is(err, context.Canceled) {
		fmt.Fprintln(w, StyleDim.Render("interrupted"))
		return
	}
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+StyleError.Render(describeError(err)))
}

func describeError(err error) string {
	var e *errors.Error
	if !stderrors.As(err, &e) {
		return err.Error()
	}
	msg := e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return fmt.Sprintf("%s [%s]", msg, e.Code)
}
