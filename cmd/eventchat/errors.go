package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"

	"github.com/elee1766/eventchat/src/apiclient"
	"github.com/elee1766/eventchat/src/chat"
	"github.com/elee1766/eventchat/src/config"
	"github.com/elee1766/eventchat/src/session"
	"github.com/elee1766/eventchat/src/usage"
	"github.com/samber/oops"
)

// Exit codes following standard conventions
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error
	ExitUsage       = 2 // Usage error
	ExitConfig      = 3 // Configuration error
	ExitAuth        = 4 // Authentication error
	ExitTrial       = 5 // Free trial exhausted
	ExitNetwork     = 6 // Network error
	ExitTimeout     = 7 // Timeout error
	ExitInterrupted = 8 // Interrupted by user
)

// ErrorHandler handles different types of errors and exits with appropriate codes
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleError handles an error and exits with the appropriate code
func (h *ErrorHandler) HandleError(err error) {
	if err == nil {
		return
	}

	h.logger.Debug("command failed", "error", err)
	fmt.Fprintf(os.Stderr, "Error: %s\n", describeError(err))
	os.Exit(exitCode(err))
}

// exitCode determines the appropriate exit code for an error
func exitCode(err error) int {
	var (
		validationErr config.ValidationError
		apiErr        *apiclient.APIError
		netErr        net.Error
	)

	switch {
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.As(err, &validationErr), errors.Is(err, config.ErrUnknownFormat):
		return ExitConfig
	case errors.Is(err, session.ErrIdentityRejected):
		return ExitAuth
	case errors.Is(err, usage.ErrBlocked):
		return ExitTrial
	case errors.Is(err, apiclient.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return ExitTimeout
	case errors.As(err, &apiErr):
		if apiErr.IsAuthError() {
			return ExitAuth
		}
		return ExitNetwork
	case errors.As(err, &netErr):
		return ExitNetwork
	case errors.Is(err, chat.ErrEmptyMessage), errors.Is(err, chat.ErrSuggestionsHidden):
		return ExitUsage
	default:
		return ExitError
	}
}

// describeError adds the hint carried by oops errors
func describeError(err error) string {
	if oopsErr, ok := oops.AsOops(err); ok && oopsErr.Hint() != "" {
		return fmt.Sprintf("%s (%s)", err.Error(), oopsErr.Hint())
	}
	return err.Error()
}

// FatalError logs a fatal error and exits
func FatalError(logger *slog.Logger, err error) {
	NewErrorHandler(logger).HandleError(err)
}
