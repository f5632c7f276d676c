// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package shared

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/tombee/eplog/internal/log"
	pkgerrors "github.com/tombee/eplog/pkg/errors"
)

// Exit codes for eplog commands
const (
	ExitSuccess         = 0
	ExitFailure         = 1
	ExitInvalidInput    = 2
	ExitConfigError     = 3
	ExitCredentialError = 4
)

// ExitError is an error that carries an exit code
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewInvalidInputError creates an error for bad command-line input
func NewInvalidInputError(msg string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitInvalidInput,
		Message: msg,
		Cause:   cause,
	}
}

// NewConfigError creates an error for settings or storage failures
func NewConfigError(msg string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitConfigError,
		Message: msg,
		Cause:   cause,
	}
}

// HandleExitError prints err and exits with the matching code.
//
// A declined confirmation is not a failure: the user asked the run to stop,
// so the process says goodbye and exits zero.
func HandleExitError(err error) {
	if err == nil {
		return
	}

	if pkgerrors.IsUserCanceled(err) {
		fmt.Println(Muted.Render("Bye!"))
		os.Exit(ExitSuccess)
	}

	slog.Debug("command failed", log.Error(err))
	fmt.Fprintln(os.Stderr, RenderError("Error: "+err.Error()))

	if suggestion := pkgerrors.SuggestionOf(err); suggestion != "" {
		fmt.Fprintf(os.Stderr, "\nSuggestion: %s\n", suggestion)
	}

	os.Exit(exitCodeFor(err))
}

// exitCodeFor maps an error chain onto an exit code.
func exitCodeFor(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	var invalidCred *pkgerrors.InvalidCredentialError
	if errors.As(err, &invalidCred) {
		return ExitCredentialError
	}

	var missingToken *pkgerrors.MissingTokenError
	if errors.As(err, &missingToken) {
		return ExitCredentialError
	}

	var validation *pkgerrors.ValidationError
	if errors.As(err, &validation) {
		return ExitInvalidInput
	}

	var config *pkgerrors.ConfigError
	if errors.As(err, &config) {
		return ExitConfigError
	}

	return ExitFailure
}
