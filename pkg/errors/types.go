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

package errors

import (
	"fmt"
)

// UserCanceledError indicates the user declined a required confirmation.
// It terminates the current pipeline but is not an operator-visible failure:
// the CLI prints a farewell and exits zero.
type UserCanceledError struct {
	// Prompt describes which confirmation the user declined
	Prompt string
}

// Error implements the error interface.
func (e *UserCanceledError) Error() string {
	if e.Prompt != "" {
		return fmt.Sprintf("canceled at %q", e.Prompt)
	}
	return "canceled by user"
}

// InvalidCredentialError indicates the remote service rejected the
// integration token. The token is stored partially masked so it can be
// echoed back without leaking the full value.
type InvalidCredentialError struct {
	// MaskedToken is the offending token with the middle redacted
	MaskedToken string

	// Cause is the underlying error from the remote client
	Cause error
}

// Error implements the error interface.
func (e *InvalidCredentialError) Error() string {
	if e.MaskedToken != "" {
		return fmt.Sprintf("integration token %s was rejected by the service", e.MaskedToken)
	}
	return "integration token was rejected by the service"
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *InvalidCredentialError) Unwrap() error {
	return e.Cause
}

// NoSharedDatabasesError indicates the credential is valid but no databases
// are shared with the integration.
type NoSharedDatabasesError struct{}

// Error implements the error interface.
func (e *NoSharedDatabasesError) Error() string {
	return "no databases are shared with this integration"
}

// Suggestion returns remediation guidance.
func (e *NoSharedDatabasesError) Suggestion() string {
	return "share at least one database with the integration: https://developers.notion.com/docs/getting-started#share-a-database-with-your-integration"
}

// RelationNotLoadedError indicates a relation field references a database
// that is not present in the local database directory.
type RelationNotLoadedError struct {
	// Field is the relation property name on the target database
	Field string

	// DatabaseID is the related database id that could not be found locally
	DatabaseID string
}

// Error implements the error interface.
func (e *RelationNotLoadedError) Error() string {
	return fmt.Sprintf("related database %s for field %q is not in the local directory", e.DatabaseID, e.Field)
}

// Suggestion returns remediation guidance.
func (e *RelationNotLoadedError) Suggestion() string {
	return "run 'eplog databases reload' (or 'eplog --reload') to refresh the database directory"
}

// MissingTokenError indicates an operation required a resolvable integration
// token and none was found in the merged context.
type MissingTokenError struct {
	// Source describes where resolution was attempted (e.g. "exec script")
	Source string
}

// Error implements the error interface.
func (e *MissingTokenError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("no integration token available for %s", e.Source)
	}
	return "no integration token available"
}

// Suggestion returns remediation guidance.
func (e *MissingTokenError) Suggestion() string {
	return "run 'eplog init' to set up an integration token"
}

// RemoteValidationError indicates the remote service rejected a payload.
// The service message is surfaced verbatim and the operation is not retried.
type RemoteValidationError struct {
	// Code is the service error code (e.g. "validation_error")
	Code string

	// Message is the service-provided description
	Message string

	// StatusCode is the HTTP status of the rejection
	StatusCode int
}

// Error implements the error interface.
func (e *RemoteValidationError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// ValidationError represents local input validation failures, such as an
// unresolvable database name on the command line.
type ValidationError struct {
	// Field identifies which input failed validation
	Field string

	// Message is the human-readable error description
	Message string

	// Suggestion provides actionable guidance for fixing the error
	Suggestion string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// ConfigError represents problems with local settings or storage.
type ConfigError struct {
	// Key is the setting or store key with the problem
	Key string

	// Reason explains what's wrong
	Reason string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("config error at %s: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("config error: %s", e.Reason)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}
