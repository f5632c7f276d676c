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
	"errors"
	"fmt"
)

// Wrap creates a new error that wraps the given error with additional context.
// If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf creates a new error that wraps the given error with formatted context.
// If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target type,
// and if one is found, sets target to that error value and returns true.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New creates a new error with the given message.
func New(message string) error {
	return errors.New(message)
}

// IsUserCanceled reports whether the error tree contains a user cancellation.
// The CLI uses this to print a farewell instead of an error trace.
func IsUserCanceled(err error) bool {
	var canceled *UserCanceledError
	return errors.As(err, &canceled)
}

// SuggestionOf walks the error tree and returns the first remediation
// suggestion it finds, or the empty string.
func SuggestionOf(err error) string {
	for err != nil {
		if s, ok := err.(interface{ Suggestion() string }); ok {
			if suggestion := s.Suggestion(); suggestion != "" {
				return suggestion
			}
		}
		err = errors.Unwrap(err)
	}
	return ""
}

// MaskToken redacts the middle of a credential, keeping the first and last
// eight characters visible. Short tokens are fully redacted.
func MaskToken(token string) string {
	if len(token) <= 16 {
		return "[REDACTED]"
	}
	masked := make([]byte, 0, len(token))
	masked = append(masked, token[:8]...)
	for i := 8; i < len(token)-8; i++ {
		masked = append(masked, '*')
	}
	masked = append(masked, token[len(token)-8:]...)
	return string(masked)
}
