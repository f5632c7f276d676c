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
	"strings"
	"testing"
)

func TestUserCanceledError(t *testing.T) {
	err := &UserCanceledError{Prompt: "set up integration"}
	if !strings.Contains(err.Error(), "set up integration") {
		t.Errorf("expected prompt in message, got %q", err.Error())
	}

	wrapped := Wrap(err, "running init pipeline")
	if !IsUserCanceled(wrapped) {
		t.Error("expected IsUserCanceled to see through wrapping")
	}
	if IsUserCanceled(New("boom")) {
		t.Error("unclassified error reported as canceled")
	}
}

func TestInvalidCredentialUnwrap(t *testing.T) {
	cause := New("401 unauthorized")
	err := &InvalidCredentialError{MaskedToken: "secret_a********aaaaaaaa", Cause: cause}

	var cred *InvalidCredentialError
	if !As(fmt.Errorf("init: %w", err), &cred) {
		t.Fatal("expected errors.As to find InvalidCredentialError")
	}
	if !Is(err, cause) {
		t.Error("expected cause in error tree")
	}
	if strings.Contains(err.Error(), "secret_a********aaaaaaaa") == false {
		t.Errorf("masked token missing from message: %q", err.Error())
	}
}

func TestSuggestionOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "no shared databases",
			err:  Wrap(&NoSharedDatabasesError{}, "loading directory"),
			want: "share at least one database",
		},
		{
			name: "relation not loaded",
			err:  &RelationNotLoadedError{Field: "Project", DatabaseID: "abc"},
			want: "reload",
		},
		{
			name: "missing token",
			err:  &MissingTokenError{Source: "exec script"},
			want: "eplog init",
		},
		{
			name: "unclassified",
			err:  New("boom"),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SuggestionOf(tt.err)
			if tt.want == "" {
				if got != "" {
					t.Errorf("expected no suggestion, got %q", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("suggestion %q does not contain %q", got, tt.want)
			}
		})
	}
}

func TestRemoteValidationError(t *testing.T) {
	err := &RemoteValidationError{Code: "validation_error", Message: "body failed validation", StatusCode: 400}
	if err.Error() != "validation_error: body failed validation" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestValidationErrorField(t *testing.T) {
	err := &ValidationError{Field: "database", Message: "not found"}
	if !strings.Contains(err.Error(), "database") {
		t.Errorf("field missing from message: %q", err.Error())
	}
}

func TestMaskToken(t *testing.T) {
	// The masked form keeps the first and last eight characters.
	long := "secret_boM6kupKDNRglxKgigrt"
	masked := MaskToken(long)
	if !strings.HasPrefix(masked, long[:8]) || !strings.HasSuffix(masked, long[len(long)-8:]) {
		t.Errorf("mask lost visible affixes: %q", masked)
	}
	if strings.Contains(masked, long[8:len(long)-8]) {
		t.Errorf("mask leaked middle: %q", masked)
	}
	if len(masked) != len(long) {
		t.Errorf("mask changed length: %d != %d", len(masked), len(long))
	}

	for _, short := range []string{"short", "exactly16chars!!"} {
		if got := MaskToken(short); got != "[REDACTED]" {
			t.Errorf("MaskToken(%q) = %q, want [REDACTED]", short, got)
		}
	}
}
