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

package httpclient

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero timeout", Config{Timeout: 0, UserAgent: "x/1.0"}},
		{"negative timeout", Config{Timeout: -time.Second, UserAgent: "x/1.0"}},
		{"empty user agent", Config{Timeout: time.Second, UserAgent: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestClientInjectsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.UserAgent = "eplog-test/1.0"
	client, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if gotUA != "eplog-test/1.0" {
		t.Errorf("User-Agent = %q, want %q", gotUA, "eplog-test/1.0")
	}
}

func TestClientDeliversRequestsOnce(t *testing.T) {
	// A failing response must not be re-submitted.
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	resp, err := client.Post(srv.URL, "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if calls != 1 {
		t.Errorf("server saw %d calls, want 1", calls)
	}
}

func TestSanitizeURL(t *testing.T) {
	u, _ := url.Parse("https://api.example.com/v1/items?api_key=secret123&page=2")
	got := sanitizeURL(u)

	if want := "https://api.example.com/v1/items?api_key=%5BREDACTED%5D&page=2"; got != want {
		t.Errorf("sanitizeURL = %q, want %q", got, want)
	}
}

func TestIsSensitiveParam(t *testing.T) {
	for _, p := range []string{"api_key", "API_KEY", "access_token", "X-Secret"} {
		if !isSensitiveParam(p) {
			t.Errorf("%q not flagged as sensitive", p)
		}
	}
	for _, p := range []string{"page", "cursor", "amount"} {
		if isSensitiveParam(p) {
			t.Errorf("%q flagged as sensitive", p)
		}
	}
}
