package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"company-registration/backend/internal/response"
	"company-registration/backend/internal/security"
)

func protected(t *testing.T) (http.Handler, *security.TokenProvider) {
	t.Helper()
	tokens := security.NewTestHMACTokenProvider()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := GetAccountID(r.Context())
		if !ok {
			t.Error("account id missing in protected handler")
		}
		email, _ := GetEmail(r.Context())
		w.Write([]byte(accountID + "|" + email))
	})
	return RequireBearer(tokens)(next), tokens
}

func assertUnauthorized(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	var env response.Envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Success || env.Message != MsgUnauthorized || env.Data != nil {
		t.Errorf("envelope = %+v", env)
	}
}

func TestRequireBearer_ValidToken(t *testing.T) {
	h, tokens := protected(t)
	token, _, err := tokens.Issue("acct-1", "a@test.example", "Test Co")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != "acct-1|a@test.example" {
		t.Errorf("body = %q", got)
	}
}

func TestRequireBearer_Rejects(t *testing.T) {
	h, _ := protected(t)
	other := security.NewHMACTokenProvider([]byte("other-secret"), security.TestIssuer, security.TestAudience, time.Hour)
	foreign, _, err := other.Issue("acct-1", "a@test.example", "Test Co")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	testCases := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"no scheme", "abc.def.ghi"},
		{"basic scheme", "Basic dXNlcjpwYXNz"},
		{"empty bearer", "Bearer "},
		{"garbage", "Bearer not-a-jwt"},
		{"wrong key", "Bearer " + foreign},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/profile", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assertUnauthorized(t, rec)
		})
	}
}

func TestExtractBearer(t *testing.T) {
	testCases := []struct {
		header string
		want   string
	}{
		{"Bearer tok", "tok"},
		{"bearer tok", "tok"},
		{"BEARER tok", "tok"},
		{"  Bearer   tok  ", "tok"},
		{"", ""},
		{"Bear", ""},
		{"Token tok", ""},
	}
	for _, tc := range testCases {
		if got := extractBearer(tc.header); got != tc.want {
			t.Errorf("extractBearer(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}
