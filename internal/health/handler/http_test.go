package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"

	"company-registration/backend/internal/response"
)

// mockPinger implements Pinger for tests.
type mockPinger struct {
	pingErr error
}

func (m *mockPinger) PingContext(context.Context) error {
	return m.pingErr
}

type mockChecker struct {
	name string
	err  error
}

func (m mockChecker) Name() string { return m.name }

func (m mockChecker) Check(ctx context.Context) error { return m.err }

func ready(t *testing.T, srv *Server) (int, response.Envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.Ready(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	var env response.Envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rec.Code, env
}

func TestLive(t *testing.T) {
	logger, _ := test.NewNullLogger()
	rec := httptest.NewRecorder()
	NewServer(&mockPinger{pingErr: errors.New("down")}, logger).Live(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 regardless of dependencies", rec.Code)
	}
}

func TestReady_NilPinger(t *testing.T) {
	logger, _ := test.NewNullLogger()
	code, env := ready(t, NewServer(nil, logger))
	if code != http.StatusOK || !env.Success {
		t.Errorf("status = %d, envelope = %+v", code, env)
	}
}

func TestReady_PingerSuccess(t *testing.T) {
	logger, _ := test.NewNullLogger()
	code, _ := ready(t, NewServer(&mockPinger{}, logger, mockChecker{name: "nats"}))
	if code != http.StatusOK {
		t.Errorf("status = %d, want 200", code)
	}
}

func TestReady_PingerFailure(t *testing.T) {
	logger, hook := test.NewNullLogger()
	code, env := ready(t, NewServer(&mockPinger{pingErr: errors.New("connection refused")}, logger))
	if code != http.StatusServiceUnavailable || env.Success {
		t.Fatalf("status = %d, envelope = %+v", code, env)
	}
	data := env.Data.(map[string]interface{})
	if data["status"] != "NOT_SERVING" {
		t.Errorf("status = %v, want NOT_SERVING", data["status"])
	}
	if hook.LastEntry() == nil {
		t.Error("ping failure should be logged")
	}
}

func TestReady_CheckerFailure(t *testing.T) {
	logger, _ := test.NewNullLogger()
	code, env := ready(t, NewServer(&mockPinger{}, logger, mockChecker{name: "nats", err: errors.New("disconnected")}))
	if code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", code)
	}
	failed := env.Data.(map[string]interface{})["failed"].([]interface{})
	if len(failed) != 1 || failed[0] != "nats" {
		t.Errorf("failed = %v, want [nats]", failed)
	}
}
