package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/rickgao/xena-client/internal/config"
	"github.com/rickgao/xena-client/internal/connection/conntest"
	"github.com/rickgao/xena-client/internal/fix"
	"github.com/rickgao/xena-client/internal/trading"
)

type stubSigner struct{}

func (stubSigner) Sign(payload string) (string, error) { return "SIG:" + payload, nil }

func newTestClient(t *testing.T) *trading.Client {
	t.Helper()
	connCfg := (&config.ConnectionConfig{}).ConnConfig("trading", "wss://example.test/ws")
	connCfg.NewTransport = (&conntest.Factory{}).New

	client, err := trading.New(trading.Config{Conn: connCfg, APIKey: "key", Signer: stubSigner{}}, nil)
	if err != nil {
		t.Fatalf("trading.New failed: %v", err)
	}
	t.Cleanup(client.Shutdown)
	return client
}

func TestAccountsFor(t *testing.T) {
	logon := &fix.Logon{Account: []uint64{7, 8}}

	if got := accountsFor([]uint64{1}, logon); !slices.Equal(got, []uint64{1}) {
		t.Errorf("accountsFor(configured) = %v, want [1]", got)
	}
	if got := accountsFor(nil, logon); !slices.Equal(got, []uint64{7, 8}) {
		t.Errorf("accountsFor(nil) = %v, want logon accounts [7 8]", got)
	}
	if got := accountsFor(nil, nil); got != nil {
		t.Errorf("accountsFor(nil, nil) = %v, want nil", got)
	}
}

func TestLoadSigner_InvalidSecret(t *testing.T) {
	if _, err := loadSigner(config.APIConfig{APISecret: "not-hex"}); err == nil {
		t.Error("loadSigner() expected error for invalid secret")
	}
}

func TestHealthHandler_Disconnected(t *testing.T) {
	client := newTestClient(t)

	rec := httptest.NewRecorder()
	createHealthHandler("/metrics", client).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	var body struct {
		Status    string `json:"status"`
		Connected bool   `json:"connected"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != "disconnected" || body.Connected {
		t.Errorf("body = %+v, want disconnected", body)
	}
}

func TestRegisterListeners(t *testing.T) {
	client := newTestClient(t)

	if err := registerListeners(client, slog.Default()); err != nil {
		t.Fatalf("registerListeners failed: %v", err)
	}
	if err := trading.Listen(client, func(context.Context, *trading.Client, *fix.ExecutionReport) error { return nil }); !errors.Is(err, trading.ErrDuplicateSubscription) {
		t.Errorf("second ExecutionReport listener error = %v, want ErrDuplicateSubscription", err)
	}
}

func TestHealthHandler_Metrics(t *testing.T) {
	client := newTestClient(t)

	rec := httptest.NewRecorder()
	createHealthHandler("/metrics", client).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}
