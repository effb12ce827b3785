// application/bootstrap/app_test.go
package bootstrap

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/TAG-Epic/shitpost/internal/delivery/discord/app/bot"
	"github.com/TAG-Epic/shitpost/internal/infrastructure/config"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

func testConfig(gatewayURL string) *config.Config {
	cfg := &config.Config{}
	cfg.Discord.Token = "secret"
	cfg.Discord.ApplicationID = "123456789"
	cfg.Discord.Mode = config.ModeGateway
	cfg.Discord.GatewayURL = gatewayURL
	cfg.Discord.APIBaseURL = "http://127.0.0.1:1"
	cfg.Discord.HTTPTimeout = time.Second
	cfg.Discord.ReconnectDelay = 10 * time.Millisecond
	cfg.Discord.MaxReconnect = 50 * time.Millisecond
	cfg.EventBus.BufferSize = 16
	cfg.EventBus.WorkerCount = 2
	cfg.LogLevel = "error"
	return cfg
}

func TestBuildRequiresConfig(t *testing.T) {
	if _, err := NewAppBuilder().Build(); err == nil {
		t.Fatal("expected error without config")
	}
}

func TestBuildValidatesConfig(t *testing.T) {
	cfg := testConfig("ws://example")
	cfg.Discord.Token = ""

	_, err := NewAppBuilder().WithConfig(cfg).Build()
	if err == nil || !strings.Contains(err.Error(), "TOKEN") {
		t.Fatalf("err = %v", err)
	}
}

func TestBuildWithMode(t *testing.T) {
	cfg := testConfig("ws://example")
	_, err := NewAppBuilder().WithConfig(cfg).WithMode(config.ModeWebhook).Build()
	if err == nil || !strings.Contains(err.Error(), "DISCORD_PUBLIC_KEY") {
		t.Fatalf("webhook mode without key must fail, got %v", err)
	}
}

func TestRunReturnsCriticalTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.CloseNow()

		ctx := r.Context()
		_ = wsjson.Write(ctx, conn, map[string]interface{}{
			"op": 10,
			"d":  map[string]interface{}{"heartbeat_interval": 45000},
		})
		var identify map[string]interface{}
		_ = wsjson.Read(ctx, conn, &identify)
		conn.Close(websocket.StatusCode(4014), "Disallowed intent(s).")
	}))
	defer srv.Close()

	app, err := NewAppBuilder().WithConfig(testConfig("ws" + strings.TrimPrefix(srv.URL, "http"))).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := app.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer app.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = app.Run(ctx)
	var critical *bot.CriticalTransportError
	if !errors.As(err, &critical) || critical.Code != 4014 {
		t.Fatalf("Run returned %v", err)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	app, err := NewAppBuilder().WithConfig(testConfig("ws://127.0.0.1:1")).Build()
	if err != nil {
		t.Fatal(err)
	}
	if err := app.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if err := app.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if app.IsRunning() {
		t.Fatal("still running after Stop")
	}
}

func TestWebhookHealthReportsApplicationStatus(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	cfg := testConfig("ws://127.0.0.1:1")
	cfg.Discord.PublicKey = hex.EncodeToString(pub)
	cfg.Webhook.Path = "/interactions"
	cfg.Webhook.MaxBodySize = 1 << 16

	app, err := NewAppBuilder().WithConfig(cfg).WithMode(config.ModeWebhook).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := app.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer app.Stop()

	rec := httptest.NewRecorder()
	app.webhook.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body struct {
		Stats map[string]interface{} `json:"stats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("health body %q: %v", rec.Body.String(), err)
	}
	if body.Stats["mode"] != config.ModeWebhook || body.Stats["bot"] == nil || body.Stats["event_bus"] == nil {
		t.Fatalf("stats = %v", body.Stats)
	}
	if _, ok := body.Stats["dedup_in_memory"]; !ok {
		t.Fatalf("in-memory dedup not reported: %v", body.Stats)
	}
}
