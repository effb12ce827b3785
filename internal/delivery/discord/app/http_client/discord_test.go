// internal/delivery/discord/app/http_client/discord_test.go
package http_client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/TAG-Epic/shitpost/internal/delivery/discord"
)

func TestNewRoute(t *testing.T) {
	route, err := NewRoute(http.MethodPost, RouteInteractionCallback,
		"interaction_id", "123",
		"interaction_token", "a/b token",
	)
	if err != nil {
		t.Fatalf("NewRoute: %v", err)
	}
	if route.Path != "/interactions/123/a%2Fb%20token/callback" {
		t.Fatalf("path = %q", route.Path)
	}
	if route.Params["interaction_token"] != "a/b token" {
		t.Fatalf("raw params lost: %v", route.Params)
	}
	if route.String() != "POST "+RouteInteractionCallback {
		t.Fatalf("String() = %q", route.String())
	}
}

func TestNewRouteErrors(t *testing.T) {
	if _, err := NewRoute(http.MethodGet, "/x/{id}", "id"); err == nil {
		t.Fatal("odd kv must fail")
	}
	if _, err := NewRoute(http.MethodGet, "/x/{id", "id", "1"); err == nil {
		t.Fatal("malformed template must fail")
	}
	if _, err := NewRoute(http.MethodGet, "/x/{id}/y"); err == nil {
		t.Fatal("missing parameter must fail")
	}
}

func TestCreateInteractionResponse(t *testing.T) {
	var got discord.InteractionResponse
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/interactions/42/tok/callback" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bot secret" {
			t.Errorf("authorization = %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, Token: "secret"})
	err := c.CreateInteractionResponse(context.Background(), "42", "tok", discord.NewMessageResponse("Hello"))
	if err != nil {
		t.Fatalf("CreateInteractionResponse: %v", err)
	}
	if got.Type != discord.ResponseChannelMessageWithSource || got.Data.Content != "Hello" {
		t.Fatalf("server got %+v", got)
	}
}

func TestBulkOverwriteGlobalCommands(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/applications/99/commands" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var cmds []discord.ApplicationCommand
		_ = json.NewDecoder(r.Body).Decode(&cmds)
		_ = json.NewEncoder(w).Encode(cmds)
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL})
	cmds, err := c.BulkOverwriteGlobalCommands(context.Background(), "99", []discord.ApplicationCommand{
		{Name: "show-button", Description: "Shows a button!"},
	})
	if err != nil {
		t.Fatalf("BulkOverwriteGlobalCommands: %v", err)
	}
	if len(cmds) != 1 || cmds[0].Name != "show-button" {
		t.Fatalf("commands = %+v", cmds)
	}
}

func TestRemoteRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":50035,"message":"Invalid Form Body"}`))
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL})
	err := c.CreateInteractionResponse(context.Background(), "1", "t", discord.NewMessageResponse("x"))

	var rej *RemoteRejectionError
	if !errors.As(err, &rej) {
		t.Fatalf("expected RemoteRejectionError, got %v", err)
	}
	if rej.Status != 400 || rej.Code != 50035 || rej.Message != "Invalid Form Body" {
		t.Fatalf("rejection = %+v", rej)
	}
}

func TestRateLimitRetriesOnce(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"retry_after":0.01,"global":false}`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL})
	route, _ := NewRoute(http.MethodPost, "/ping")
	if err := c.Request(context.Background(), route, nil, nil); err != nil {
		t.Fatalf("Request: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d", calls.Load())
	}
}

func TestRateLimitGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"retry_after":0.01,"global":true}`))
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL})
	route, _ := NewRoute(http.MethodPost, "/ping")
	err := c.Request(context.Background(), route, nil, nil)

	var rle *RateLimitError
	if !errors.As(err, &rle) || !rle.Global {
		t.Fatalf("expected global RateLimitError, got %v", err)
	}
}

func TestServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, Timeout: time.Second})
	route, _ := NewRoute(http.MethodGet, "/gateway")
	err := c.Request(context.Background(), route, nil, nil)

	var se *ServerError
	if !errors.As(err, &se) || se.Status != http.StatusBadGateway {
		t.Fatalf("expected ServerError, got %v", err)
	}
	var rej *RemoteRejectionError
	if errors.As(err, &rej) {
		t.Fatal("5xx is not a rejection")
	}
}
