// internal/delivery/discord/app/bot/webhook.go
package bot

import (
	"context"
	"crypto/ed25519"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/TAG-Epic/shitpost/internal/delivery/discord"
	"github.com/TAG-Epic/shitpost/internal/infrastructure/config"
	"github.com/TAG-Epic/shitpost/pkg/logger"
)

const (
	headerSignature = "X-Signature-Ed25519"
	headerTimestamp = "X-Signature-Timestamp"
)

// WebhookServer HTTP endpoint для взаимодействий (Interactions Endpoint URL)
type WebhookServer struct {
	config    *config.Config
	bot       *DiscordBot
	publicKey ed25519.PublicKey
	server    *http.Server
	status    func(ctx context.Context) map[string]interface{}
}

// NewWebhookServer создает сервер; публичный ключ приложения задается в hex
func NewWebhookServer(cfg *config.Config, bot *DiscordBot) (*WebhookServer, error) {
	key, err := hex.DecodeString(cfg.Discord.PublicKey)
	if err != nil || len(key) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid DISCORD_PUBLIC_KEY: expected %d hex-encoded bytes", ed25519.PublicKeySize)
	}

	return &WebhookServer{
		config:    cfg,
		bot:       bot,
		publicKey: ed25519.PublicKey(key),
	}, nil
}

// SetStatusProvider задает источник данных для /health; без него отдается статистика бота
func (ws *WebhookServer) SetStatusProvider(status func(ctx context.Context) map[string]interface{}) {
	ws.status = status
}

// Handler маршруты сервера
func (ws *WebhookServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(ws.config.Webhook.Path, ws.handleInteraction)
	mux.HandleFunc("/health", ws.handleHealthCheck)
	return mux
}

// Start запускает HTTP сервер с поддержкой TLS
func (ws *WebhookServer) Start() error {
	if ws.bot == nil {
		return fmt.Errorf("discord bot not initialized")
	}

	if ws.config.Webhook.UseTLS {
		if ws.config.Webhook.TLSCertPath == "" || ws.config.Webhook.TLSKeyPath == "" {
			return fmt.Errorf("TLS включен, но пути к сертификатам не указаны")
		}
	}

	addr := fmt.Sprintf(":%d", ws.config.Webhook.Port)
	ws.server = &http.Server{
		Addr:         addr,
		Handler:      ws.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if ws.config.Webhook.UseTLS {
		ws.server.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	logger.Info("🚀 Запуск webhook сервера на %s%s", addr, ws.config.Webhook.Path)

	go func() {
		var err error
		if ws.config.Webhook.UseTLS {
			err = ws.server.ServeTLS(listener, ws.config.Webhook.TLSCertPath, ws.config.Webhook.TLSKeyPath)
		} else {
			err = ws.server.Serve(listener)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("❌ Ошибка webhook сервера: %v", err)
		}
	}()

	return nil
}

// Stop мягко останавливает сервер
func (ws *WebhookServer) Stop(ctx context.Context) error {
	if ws.server == nil {
		return nil
	}
	return ws.server.Shutdown(ctx)
}

// handleInteraction принимает взаимодействие, проверяет подпись и отвечает синхронно
func (ws *WebhookServer) handleInteraction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if r.ContentLength > ws.config.Webhook.MaxBodySize {
		http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, ws.config.Webhook.MaxBodySize))
	if err != nil {
		http.Error(w, "Error reading request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if !ws.verify(r.Header.Get(headerSignature), r.Header.Get(headerTimestamp), body) {
		logger.Warn("⚠️ Webhook: неверная подпись запроса от %s", r.RemoteAddr)
		http.Error(w, "invalid request signature", http.StatusUnauthorized)
		return
	}

	var interaction discord.Interaction
	if err := json.Unmarshal(body, &interaction); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if interaction.Type == discord.InteractionPing {
		writeJSON(w, http.StatusOK, &discord.InteractionResponse{Type: discord.ResponsePong})
		return
	}

	result := ws.bot.HandleInteraction(r.Context(), &interaction)
	if result.Response == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, result.Response)
}

// verify проверяет Ed25519 подпись timestamp+body
func (ws *WebhookServer) verify(signature, timestamp string, body []byte) bool {
	if signature == "" || timestamp == "" {
		return false
	}
	sig, err := hex.DecodeString(signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}

	msg := make([]byte, 0, len(timestamp)+len(body))
	msg = append(msg, timestamp...)
	msg = append(msg, body...)
	return ed25519.Verify(ws.publicKey, msg, sig)
}

// handleHealthCheck обрабатывает проверку здоровья
func (ws *WebhookServer) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	var stats map[string]interface{}
	if ws.status != nil {
		stats = ws.status(r.Context())
	} else {
		stats = ws.bot.GetStats()
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
		"service":   "discord-interactions",
		"stats":     stats,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("⚠️ Webhook: ошибка записи ответа: %v", err)
	}
}
