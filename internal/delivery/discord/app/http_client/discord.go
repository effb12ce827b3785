// internal/delivery/discord/app/http_client/discord.go
package http_client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/TAG-Epic/shitpost/internal/delivery/discord"
	"github.com/TAG-Epic/shitpost/pkg/logger"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://discord.com/api/v10"
	userAgent      = "DiscordBot (https://github.com/TAG-Epic/shitpost, 1.0)"
	maxErrorBody   = 64 * 1024
)

// Options настройки клиента
type Options struct {
	BaseURL   string
	Token     string
	Timeout   time.Duration
	RateLimit float64 // запросов в секунду, 0 - без ограничения
	Burst     int
}

// Client клиент для работы с Discord REST API
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	limiter    *rate.Limiter
}

// NewClient создает новый клиент Discord
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = int(opts.RateLimit)
			if burst < 1 {
				burst = 1
			}
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		token:      opts.Token,
		limiter:    limiter,
	}
}

// Request выполняет запрос. body сериализуется в JSON, ответ декодируется в out (если не nil).
// На 429 ждет retry_after и повторяет один раз.
func (c *Client) Request(ctx context.Context, route Route, body interface{}, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("ошибка сериализации тела %s: %w", route, err)
		}
	}

	for attempt := 0; ; attempt++ {
		retryAfter, err := c.do(ctx, route, payload, out)
		if err == nil {
			return nil
		}

		var rle *RateLimitError
		if !errors.As(err, &rle) || attempt > 0 {
			return err
		}

		logger.Warn("⏳ Лимит Discord на %s, повтор через %v", route, retryAfter)
		timer := time.NewTimer(retryAfter)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *Client) do(ctx context.Context, route Route, payload []byte, out interface{}) (time.Duration, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("ожидание лимитера %s: %w", route, err)
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, route.Method, c.baseURL+route.Path, reader)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания запроса %s: %w", route, err)
	}
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bot "+c.token)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("ошибка запроса %s: %w", route, err)
	}
	defer resp.Body.Close()

	logger.Debug("🌐 %s -> %d за %v", route, resp.StatusCode, time.Since(startTime))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil || resp.StatusCode == http.StatusNoContent {
			_, _ = io.Copy(io.Discard, resp.Body)
			return 0, nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return 0, fmt.Errorf("ошибка декодирования ответа %s: %w", route, err)
		}
		return 0, nil

	case resp.StatusCode == http.StatusTooManyRequests:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var limit struct {
			RetryAfter float64 `json:"retry_after"`
			Global     bool    `json:"global"`
		}
		_ = json.Unmarshal(raw, &limit)
		if limit.RetryAfter <= 0 {
			if v, err := strconv.ParseFloat(resp.Header.Get("Retry-After"), 64); err == nil {
				limit.RetryAfter = v
			}
		}
		wait := time.Duration(limit.RetryAfter * float64(time.Second))
		return wait, &RateLimitError{Route: route.String(), RetryAfter: limit.RetryAfter, Global: limit.Global}

	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		rejection := &RemoteRejectionError{
			Route:   route.String(),
			Status:  resp.StatusCode,
			Message: http.StatusText(resp.StatusCode),
			Body:    raw,
		}
		var apiErr discord.APIError
		if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Message != "" {
			rejection.Code = apiErr.Code
			rejection.Message = apiErr.Message
		}
		return 0, rejection

	default:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return 0, &ServerError{Route: route.String(), Status: resp.StatusCode, Body: raw}
	}
}

