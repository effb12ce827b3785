// internal/delivery/discord/app/bot/gateway.go
package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/TAG-Epic/shitpost/internal/delivery/discord"
	"github.com/TAG-Epic/shitpost/internal/infrastructure/config"
	events "github.com/TAG-Epic/shitpost/internal/infrastructure/transport/event_bus"
	"github.com/TAG-Epic/shitpost/pkg/logger"

	"github.com/cenkalti/backoff/v4"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const (
	gatewayReadLimit = 4 << 20
	gatewayVersion   = "10"
	libraryName      = "shitpost"
)

var (
	errReconnectRequested = errors.New("gateway requested reconnect")
	errInvalidSession     = errors.New("gateway invalidated session")
	errHeartbeatTimeout   = errors.New("heartbeat not acknowledged")
)

// EventPublisher узкий интерфейс шины событий
type EventPublisher interface {
	Publish(event events.Event) error
	PublishSync(event events.Event) error
}

// Gateway одно соединение (шард 0) с gateway Discord.
// Публикует READY, RESUMED, INTERACTION_CREATE и critical в шину.
type Gateway struct {
	token          string
	url            string
	intents        int
	reconnectDelay time.Duration
	maxReconnect   time.Duration
	publisher      EventPublisher

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu        sync.RWMutex
	sessionID string
	resumeURL string
	seq       atomic.Int64
	running   atomic.Bool
	connected atomic.Bool
}

// NewGateway создает gateway из конфигурации
func NewGateway(cfg config.DiscordConfig, publisher EventPublisher) *Gateway {
	return &Gateway{
		token:          cfg.Token,
		url:            cfg.GatewayURL,
		intents:        cfg.Intents,
		reconnectDelay: cfg.ReconnectDelay,
		maxReconnect:   cfg.MaxReconnect,
		publisher:      publisher,
		stopCh:         make(chan struct{}),
	}
}

// Start запускает цикл подключения
func (g *Gateway) Start() error {
	if !g.running.CompareAndSwap(false, true) {
		return fmt.Errorf("gateway already running")
	}

	g.wg.Add(1)
	go g.connectLoop()

	logger.Info("🌐 Gateway: запуск, intents=%d", g.intents)
	return nil
}

// Stop закрывает соединение и ждет завершения горутин
func (g *Gateway) Stop() {
	g.stopOnce.Do(func() { close(g.stopCh) })
	g.wg.Wait()
	g.running.Store(false)
	logger.Info("🛑 Gateway: остановлен")
}

// Name имя сервиса
func (g *Gateway) Name() string {
	return "DiscordGateway"
}

// HealthCheck true, пока есть живое соединение
func (g *Gateway) HealthCheck() bool {
	return g.connected.Load()
}

// SessionID текущая сессия (пусто до READY)
func (g *Gateway) SessionID() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.sessionID
}

// connectLoop переподключается с экспоненциальной задержкой до остановки
// или критической ошибки
func (g *Gateway) connectLoop() {
	defer g.wg.Done()

	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = g.reconnectDelay
	retry.MaxInterval = g.maxReconnect
	retry.MaxElapsedTime = 0
	retry.Reset()

	for {
		select {
		case <-g.stopCh:
			return
		default:
		}

		ready, err := g.runConnection()

		select {
		case <-g.stopCh:
			return
		default:
		}

		var critical *CriticalTransportError
		if errors.As(err, &critical) {
			logger.Error("💥 Gateway: %v", critical)
			g.publishCritical(critical)
			return
		}

		if ready {
			retry.Reset()
		}

		delay := retry.NextBackOff()
		if errors.Is(err, errReconnectRequested) {
			delay = 0
		}
		logger.Warn("⚠️ Gateway: соединение прервано: %v, повтор через %v", err, delay)

		select {
		case <-time.After(delay):
		case <-g.stopCh:
			return
		}
	}
}

// runConnection одно соединение: HELLO, IDENTIFY/RESUME, чтение событий.
// ready == true, если сессия успела стать рабочей.
func (g *Gateway) runConnection() (ready bool, err error) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		select {
		case <-g.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	g.mu.RLock()
	sessionID, resumeURL := g.sessionID, g.resumeURL
	g.mu.RUnlock()

	resuming := sessionID != ""
	dialURL := g.url
	if resuming && resumeURL != "" {
		dialURL = gatewayURLWithQuery(resumeURL)
	}

	logger.Info("🔌 Gateway: подключение к %s", dialURL)
	conn, _, err := websocket.Dial(ctx, dialURL, nil)
	if err != nil {
		return false, fmt.Errorf("ошибка подключения: %w", err)
	}
	defer conn.CloseNow()
	conn.SetReadLimit(gatewayReadLimit)

	g.connected.Store(true)
	defer g.connected.Store(false)

	var hello gatewayPayload
	if err := wsjson.Read(ctx, conn, &hello); err != nil {
		return false, g.classifyReadError(ctx, err)
	}
	if hello.Op != opHello {
		return false, fmt.Errorf("ожидался HELLO, получен op %d", hello.Op)
	}
	var hd helloData
	if err := json.Unmarshal(hello.D, &hd); err != nil || hd.HeartbeatInterval <= 0 {
		return false, fmt.Errorf("некорректный HELLO: %s", hello.D)
	}

	var acked atomic.Bool
	acked.Store(true)
	heartbeatErr := make(chan error, 1)
	go g.heartbeatLoop(ctx, conn, time.Duration(hd.HeartbeatInterval)*time.Millisecond, &acked, heartbeatErr)

	if resuming {
		err = wsjson.Write(ctx, conn, gatewayCommand{Op: opResume, D: resumeData{
			Token:     g.token,
			SessionID: sessionID,
			Seq:       g.seq.Load(),
		}})
	} else {
		err = wsjson.Write(ctx, conn, gatewayCommand{Op: opIdentify, D: identifyData{
			Token:   g.token,
			Intents: g.intents,
			Properties: identifyProperties{
				OS:      runtime.GOOS,
				Browser: libraryName,
				Device:  libraryName,
			},
		}})
	}
	if err != nil {
		return false, fmt.Errorf("ошибка отправки IDENTIFY/RESUME: %w", err)
	}

	for {
		var payload gatewayPayload
		if err := wsjson.Read(ctx, conn, &payload); err != nil {
			select {
			case hbErr := <-heartbeatErr:
				return ready, hbErr
			default:
			}
			return ready, g.classifyReadError(ctx, err)
		}

		switch payload.Op {
		case opDispatch:
			if payload.S != nil {
				g.seq.Store(*payload.S)
			}
			if g.handleDispatch(payload) {
				ready = true
			}

		case opHeartbeat:
			if err := g.sendHeartbeat(ctx, conn); err != nil {
				return ready, err
			}

		case opHeartbeatACK:
			acked.Store(true)

		case opReconnect:
			return ready, errReconnectRequested

		case opInvalidSession:
			var resumable bool
			_ = json.Unmarshal(payload.D, &resumable)
			if !resumable {
				g.resetSession()
			}
			return ready, errInvalidSession

		default:
			logger.Debug("Gateway: неизвестный op %d", payload.Op)
		}
	}
}

// handleDispatch обрабатывает op 0; возвращает true для READY/RESUMED
func (g *Gateway) handleDispatch(payload gatewayPayload) bool {
	switch events.EventType(payload.T) {
	case events.EventReady:
		var rd readyData
		if err := json.Unmarshal(payload.D, &rd); err != nil {
			logger.Warn("⚠️ Gateway: некорректный READY: %v", err)
			return false
		}
		g.mu.Lock()
		g.sessionID = rd.SessionID
		g.resumeURL = rd.ResumeGatewayURL
		g.mu.Unlock()

		name := ""
		if rd.User != nil {
			name = rd.User.Username
		}
		g.publish(events.EventReady, name)
		return true

	case events.EventResumed:
		g.publish(events.EventResumed, g.SessionID())
		return true

	case events.EventInteractionCreate:
		interaction := &discord.Interaction{}
		if err := json.Unmarshal(payload.D, interaction); err != nil {
			logger.Warn("⚠️ Gateway: некорректный INTERACTION_CREATE: %v", err)
			return false
		}
		g.publish(events.EventInteractionCreate, interaction)
		return false

	default:
		logger.Debug("Gateway: событие %s пропущено", payload.T)
		return false
	}
}

// heartbeatLoop шлет heartbeat с интервалом из HELLO.
// Неподтвержденный предыдущий heartbeat означает мертвое соединение.
func (g *Gateway) heartbeatLoop(ctx context.Context, conn *websocket.Conn, interval time.Duration, acked *atomic.Bool, errCh chan<- error) {
	// первый heartbeat со случайным сдвигом
	timer := time.NewTimer(time.Duration(rand.Float64() * float64(interval)))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if !acked.Swap(false) {
			errCh <- errHeartbeatTimeout
			conn.CloseNow()
			return
		}
		if err := g.sendHeartbeat(ctx, conn); err != nil {
			return
		}
		timer.Reset(interval)
	}
}

func (g *Gateway) sendHeartbeat(ctx context.Context, conn *websocket.Conn) error {
	var seq *int64
	if s := g.seq.Load(); s > 0 {
		seq = &s
	}
	return wsjson.Write(ctx, conn, gatewayCommand{Op: opHeartbeat, D: seq})
}

// classifyReadError превращает код закрытия в решение: критическая ошибка,
// сброс сессии или обычное переподключение
func (g *Gateway) classifyReadError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return nil
	}

	code := int(websocket.CloseStatus(err))
	if reason, ok := criticalCloseCodes[code]; ok {
		return &CriticalTransportError{Code: code, Reason: reason, Err: err}
	}
	if sessionResetCloseCodes[code] {
		g.resetSession()
	}
	return fmt.Errorf("ошибка чтения: %w", err)
}

func (g *Gateway) resetSession() {
	g.mu.Lock()
	g.sessionID = ""
	g.resumeURL = ""
	g.mu.Unlock()
	g.seq.Store(0)
}

func (g *Gateway) publish(eventType events.EventType, data interface{}) {
	err := g.publisher.Publish(events.Event{
		Type:   eventType,
		Source: g.Name(),
		Data:   data,
	})
	if err != nil {
		logger.Warn("⚠️ Gateway: не удалось опубликовать %s: %v", eventType, err)
	}
}

// publishCritical обрабатывает critical в текущей горутине: событие не должно теряться при полном буфере
func (g *Gateway) publishCritical(err *CriticalTransportError) {
	event := events.Event{Type: events.EventCritical, Source: g.Name(), Data: err}
	if perr := g.publisher.PublishSync(event); perr != nil {
		logger.Warn("⚠️ Gateway: подписчики critical завершились с ошибкой: %v", perr)
	}
}

// gatewayURLWithQuery добавляет версию и кодировку к resume_gateway_url
func gatewayURLWithQuery(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set("v", gatewayVersion)
	q.Set("encoding", "json")
	u.RawQuery = q.Encode()
	return u.String()
}
