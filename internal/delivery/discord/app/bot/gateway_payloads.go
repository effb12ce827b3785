// internal/delivery/discord/app/bot/gateway_payloads.go
package bot

import "encoding/json"

// Опкоды gateway
const (
	opDispatch       = 0
	opHeartbeat      = 1
	opIdentify       = 2
	opResume         = 6
	opReconnect      = 7
	opInvalidSession = 9
	opHello          = 10
	opHeartbeatACK   = 11
)

// Коды закрытия, после которых переподключаться бессмысленно
var criticalCloseCodes = map[int]string{
	4004: "authentication failed",
	4010: "invalid shard",
	4011: "sharding required",
	4012: "invalid API version",
	4013: "invalid intents",
	4014: "disallowed intents",
}

// Коды закрытия, после которых сессию нельзя возобновить
var sessionResetCloseCodes = map[int]bool{
	4007: true, // invalid seq
	4009: true, // session timed out
}

// gatewayPayload входящее сообщение gateway
type gatewayPayload struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d"`
	S  *int64          `json:"s,omitempty"`
	T  string          `json:"t,omitempty"`
}

// gatewayCommand исходящее сообщение gateway
type gatewayCommand struct {
	Op int         `json:"op"`
	D  interface{} `json:"d"`
}

type helloData struct {
	HeartbeatInterval int64 `json:"heartbeat_interval"`
}

type identifyProperties struct {
	OS      string `json:"os"`
	Browser string `json:"browser"`
	Device  string `json:"device"`
}

type identifyData struct {
	Token      string             `json:"token"`
	Intents    int                `json:"intents"`
	Properties identifyProperties `json:"properties"`
}

type resumeData struct {
	Token     string `json:"token"`
	SessionID string `json:"session_id"`
	Seq       int64  `json:"seq"`
}

type readyData struct {
	SessionID        string        `json:"session_id"`
	ResumeGatewayURL string        `json:"resume_gateway_url"`
	User             *readyUser    `json:"user"`
	Application      *readyAppInfo `json:"application"`
}

type readyUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type readyAppInfo struct {
	ID string `json:"id"`
}
