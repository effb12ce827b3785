// internal/delivery/discord/types.go
package discord

import "encoding/json"

// InteractionType тип взаимодействия Discord
type InteractionType int

const (
	InteractionPing               InteractionType = 1
	InteractionApplicationCommand InteractionType = 2
	InteractionMessageComponent   InteractionType = 3
	InteractionAutocomplete       InteractionType = 4
	InteractionModalSubmit        InteractionType = 5
)

func (t InteractionType) String() string {
	switch t {
	case InteractionPing:
		return "ping"
	case InteractionApplicationCommand:
		return "application_command"
	case InteractionMessageComponent:
		return "message_component"
	case InteractionAutocomplete:
		return "autocomplete"
	case InteractionModalSubmit:
		return "modal_submit"
	default:
		return "unknown"
	}
}

// ResponseType тип ответа на взаимодействие
type ResponseType int

const (
	ResponsePong                     ResponseType = 1
	ResponseChannelMessageWithSource ResponseType = 4
	ResponseDeferredChannelMessage   ResponseType = 5
	ResponseDeferredUpdateMessage    ResponseType = 6
	ResponseUpdateMessage            ResponseType = 7
)

// ComponentType тип компонента сообщения
type ComponentType int

const (
	ComponentActionRow ComponentType = 1
	ComponentButton    ComponentType = 2
)

// ButtonStyle стиль кнопки
type ButtonStyle int

const (
	ButtonPrimary   ButtonStyle = 1
	ButtonSecondary ButtonStyle = 2
	ButtonSuccess   ButtonStyle = 3
	ButtonDanger    ButtonStyle = 4
	ButtonLink      ButtonStyle = 5
)

// MessageFlagEphemeral сообщение видно только автору взаимодействия
const MessageFlagEphemeral = 1 << 6

// User - пользователь Discord
type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator,omitempty"`
	GlobalName    string `json:"global_name,omitempty"`
	Bot           bool   `json:"bot,omitempty"`
}

// Member - участник сервера
type Member struct {
	User *User  `json:"user,omitempty"`
	Nick string `json:"nick,omitempty"`
}

// InteractionData данные взаимодействия (команда, кнопка, модалка)
type InteractionData struct {
	// Для команд
	ID      string          `json:"id,omitempty"`
	Name    string          `json:"name,omitempty"`
	Type    int             `json:"type,omitempty"`
	Options json.RawMessage `json:"options,omitempty"`

	// Для компонентов и модалок
	CustomID      string          `json:"custom_id,omitempty"`
	ComponentType ComponentType   `json:"component_type,omitempty"`
	Values        []string        `json:"values,omitempty"`
	Components    json.RawMessage `json:"components,omitempty"`
}

// Interaction входящее взаимодействие (INTERACTION_CREATE или HTTP-вебхук)
type Interaction struct {
	ID            string           `json:"id"`
	ApplicationID string           `json:"application_id"`
	Type          InteractionType  `json:"type"`
	Data          *InteractionData `json:"data,omitempty"`
	GuildID       string           `json:"guild_id,omitempty"`
	ChannelID     string           `json:"channel_id,omitempty"`
	Member        *Member          `json:"member,omitempty"`
	User          *User            `json:"user,omitempty"`
	Token         string           `json:"token"`
	Version       int              `json:"version"`
	Locale        string           `json:"locale,omitempty"`
}

// RoutingID возвращает строку, по которой выбирается хэндлер:
// имя команды для команд, custom_id для компонентов и модалок.
// Автодополнение не маршрутизируется: ему нужен ответ типа 8, а хэндлеры команд отвечают сообщением.
func (i *Interaction) RoutingID() (string, bool) {
	if i == nil || i.Data == nil {
		return "", false
	}

	switch i.Type {
	case InteractionApplicationCommand:
		return i.Data.Name, true
	case InteractionMessageComponent, InteractionModalSubmit:
		return i.Data.CustomID, true
	default:
		return "", false
	}
}

// Author возвращает пользователя, вызвавшего взаимодействие (в гильдии или в ЛС)
func (i *Interaction) Author() *User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// Component компонент сообщения (action row или кнопка)
type Component struct {
	Type       ComponentType `json:"type"`
	Label      string        `json:"label,omitempty"`
	Style      ButtonStyle   `json:"style,omitempty"`
	CustomID   string        `json:"custom_id,omitempty"`
	URL        string        `json:"url,omitempty"`
	Disabled   bool          `json:"disabled,omitempty"`
	Components []Component   `json:"components,omitempty"`
}

// ActionRow строка компонентов
func ActionRow(components ...Component) Component {
	return Component{Type: ComponentActionRow, Components: components}
}

// Button кнопка с custom_id
func Button(label string, style ButtonStyle, customID string) Component {
	return Component{Type: ComponentButton, Label: label, Style: style, CustomID: customID}
}

// MessageData содержимое сообщения-ответа
type MessageData struct {
	Content    string      `json:"content,omitempty"`
	Components []Component `json:"components,omitempty"`
	Flags      int         `json:"flags,omitempty"`
}

// InteractionResponse ответ на взаимодействие
type InteractionResponse struct {
	Type ResponseType `json:"type"`
	Data *MessageData `json:"data,omitempty"`
}

// NewMessageResponse ответ обычным сообщением
func NewMessageResponse(content string, components ...Component) *InteractionResponse {
	return &InteractionResponse{
		Type: ResponseChannelMessageWithSource,
		Data: &MessageData{Content: content, Components: components},
	}
}

// NewEphemeralResponse ответ, видимый только вызвавшему пользователю
func NewEphemeralResponse(content string) *InteractionResponse {
	return &InteractionResponse{
		Type: ResponseChannelMessageWithSource,
		Data: &MessageData{Content: content, Flags: MessageFlagEphemeral},
	}
}

// ApplicationCommand описание slash-команды для регистрации
type ApplicationCommand struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        int    `json:"type,omitempty"`
}

// APIError тело ошибки Discord API
type APIError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors,omitempty"`
}
