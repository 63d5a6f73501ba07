package websocket

import (
	"encoding/json"
	"time"

	"github.com/nmoreno/impostor-server/internal/domain"
)

type MessageType string

const (
	// Client to Server
	MessageTypeJoinGame    MessageType = "join-game"
	MessageTypeGameAction  MessageType = "game-action"
	MessageTypeSendMessage MessageType = "send-message"
	MessageTypeGetMessages MessageType = "get-messages"

	// Server to Client
	MessageTypeJoinedGame  MessageType = "joined-game"
	MessageTypeGameUpdated MessageType = "game-updated"
	MessageTypeAction      MessageType = "action"
	MessageTypeTimerUpdate MessageType = "timer-update"
	MessageTypeNewMessage  MessageType = "new-message"
	MessageTypeMessages    MessageType = "messages"
	MessageTypeGameDeleted MessageType = "game-deleted"
	MessageTypeError       MessageType = "error"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		Payload:   payloadBytes,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

// Client to Server payloads

type JoinGamePayload struct {
	GameCode   string `json:"gameCode"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

// GameActionPayload is kept raw; the dispatcher decodes it per action type.
type GameActionPayload = json.RawMessage

type SendMessagePayload struct {
	Content string `json:"content"`
}

// Server to Client payloads

type JoinedGamePayload struct {
	Game     *domain.Session `json:"game"`
	PlayerID string          `json:"playerId"`
}

type NewMessagePayload struct {
	Message *domain.ChatMessage `json:"message"`
}

type MessagesPayload struct {
	Messages []*domain.ChatMessage `json:"messages"`
}

type GameDeletedPayload struct {
	GameCode string `json:"gameCode"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
