package domain

import "gorm.io/datatypes"

// SessionSnapshot is the durable persisted form of a session: the whole
// aggregate serialized as one JSON blob keyed by code. Only the code is
// indexed separately.
type SessionSnapshot struct {
	Code      string         `json:"code" gorm:"primaryKey"`
	State     datatypes.JSON `json:"state" gorm:"not null"`
	UpdatedAt int64          `json:"updatedAt" gorm:"not null"`
}

// ChatMessage is one in-session chat entry, kept in a bounded per-session
// list in the ephemeral store.
type ChatMessage struct {
	ID         string `json:"id"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Content    string `json:"content"`
	Timestamp  int64  `json:"timestamp"`
}
