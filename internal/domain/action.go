package domain

import "encoding/json"

// ActionType tags a participant-originated game action or a server-originated
// game event. The set is closed; the dispatcher switches over it exhaustively.
type ActionType string

const (
	// Client to server
	ActionGameStarted     ActionType = "game-started"
	ActionClueSubmitted   ActionType = "clue-submitted"
	ActionWordGuessed     ActionType = "word-guessed"
	ActionVoteCast        ActionType = "vote-cast"
	ActionNextRound       ActionType = "next-round"
	ActionSettingsUpdated ActionType = "settings-updated"

	// Server to clients
	ActionPlayerJoined ActionType = "player-joined"
	ActionPlayerLeft   ActionType = "player-left"
	ActionPhaseChanged ActionType = "phase-changed"
	ActionRoundEnded   ActionType = "round-ended"
	ActionGameEnded    ActionType = "game-ended"
)

// ActionEnvelope is the first-pass decode of an incoming action; the
// dispatcher re-decodes Raw into the per-type payload.
type ActionEnvelope struct {
	Type ActionType `json:"type"`
	Raw  json.RawMessage
}

func DecodeAction(data []byte) (*ActionEnvelope, error) {
	var head struct {
		Type ActionType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	return &ActionEnvelope{Type: head.Type, Raw: data}, nil
}

type GameStartedAction struct {
	Type ActionType `json:"type"`
}

type ClueSubmittedAction struct {
	Type     ActionType `json:"type"`
	PlayerID string     `json:"playerId"`
	Clue     string     `json:"clue"`
}

type WordGuessedAction struct {
	Type        ActionType `json:"type"`
	PlayerID    string     `json:"playerId"`
	GuessedWord string     `json:"guessedWord"`
	Correct     bool       `json:"correct"`
}

type VoteCastAction struct {
	Type     ActionType `json:"type"`
	PlayerID string     `json:"playerId"`
	VotedFor string     `json:"votedFor"`
}

type NextRoundAction struct {
	Type ActionType `json:"type"`
}

type SettingsUpdatedAction struct {
	Type ActionType `json:"type"`
	SettingsUpdate
}

type PlayerJoinedAction struct {
	Type   ActionType   `json:"type"`
	Player *Participant `json:"player"`
}

type PlayerLeftAction struct {
	Type     ActionType `json:"type"`
	PlayerID string     `json:"playerId"`
}

type PhaseChangedAction struct {
	Type  ActionType `json:"type"`
	Phase Phase      `json:"phase"`
}

type RoundEndedAction struct {
	Type   ActionType `json:"type"`
	Winner Winner     `json:"winner"`
}

type GameEndedAction struct {
	Type   ActionType `json:"type"`
	Winner Winner     `json:"winner"`
}
