package websocket

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/nmoreno/impostor-server/internal/domain"
	"github.com/nmoreno/impostor-server/internal/service"
)

// Actor is the dispatcher's view of one connected player. Client implements
// it over a live connection; tests drive the dispatcher with fakes.
type Actor interface {
	RoomMember
	PlayerName() string
	GameCode() string
}

// Dispatcher translates incoming messages into service calls. Errors go back
// to the sender only; state changes reach the room through the services'
// broadcasts.
type Dispatcher struct {
	sessions *service.SessionService
	games    *service.GameService
	chat     *service.ChatService
	timers   *service.TimerService
	hub      *Hub
	logger   *zap.Logger
}

func NewDispatcher(sessions *service.SessionService, games *service.GameService, chat *service.ChatService, timers *service.TimerService, hub *Hub, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		sessions: sessions,
		games:    games,
		chat:     chat,
		timers:   timers,
		hub:      hub,
		logger:   logger,
	}
}

// HandleJoin puts the connection in the room and adds the player to the
// session. The room registration happens first so the joiner sees the
// broadcasts triggered by their own join; it is rolled back if the join is
// rejected.
func (d *Dispatcher) HandleJoin(ctx context.Context, actor Actor, code string) {
	d.hub.Join(code, actor)

	session, p, err := d.sessions.Join(ctx, code, actor.PlayerID(), actor.PlayerName())
	if err != nil {
		d.hub.Leave(code, actor)
		d.sendError(actor, err)
		return
	}

	d.sendTo(actor, MessageTypeJoinedGame, JoinedGamePayload{
		Game:     session.ViewFor(actor.PlayerID()),
		PlayerID: actor.PlayerID(),
	})
	d.hub.BroadcastSession(code, session)
	d.hub.BroadcastEvent(code, string(MessageTypeAction), domain.PlayerJoinedAction{
		Type:   domain.ActionPlayerJoined,
		Player: p,
	})
}

// HandleAction decodes and routes one game action. Unknown action types are
// relayed to the room untouched so clients can extend the protocol between
// themselves.
func (d *Dispatcher) HandleAction(ctx context.Context, actor Actor, raw json.RawMessage) {
	code := actor.GameCode()
	if code == "" {
		d.sendErrorCode(actor, "NOT_IN_GAME", "join a game first")
		return
	}

	env, err := domain.DecodeAction(raw)
	if err != nil {
		d.sendErrorCode(actor, "INVALID_ACTION", "malformed action payload")
		return
	}

	switch env.Type {
	case domain.ActionGameStarted:
		err = d.games.Start(ctx, code, actor.PlayerID())

	case domain.ActionClueSubmitted:
		var a domain.ClueSubmittedAction
		if err = json.Unmarshal(env.Raw, &a); err == nil {
			err = d.games.SubmitClue(ctx, code, actor.PlayerID(), a.Clue)
		}

	case domain.ActionVoteCast:
		var a domain.VoteCastAction
		if err = json.Unmarshal(env.Raw, &a); err == nil {
			err = d.games.CastVote(ctx, code, actor.PlayerID(), a.VotedFor)
		}

	case domain.ActionWordGuessed:
		var a domain.WordGuessedAction
		if err = json.Unmarshal(env.Raw, &a); err == nil {
			err = d.games.GuessWord(ctx, code, actor.PlayerID(), a.GuessedWord)
		}

	case domain.ActionNextRound:
		err = d.games.NextRound(ctx, code, actor.PlayerID())

	case domain.ActionSettingsUpdated:
		var a domain.SettingsUpdatedAction
		if err = json.Unmarshal(env.Raw, &a); err == nil {
			err = d.games.UpdateSettings(ctx, code, actor.PlayerID(), a.SettingsUpdate)
		}

	default:
		d.hub.BroadcastEvent(code, string(MessageTypeAction), env.Raw)
		return
	}

	if err != nil {
		d.sendError(actor, err)
	}
}

// HandleChat persists one chat message and relays it to the room.
func (d *Dispatcher) HandleChat(ctx context.Context, actor Actor, content string) {
	code := actor.GameCode()
	if code == "" || content == "" {
		return
	}

	msg, err := d.chat.Send(ctx, code, actor.PlayerID(), content)
	if err != nil {
		d.sendError(actor, err)
		return
	}
	d.hub.BroadcastEvent(code, string(MessageTypeNewMessage), NewMessagePayload{Message: msg})
}

// HandleGetMessages sends the chat history back to the requester only.
func (d *Dispatcher) HandleGetMessages(ctx context.Context, actor Actor) {
	code := actor.GameCode()
	if code == "" {
		return
	}

	msgs, err := d.chat.History(ctx, code)
	if err != nil {
		d.sendError(actor, err)
		return
	}
	d.sendTo(actor, MessageTypeMessages, MessagesPayload{Messages: msgs})
}

// HandleDisconnect removes the player from the room and the session. The last
// player leaving tears the session down along with its timer.
func (d *Dispatcher) HandleDisconnect(ctx context.Context, actor Actor) {
	code := actor.GameCode()
	if code == "" {
		return
	}
	d.hub.Leave(code, actor)

	session, deleted, err := d.sessions.Leave(ctx, code, actor.PlayerID())
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) && !errors.Is(err, domain.ErrParticipantNotFound) {
			d.logger.Warn("disconnect cleanup failed",
				zap.String("code", code),
				zap.String("playerId", actor.PlayerID()),
				zap.Error(err))
		}
		return
	}

	if deleted {
		d.timers.Stop(code)
		d.hub.BroadcastEvent(code, string(MessageTypeGameDeleted), GameDeletedPayload{GameCode: code})
		return
	}

	d.hub.BroadcastSession(code, session)
	d.hub.BroadcastEvent(code, string(MessageTypeAction), domain.PlayerLeftAction{
		Type:     domain.ActionPlayerLeft,
		PlayerID: actor.PlayerID(),
	})
}

func (d *Dispatcher) sendTo(actor Actor, msgType MessageType, payload any) {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		d.logger.Warn("failed to encode message", zap.String("type", string(msgType)), zap.Error(err))
		return
	}
	actor.Send(msg)
}

func (d *Dispatcher) sendError(actor Actor, err error) {
	d.sendErrorCode(actor, errorCode(err), err.Error())
}

func (d *Dispatcher) sendErrorCode(actor Actor, code, message string) {
	d.sendTo(actor, MessageTypeError, ErrorPayload{Code: code, Message: message})
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return "GAME_NOT_FOUND"
	case errors.Is(err, domain.ErrSessionFull):
		return "GAME_FULL"
	case errors.Is(err, domain.ErrGameInProgress):
		return "GAME_IN_PROGRESS"
	case errors.Is(err, domain.ErrParticipantNotFound):
		return "PLAYER_NOT_FOUND"
	case errors.Is(err, domain.ErrNotHost):
		return "NOT_HOST"
	case errors.Is(err, domain.ErrNotEnoughPlayers):
		return "NOT_ENOUGH_PLAYERS"
	case errors.Is(err, domain.ErrNotAlive):
		return "NOT_ALIVE"
	case errors.Is(err, domain.ErrNotImpostor):
		return "NOT_IMPOSTOR"
	case errors.Is(err, domain.ErrNoWordSet):
		return "NO_WORD_SET"
	case errors.Is(err, domain.ErrAlreadyGaveClue):
		return "ALREADY_GAVE_CLUE"
	case errors.Is(err, domain.ErrAlreadyVoted):
		return "ALREADY_VOTED"
	case errors.Is(err, domain.ErrInvalidPhase):
		return "INVALID_PHASE"
	default:
		return "INTERNAL_ERROR"
	}
}
