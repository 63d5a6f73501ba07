package domain

import "errors"

// Session errors
var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionFull         = errors.New("session is full")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrGameInProgress      = errors.New("game is in progress")
)

// Action validation errors
var (
	ErrNotHost              = errors.New("only the host can perform this action")
	ErrNotEnoughPlayers     = errors.New("at least 3 participants are required")
	ErrNotAlive             = errors.New("participant is not alive")
	ErrNotImpostor          = errors.New("only the impostor can perform this action")
	ErrNoWordSet            = errors.New("no word set for this round")
	ErrAlreadyGaveClue      = errors.New("clue already submitted this round")
	ErrAlreadyVoted         = errors.New("vote already cast this round")
	ErrInvalidPhase         = errors.New("action not valid in the current phase")
	ErrNoAliveParticipants  = errors.New("no alive participants")
)
