package game

import "errors"

var (
	ErrLobbyNotFound      = errors.New("lobby-not-found")
	ErrLobbyFull          = errors.New("lobby-full")
	ErrGameStarted        = errors.New("game-already-started")
	ErrNotCreator         = errors.New("not-creator")
	ErrNotEnoughPlayers   = errors.New("not-enough-players")
	ErrInvalidPlayerCount = errors.New("invalid-player-count")
)

var ErrSendBufferFull = errors.New("send-buffer-full")

// Vote rejections are warnings, not failures: a bad cast is logged and
// dropped, the session stays as it was.
var (
	errNoSession        = errors.New("no-open-session")
	errAlreadyVoted     = errors.New("already-voted")
	errIneligibleVoter  = errors.New("ineligible-voter")
	errIneligibleTarget = errors.New("ineligible-target")
)
