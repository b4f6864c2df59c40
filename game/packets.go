package game

import (
	"encoding/json"
	"time"
)

// ClientPacket is one inbound JSON frame from a player's websocket.
type ClientPacket struct {
	Type   string `json:"type"`
	Target string `json:"target,omitempty"`
	Text   string `json:"text,omitempty"`
}

const (
	ActionStartGame     = "start_game"
	ActionStartVote     = "start_vote"
	ActionVote          = "vote"
	ActionDoctorVote    = "doctor_vote"
	ActionDetectiveVote = "detective_vote"
	ActionChat          = "chat"
	ActionLeave         = "leave"
)

type PlayerInfo struct {
	Name    string `json:"name"`
	Alive   bool   `json:"alive"`
	Creator bool   `json:"creator,omitempty"`
}

// ServerPacket is the single outbound frame shape; Type selects which of the
// optional fields carry meaning.
type ServerPacket struct {
	Type       string       `json:"type"`
	LobbyId    string       `json:"lobby_id,omitempty"`
	Players    []PlayerInfo `json:"players,omitempty"`
	Name       string       `json:"name,omitempty"`
	Role       string       `json:"role,omitempty"`
	Phase      string       `json:"phase,omitempty"`
	DurationMs int64        `json:"duration_ms,omitempty"`
	Kind       string       `json:"kind,omitempty"`
	SessionId  string       `json:"session_id,omitempty"`
	Eligible   []string     `json:"eligible,omitempty"`
	Eliminated string       `json:"eliminated,omitempty"`
	Winner     string       `json:"winner,omitempty"`
	IsMafia    *bool        `json:"is_mafia,omitempty"`
	From       string       `json:"from,omitempty"`
	Text       string       `json:"text,omitempty"`
	Error      string       `json:"error,omitempty"`
}

func marshalPacket(p *ServerPacket) []byte {
	data, err := json.Marshal(p)
	if err != nil {
		panic(err)
	}
	return data
}

func MakePacketLobbyCreated(lobbyId string, players []PlayerInfo) []byte {
	return marshalPacket(&ServerPacket{Type: "lobby_created", LobbyId: lobbyId, Players: players})
}

func MakePacketLobbyUpdate(lobbyId string, players []PlayerInfo) []byte {
	return marshalPacket(&ServerPacket{Type: "lobby_update", LobbyId: lobbyId, Players: players})
}

func MakePacketLobbyReady(lobbyId string) []byte {
	return marshalPacket(&ServerPacket{Type: "lobby_ready", LobbyId: lobbyId})
}

func MakePacketRoleAssigned(role Role) []byte {
	return marshalPacket(&ServerPacket{Type: "role_assigned", Role: role.String()})
}

func MakePacketPhaseChanged(phase Phase, duration time.Duration) []byte {
	return marshalPacket(&ServerPacket{Type: "phase_changed", Phase: phase.String(), DurationMs: duration.Milliseconds()})
}

func MakePacketVotingOpened(kind VoteKind, sessionId string, eligible []string) []byte {
	return marshalPacket(&ServerPacket{Type: "voting_opened", Kind: kind.String(), SessionId: sessionId, Eligible: eligible})
}

func MakePacketVotingConcluded(eliminated string, winner Winner) []byte {
	packet := &ServerPacket{Type: "voting_concluded", Eliminated: eliminated}
	if winner != WinnerNone {
		packet.Winner = winner.String()
	}
	return marshalPacket(packet)
}

func MakePacketInvestigationResult(name string, isMafia bool) []byte {
	return marshalPacket(&ServerPacket{Type: "investigation_result", Name: name, IsMafia: &isMafia})
}

func MakePacketChat(from, text string) []byte {
	return marshalPacket(&ServerPacket{Type: "chat", From: from, Text: text})
}

func MakePacketError(msg string) []byte {
	return marshalPacket(&ServerPacket{Type: "error", Error: msg})
}
