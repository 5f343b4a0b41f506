package events

import "context"

// EventType is the topic an event is published on.
type EventType string

const (
	EventTournamentStarted   EventType = "tournament-started"
	EventStageAdvanced       EventType = "tournament-stage-advanced"
	EventTournamentCompleted EventType = "tournament-completed"
	EventTournamentEnded     EventType = "tournament-ended"
)

// Topics lists every event type, in lifecycle order.
var Topics = []EventType{
	EventTournamentStarted,
	EventStageAdvanced,
	EventTournamentCompleted,
	EventTournamentEnded,
}

// Handler consumes the encoded payload of one event.
type Handler func(ctx context.Context, data []byte) error

type TournamentStarted struct {
	TournamentID string   `msgpack:"tournament_id" json:"tournamentId"`
	SessionID    string   `msgpack:"session_id" json:"sessionId"`
	Stage        string   `msgpack:"stage" json:"stage"`
	TeamMode     string   `msgpack:"team_mode" json:"teamMode"`
	SpecialMode  string   `msgpack:"special_mode" json:"specialMode"`
	TeamNames    []string `msgpack:"team_names" json:"teamNames"`
}

type StageAdvanced struct {
	TournamentID string `msgpack:"tournament_id" json:"tournamentId"`
	SessionID    string `msgpack:"session_id" json:"sessionId"`
	From         string `msgpack:"from" json:"from"`
	To           string `msgpack:"to" json:"to"`
}

type TournamentCompleted struct {
	TournamentID    string   `msgpack:"tournament_id" json:"tournamentId"`
	SessionID       string   `msgpack:"session_id" json:"sessionId"`
	WinnerTeamID    string   `msgpack:"winner_team_id" json:"winnerTeamId"`
	WinnerTeamName  string   `msgpack:"winner_team_name" json:"winnerTeamName"`
	WinnerPlayerIDs []string `msgpack:"winner_player_ids" json:"winnerPlayerIds"`
	EndedAt         int64    `msgpack:"ended_at" json:"endedAt"`
}

type TournamentEnded struct {
	TournamentID string `msgpack:"tournament_id" json:"tournamentId"`
	SessionID    string `msgpack:"session_id" json:"sessionId"`
	Stage        string `msgpack:"stage" json:"stage"`
	EndedAt      int64  `msgpack:"ended_at" json:"endedAt"`
}
