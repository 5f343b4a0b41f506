package tournament

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// DefaultBestOf is the series length of every match unless configured otherwise.
const DefaultBestOf = 3

// MinAttendees is the smallest group a tournament can be set up for.
const MinAttendees = 4

// Seeds of the two teams built from the best pairs of a mixed round robin.
const (
	finalistSeedA = 98
	finalistSeedB = 99
)

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusEnded     Status = "ENDED"
)

type Stage string

const (
	StageRoundRobin Stage = "ROUND_ROBIN"
	StageBracket    Stage = "BRACKET"
	StageFinals     Stage = "FINALS"
	StageCompleted  Stage = "COMPLETED"
	StageEnded      Stage = "ENDED"
)

type MatchStage string

const (
	MatchStageRoundRobin   MatchStage = "ROUND_ROBIN"
	MatchStageBracket      MatchStage = "BRACKET"
	MatchStageWinnersFinal MatchStage = "WINNERS_FINAL"
	MatchStageLosersFinal  MatchStage = "LOSERS_FINAL"
)

// order sorts matches of different stages in play order.
func (s MatchStage) order() int {
	switch s {
	case MatchStageRoundRobin:
		return 0
	case MatchStageBracket:
		return 1
	case MatchStageLosersFinal:
		return 2
	case MatchStageWinnersFinal:
		return 3
	default:
		return 4
	}
}

// TeamMode selects how attendees are paired into teams.
type TeamMode string

const (
	TeamModeFair   TeamMode = "FAIR"
	TeamModeRandom TeamMode = "RANDOM"
)

func (m TeamMode) Valid() bool {
	return m == TeamModeFair || m == TeamModeRandom
}

// SpecialMode flags the small-group mixed round robin.
type SpecialMode string

const (
	SpecialModeNone            SpecialMode = "NONE"
	SpecialModeMixedRoundRobin SpecialMode = "MIXED_ROUND_ROBIN"
)

// Tournament is the aggregate root. Teams and Matches are filled on hydration.
type Tournament struct {
	ID           string      `db:"id" json:"id"`
	SessionID    string      `db:"session_id" json:"sessionId"`
	Status       Status      `db:"status" json:"status"`
	TeamMode     TeamMode    `db:"team_mode" json:"teamMode"`
	Stage        Stage       `db:"stage" json:"stage"`
	SpecialMode  SpecialMode `db:"special_mode" json:"specialMode"`
	WinnerTeamID *string     `db:"winner_team_id" json:"winnerTeamId"`
	CreatedAt    int64       `db:"created_at" json:"createdAt"`
	EndedAt      *int64      `db:"ended_at" json:"endedAt"`

	Teams   []Team  `db:"-" json:"teams"`
	Matches []Match `db:"-" json:"matches"`
}

// Team returns the team with the given id.
func (t *Tournament) Team(id string) (*Team, bool) {
	for i := range t.Teams {
		if t.Teams[i].ID == id {
			return &t.Teams[i], true
		}
	}
	return nil, false
}

// Match returns the match with the given id.
func (t *Tournament) Match(id string) (*Match, bool) {
	for i := range t.Matches {
		if t.Matches[i].ID == id {
			return &t.Matches[i], true
		}
	}
	return nil, false
}

// MatchesIn returns pointers to the matches of one stage, in stored order.
func (t *Tournament) MatchesIn(stage MatchStage) []*Match {
	var out []*Match
	for i := range t.Matches {
		if t.Matches[i].Stage == stage {
			out = append(out, &t.Matches[i])
		}
	}
	return out
}

type Team struct {
	ID           string  `db:"id" json:"id"`
	TournamentID string  `db:"tournament_id" json:"tournamentId"`
	Name         string  `db:"name" json:"name"`
	Seed         int     `db:"seed" json:"seed"`
	PlayerAID    string  `db:"player_a_id" json:"playerAId"`
	PlayerBID    *string `db:"player_b_id" json:"playerBId"`
	Wins         int     `db:"wins" json:"wins"`
	Losses       int     `db:"losses" json:"losses"`
}

// PlayerIDs returns the roster of the team.
func (t Team) PlayerIDs() PlayerIDs {
	ids := PlayerIDs{t.PlayerAID}
	if t.PlayerBID != nil {
		ids = append(ids, *t.PlayerBID)
	}
	return ids
}

type Match struct {
	ID             string        `db:"id" json:"id"`
	TournamentID   string        `db:"tournament_id" json:"tournamentId"`
	Stage          MatchStage    `db:"stage" json:"stage"`
	Round          int           `db:"round" json:"round"`
	Slot           int           `db:"slot" json:"slot"`
	BestOf         int           `db:"best_of" json:"bestOf"`
	TeamAID        *string       `db:"team_a_id" json:"teamAId"`
	TeamBID        *string       `db:"team_b_id" json:"teamBId"`
	TeamAPlayerIDs PlayerIDs     `db:"team_a_player_ids" json:"teamAPlayerIds"`
	TeamBPlayerIDs PlayerIDs     `db:"team_b_player_ids" json:"teamBPlayerIds"`
	WinsA          int           `db:"wins_a" json:"winsA"`
	WinsB          int           `db:"wins_b" json:"winsB"`
	IsComplete     bool          `db:"is_complete" json:"isComplete"`
	WinnerTeamID   *string       `db:"winner_team_id" json:"winnerTeamId"`
	LoserTeamID    *string       `db:"loser_team_id" json:"loserTeamId"`
	Metadata       MatchMetadata `db:"metadata" json:"metadata"`

	Games []MatchGame `db:"-" json:"games"`
}

// IsBye reports whether the match only advances a single team.
func (m Match) IsBye() bool {
	return m.TeamAID != nil && m.TeamBID == nil
}

// MatchGame links a scored game to a match series.
type MatchGame struct {
	TournamentMatchID string `db:"tournament_match_id" json:"tournamentMatchId"`
	GameID            string `db:"game_id" json:"gameId"`
	GameNumber        int    `db:"game_number" json:"gameNumber"`
	ScoreA            int    `db:"score_a" json:"scoreA"`
	ScoreB            int    `db:"score_b" json:"scoreB"`
}

// MatchMetadata carries format details that have no column of their own.
type MatchMetadata struct {
	Format             string `json:"format,omitempty"`
	SittingOutPlayerID string `json:"sittingOutPlayerId,omitempty"`
}

const (
	formatRotation   = "ROTATION"
	formatPartitions = "PARTITIONS"
)

func (m MatchMetadata) Value() (driver.Value, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *MatchMetadata) Scan(src any) error {
	b, err := scanBytes(src)
	if err != nil || len(b) == 0 {
		return err
	}
	return json.Unmarshal(b, m)
}

// PlayerIDs is a roster stored as a JSON array.
type PlayerIDs []string

func (p PlayerIDs) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(p))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *PlayerIDs) Scan(src any) error {
	b, err := scanBytes(src)
	if err != nil {
		return err
	}
	if len(b) == 0 {
		*p = PlayerIDs{}
		return nil
	}
	return json.Unmarshal(b, (*[]string)(p))
}

// Contains reports whether the roster has the player.
func (p PlayerIDs) Contains(playerID string) bool {
	for _, id := range p {
		if id == playerID {
			return true
		}
	}
	return false
}

func scanBytes(src any) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported column type %T", src)
	}
}

// Side identifies one half of a match.
type Side int

const (
	SideA Side = iota
	SideB
)

func (s Side) String() string {
	if s == SideA {
		return "A"
	}
	return "B"
}

// MatchSide is either a persisted team or a roster formed just for one match.
type MatchSide interface {
	Players() PlayerIDs
	isMatchSide()
}

// PersistedTeam is a side backed by a Team row.
type PersistedTeam struct {
	TeamID string
	Roster PlayerIDs
}

// AdHocRoster is a side with no team identity, used by the mixed formats.
type AdHocRoster struct {
	Roster PlayerIDs
}

func (p PersistedTeam) Players() PlayerIDs { return p.Roster }
func (PersistedTeam) isMatchSide()           {}

func (a AdHocRoster) Players() PlayerIDs { return a.Roster }
func (AdHocRoster) isMatchSide()         {}

// Side returns one side of the match as a MatchSide.
func (m Match) Side(s Side) MatchSide {
	teamID, roster := m.TeamAID, m.TeamAPlayerIDs
	if s == SideB {
		teamID, roster = m.TeamBID, m.TeamBPlayerIDs
	}
	if teamID != nil {
		return PersistedTeam{TeamID: *teamID, Roster: roster}
	}
	return AdHocRoster{Roster: roster}
}

func (m Match) SideA() MatchSide { return m.Side(SideA) }
func (m Match) SideB() MatchSide { return m.Side(SideB) }
