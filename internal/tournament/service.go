package tournament

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mauv0809/ladder/internal/attendance"
	"github.com/mauv0809/ladder/internal/events"
	"github.com/mauv0809/ladder/internal/metrics"
)

// Service runs tournaments for sessions. Writes for a session are serialized
// and every write happens in a single repository transaction. Events are
// published only after the transaction commits.
type Service struct {
	repo       Repository
	attendance AttendanceSource
	games      GameRecorder
	publisher  events.Publisher
	metrics    metrics.Metrics
	bestOf     int

	now     func() time.Time
	shuffle Shuffler

	locksMu sync.Mutex
	locks   map[string]*sessionLock
}

// sessionLock serializes writes to one session. It is removed from the map
// once nobody holds or waits for it.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewService(repo Repository, attendance AttendanceSource, games GameRecorder, publisher events.Publisher, metrics metrics.Metrics, bestOf int) *Service {
	if bestOf < 1 {
		bestOf = DefaultBestOf
	}
	return &Service{
		repo:       repo,
		attendance: attendance,
		games:      games,
		publisher:  publisher,
		metrics:    metrics,
		bestOf:     bestOf,
		now:        time.Now,
		shuffle:    rand.Shuffle,
		locks:      make(map[string]*sessionLock),
	}
}

func (s *Service) lockSession(sessionID string) func() {
	s.locksMu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		s.locks[sessionID] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.locksMu.Lock()
		defer s.locksMu.Unlock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, sessionID)
		}
	}
}


func (s *Service) requireSession(ctx context.Context, sessionID string) error {
	if _, err := s.attendance.GetSession(ctx, sessionID); err != nil {
		if errors.Is(err, attendance.ErrSessionNotFound) {
			return fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
		}
		return err
	}
	return nil
}

// SetupTournament forms teams from the present attendees and creates the
// tournament with its opening matches.
func (s *Service) SetupTournament(ctx context.Context, sessionID string, mode TeamMode) (*Tournament, error) {
	unlock := s.lockSession(sessionID)
	defer unlock()

	active, err := s.repo.HasActiveTournament(ctx, s.repo.Conn())
	if err != nil {
		return nil, err
	}
	if active {
		return nil, fmt.Errorf("a tournament is already active: %w", ErrConflict)
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("unknown team mode %q: %w", mode, ErrInvalidInput)
	}
	if err := s.requireSession(ctx, sessionID); err != nil {
		return nil, err
	}
	attendees, err := s.attendance.GetPresentAttendees(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(attendees) < MinAttendees {
		return nil, fmt.Errorf("need at least %d present attendees, have %d: %w", MinAttendees, len(attendees), ErrInvalidInput)
	}

	t := &Tournament{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Status:    StatusActive,
		TeamMode:  mode,
		CreatedAt: s.now().Unix(),
	}
	teams := FormTeams(t.ID, attendees, mode, s.shuffle)
	if len(teams) < 2 {
		return nil, fmt.Errorf("need at least 2 teams, formed %d: %w", len(teams), ErrInvalidInput)
	}
	t.SpecialMode = DeriveSpecialMode(len(attendees), len(teams))
	plan := PlanInitialStage(t.ID, teams, attendees, t.SpecialMode, s.bestOf)
	t.Stage = plan.Stage

	var created *Tournament
	err = s.repo.WithTx(ctx, func(tx sqlx.ExtContext) error {
		active, err := s.repo.HasActiveTournament(ctx, tx)
		if err != nil {
			return err
		}
		if active {
			return fmt.Errorf("a tournament is already active: %w", ErrConflict)
		}
		if err := s.repo.CreateTournament(ctx, tx, t); err != nil {
			return err
		}
		if err := s.repo.CreateTeams(ctx, tx, teams); err != nil {
			return err
		}
		if err := s.repo.CreateMatches(ctx, tx, plan.Matches); err != nil {
			return err
		}
		created, err = s.repo.GetTournament(ctx, tx, t.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTournamentsStarted()
	log.Info("Tournament set up", "tournamentID", created.ID, "sessionID", sessionID, "mode", mode,
		"stage", created.Stage, "specialMode", created.SpecialMode, "teams", len(created.Teams), "matches", len(created.Matches))

	names := make([]string, 0, len(created.Teams))
	for _, team := range created.Teams {
		names = append(names, team.Name)
	}
	s.publish(ctx, events.EventTournamentStarted, events.TournamentStarted{
		TournamentID: created.ID,
		SessionID:    sessionID,
		Stage:        string(created.Stage),
		TeamMode:     string(created.TeamMode),
		SpecialMode:  string(created.SpecialMode),
		TeamNames:    names,
	})
	return created, nil
}

// RecordTournamentGame scores one game of a match and runs whatever stage
// transitions the result unlocks.
func (s *Service) RecordTournamentGame(ctx context.Context, sessionID, tournamentID, matchID string, scoreA, scoreB int) (*Tournament, error) {
	start := s.now()
	unlock := s.lockSession(sessionID)
	defer unlock()

	t, err := s.repo.GetTournament(ctx, s.repo.Conn(), tournamentID)
	if err != nil {
		return nil, err
	}
	if t.SessionID != sessionID {
		return nil, fmt.Errorf("tournament %s in session %s: %w", tournamentID, sessionID, ErrNotFound)
	}
	if t.Status != StatusActive {
		return nil, fmt.Errorf("tournament %s is %s: %w", tournamentID, t.Status, ErrInvalidState)
	}
	m, ok := t.Match(matchID)
	if !ok {
		return nil, fmt.Errorf("match %s: %w", matchID, ErrNotFound)
	}
	if m.IsComplete {
		return nil, fmt.Errorf("match %s is already complete: %w", matchID, ErrInvalidState)
	}
	if scoreA == scoreB {
		return nil, fmt.Errorf("a game cannot end in a tie: %w", ErrInvalidInput)
	}

	// Attendance reads stay outside the transaction.
	players, err := s.finalistRoster(ctx, t)
	if err != nil {
		return nil, err
	}

	var (
		result      *Tournament
		transitions []*Transition
	)
	err = s.repo.WithTx(ctx, func(tx sqlx.ExtContext) error {
		game, err := ApplyGame(m, scoreA, scoreB)
		if err != nil {
			return err
		}
		gameID, err := s.games.CreateScoredGame(ctx, tx, t.SessionID, m.TeamAPlayerIDs, m.TeamBPlayerIDs, scoreA, scoreB)
		if err != nil {
			return fmt.Errorf("failed to record game: %w", err)
		}
		link := MatchGame{TournamentMatchID: m.ID, GameID: gameID, GameNumber: game.GameNumber, ScoreA: scoreA, ScoreB: scoreB}
		if err := s.repo.LinkGame(ctx, tx, link); err != nil {
			return err
		}
		m.Games = append(m.Games, link)
		if err := s.repo.UpdateMatch(ctx, tx, m); err != nil {
			return err
		}
		if game.Completed && m.Stage == MatchStageRoundRobin {
			if err := s.recordStanding(ctx, tx, t, m); err != nil {
				return err
			}
		}
		transitions, err = s.advance(ctx, tx, t, players)
		if err != nil {
			return err
		}
		result, err = s.repo.GetTournament(ctx, tx, t.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncGamesRecorded()
	s.metrics.ObserveGameRecordDuration(s.now().Sub(start).Seconds())
	log.Info("Recorded tournament game", "tournamentID", tournamentID, "matchID", matchID,
		"scoreA", scoreA, "scoreB", scoreB, "stage", result.Stage, "status", result.Status)

	s.announce(ctx, result, transitions)
	return result, nil
}

// finalistRoster is only needed when a mixed round robin may produce finalists.
func (s *Service) finalistRoster(ctx context.Context, t *Tournament) (map[string]attendance.Attendee, error) {
	roster := map[string]attendance.Attendee{}
	if t.SpecialMode != SpecialModeMixedRoundRobin || t.Stage != StageRoundRobin {
		return roster, nil
	}
	seen := map[string]bool{}
	var ids []string
	for _, m := range t.MatchesIn(MatchStageRoundRobin) {
		for _, id := range append(append(PlayerIDs{}, m.TeamAPlayerIDs...), m.TeamBPlayerIDs...) {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	players, err := s.attendance.GetPlayers(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range players {
		roster[p.ID] = p
	}
	return roster, nil
}

// recordStanding credits a finished round robin series to persisted teams.
func (s *Service) recordStanding(ctx context.Context, tx sqlx.ExtContext, t *Tournament, m *Match) error {
	winnerSide := SeriesWinner(*m)
	loserSide := SideB
	if winnerSide == SideB {
		loserSide = SideA
	}
	for _, entry := range []struct {
		side MatchSide
		won  bool
	}{
		{m.Side(winnerSide), true},
		{m.Side(loserSide), false},
	} {
		switch side := entry.side.(type) {
		case PersistedTeam:
			team, ok := t.Team(side.TeamID)
			if !ok {
				return fmt.Errorf("team %s of match %s: %w", side.TeamID, m.ID, ErrNotFound)
			}
			if entry.won {
				team.Wins++
			} else {
				team.Losses++
			}
			if err := s.repo.UpdateTeamRecord(ctx, tx, team); err != nil {
				return err
			}
		case AdHocRoster:
			// Mixed formats rank pairs from match history instead.
		}
	}
	return nil
}

// advance runs the round robin, bracket and finals checks in that order.
func (s *Service) advance(ctx context.Context, tx sqlx.ExtContext, t *Tournament, players map[string]attendance.Attendee) ([]*Transition, error) {
	now := s.now().Unix()
	checks := []func() (*Transition, error){
		func() (*Transition, error) { return FinalizeRoundRobin(t, players, s.bestOf) },
		func() (*Transition, error) { return AdvanceBracket(t, s.bestOf, now), nil },
		func() (*Transition, error) { return FinalizeFinals(t, now), nil },
	}

	var applied []*Transition
	for _, check := range checks {
		tr, err := check()
		if err != nil {
			return nil, err
		}
		if tr == nil {
			continue
		}
		if err := s.applyTransition(ctx, tx, t, tr); err != nil {
			return nil, err
		}
		applied = append(applied, tr)
	}
	return applied, nil
}

func (s *Service) applyTransition(ctx context.Context, tx sqlx.ExtContext, t *Tournament, tr *Transition) error {
	if tr.PurgeBracket {
		if err := s.repo.DeleteMatchesByStage(ctx, tx, t.ID, MatchStageBracket); err != nil {
			return err
		}
	}
	if err := s.repo.CreateTeams(ctx, tx, tr.NewTeams); err != nil {
		return err
	}
	if err := s.repo.CreateMatches(ctx, tx, tr.NewMatches); err != nil {
		return err
	}
	tr.Apply(t)
	if err := s.repo.UpdateTournament(ctx, tx, t); err != nil {
		return err
	}
	log.Debug("Applied tournament transition", "tournamentID", t.ID, "from", tr.From, "stage", t.Stage,
		"newMatches", len(tr.NewMatches), "newTeams", len(tr.NewTeams))
	return nil
}

func (s *Service) announce(ctx context.Context, t *Tournament, transitions []*Transition) {
	for _, tr := range transitions {
		if tr.Stage == "" || tr.Stage == tr.From {
			continue
		}
		s.metrics.IncStageTransitions(string(tr.From), string(tr.Stage))
		if tr.Completes() {
			continue
		}
		s.publish(ctx, events.EventStageAdvanced, events.StageAdvanced{
			TournamentID: t.ID,
			SessionID:    t.SessionID,
			From:         string(tr.From),
			To:           string(tr.Stage),
		})
	}

	if t.Status != StatusCompleted || t.WinnerTeamID == nil {
		return
	}
	completed := false
	for _, tr := range transitions {
		completed = completed || tr.Completes()
	}
	if !completed {
		return
	}
	s.metrics.IncTournamentsFinished(string(StatusCompleted))
	winner, _ := t.Team(*t.WinnerTeamID)
	payload := events.TournamentCompleted{
		TournamentID: t.ID,
		SessionID:    t.SessionID,
		WinnerTeamID: *t.WinnerTeamID,
	}
	if winner != nil {
		payload.WinnerTeamName = winner.Name
		payload.WinnerPlayerIDs = winner.PlayerIDs()
	}
	if t.EndedAt != nil {
		payload.EndedAt = *t.EndedAt
	}
	log.Info("Tournament completed", "tournamentID", t.ID, "winner", payload.WinnerTeamName)
	s.publish(ctx, events.EventTournamentCompleted, payload)
}

// EndTournamentEarly stops the session's active tournament without a winner.
// A tournament that already finished is returned unchanged.
func (s *Service) EndTournamentEarly(ctx context.Context, sessionID string) (*Tournament, error) {
	unlock := s.lockSession(sessionID)
	defer unlock()

	if err := s.requireSession(ctx, sessionID); err != nil {
		return nil, err
	}
	t, err := s.repo.GetLatestSessionTournament(ctx, s.repo.Conn(), sessionID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("no tournament for session %s: %w", sessionID, ErrNotFound)
	}
	if t.Status != StatusActive {
		return t, nil
	}

	endedAt := s.now().Unix()
	t.Status = StatusEnded
	t.Stage = StageEnded
	t.EndedAt = &endedAt
	err = s.repo.WithTx(ctx, func(tx sqlx.ExtContext) error {
		return s.repo.UpdateTournament(ctx, tx, t)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTournamentsFinished(string(StatusEnded))
	log.Info("Tournament ended early", "tournamentID", t.ID, "sessionID", sessionID)
	s.publish(ctx, events.EventTournamentEnded, events.TournamentEnded{
		TournamentID: t.ID,
		SessionID:    sessionID,
		Stage:        string(t.Stage),
		EndedAt:      endedAt,
	})
	return t, nil
}

// GetSessionTournament returns the most recent tournament of a session, or
// nil when it never had one.
func (s *Service) GetSessionTournament(ctx context.Context, sessionID string) (*Tournament, error) {
	if err := s.requireSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.repo.GetLatestSessionTournament(ctx, s.repo.Conn(), sessionID)
}

// publish runs after commit; failures are logged and counted but never
// undo or fail the operation.
func (s *Service) publish(ctx context.Context, topic events.EventType, payload any) {
	if err := s.publisher.SendMessage(context.WithoutCancel(ctx), topic, payload); err != nil {
		s.metrics.IncHookFailures(string(topic))
		log.Error("Failed to publish tournament event", "topic", topic, "error", err)
	}
}
