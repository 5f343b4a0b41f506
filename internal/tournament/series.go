package tournament

import "fmt"

// GameResult is the outcome of applying one game to a series.
type GameResult struct {
	GameNumber int
	Winner     Side
	// Completed is true when this game decided the series.
	Completed bool
}

// winsNeeded is the majority of a best-of-n series.
func winsNeeded(bestOf int) int {
	return bestOf/2 + 1
}

// ApplyGame adds one game to a match series and completes it once a side has
// a majority or every game has been played.
func ApplyGame(m *Match, scoreA, scoreB int) (GameResult, error) {
	if m.IsComplete {
		return GameResult{}, fmt.Errorf("match %s is already complete: %w", m.ID, ErrInvalidState)
	}
	if scoreA < 0 || scoreB < 0 {
		return GameResult{}, fmt.Errorf("scores must not be negative: %w", ErrInvalidInput)
	}
	if scoreA == scoreB {
		return GameResult{}, fmt.Errorf("a game cannot end in a tie: %w", ErrInvalidInput)
	}

	result := GameResult{GameNumber: len(m.Games) + 1, Winner: SideA}
	if scoreA > scoreB {
		m.WinsA++
	} else {
		m.WinsB++
		result.Winner = SideB
	}

	bestOf := m.BestOf
	if bestOf < 1 {
		bestOf = 1
	}
	need := winsNeeded(bestOf)
	if m.WinsA >= need || m.WinsB >= need || m.WinsA+m.WinsB >= bestOf {
		m.IsComplete = true
		result.Completed = true
		m.WinnerTeamID, m.LoserTeamID = m.TeamAID, m.TeamBID
		if m.WinsB > m.WinsA {
			m.WinnerTeamID, m.LoserTeamID = m.TeamBID, m.TeamAID
		}
	}
	return result, nil
}

// SeriesWinner returns the side that won a complete match.
func SeriesWinner(m Match) Side {
	if m.WinsB > m.WinsA {
		return SideB
	}
	return SideA
}
