package playtomic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rafa-garcia/go-playtomic-api/client"
	"github.com/rafa-garcia/go-playtomic-api/models"
)

const startLayout = "2006-01-02T15:04:05"

// APIClient talks to the public Playtomic API.
type APIClient struct {
	httpClient *http.Client
	apiClient  *client.Client
	BaseURL    string
}

var _ PlaytomicClient = (*APIClient)(nil)

func NewClient() *APIClient {
	return &APIClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiClient: client.NewClient(
			client.WithTimeout(10*time.Second),
			client.WithRetries(3),
		),
		BaseURL: "https://api.playtomic.io",
	}
}

// GetMatches pages through the search endpoint until a short page is returned.
func (c *APIClient) GetMatches(ctx context.Context, params *SearchMatchesParams) ([]MatchSummary, error) {
	const pageSize = 300
	var (
		all  []MatchSummary
		page = 0
	)
	for {
		matches, err := c.apiClient.GetMatches(ctx, &models.SearchMatchesParams{
			SportID:       params.SportID,
			HasPlayers:    params.HasPlayers,
			Sort:          params.Sort,
			TenantIDs:     params.TenantIDs,
			FromStartDate: params.FromStartDate,
			Size:          pageSize,
			Page:          page,
		})
		if err != nil {
			return nil, fmt.Errorf("error fetching matches from playtomic api: %w", err)
		}
		for _, m := range matches {
			all = append(all, MatchSummary{MatchID: m.MatchID, OwnerID: m.OwnerID})
		}
		log.Debug("Fetched Playtomic matches page", "page", page, "count", len(matches))
		if len(matches) < pageSize {
			break
		}
		page++
	}
	log.Info("Fetched Playtomic matches", "count", len(all))
	return all, nil
}

// GetBooking fetches a single booking with its roster.
func (c *APIClient) GetBooking(ctx context.Context, matchID string) (Booking, error) {
	url := fmt.Sprintf("%s/v1/matches/%s", c.BaseURL, matchID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Booking{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "PlaytomicGoClient/1.0")

	log.Debug("Requesting booking from Playtomic API", "url", url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Booking{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Error("Received non-OK HTTP status from Playtomic API", "status", resp.StatusCode, "body", string(body))
		return Booking{}, fmt.Errorf("received non-OK HTTP status: %d", resp.StatusCode)
	}

	var body bookingResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Booking{}, fmt.Errorf("failed to decode response: %w", err)
	}

	booking := Booking{
		MatchID:      matchID,
		OwnerID:      body.OwnerID,
		ResourceName: body.ResourceName,
		GameStatus:   parseGameStatus(body.GameStatus),
	}
	if body.StartDate != "" {
		start, err := time.Parse(startLayout, body.StartDate)
		if err != nil {
			return Booking{}, fmt.Errorf("failed to parse start time: %w", err)
		}
		booking.Start = start.Unix()
	}
	for _, rt := range body.Teams {
		team := Team{ID: rt.TeamID}
		for _, rp := range rt.Players {
			p := Player{UserID: rp.UserID, Name: rp.Name}
			if rp.LevelValue != nil {
				p.Level = *rp.LevelValue
			}
			team.Players = append(team.Players, p)
		}
		booking.Teams = append(booking.Teams, team)
	}
	return booking, nil
}

func parseGameStatus(s string) GameStatus {
	switch GameStatus(s) {
	case GameStatusPending, GameStatusPlayed, GameStatusCanceled, GameStatusWaitingFor, GameStatusExpired:
		return GameStatus(s)
	default:
		log.Warn("Unknown game status received from Playtomic API", "status", s)
		return GameStatusUnknown
	}
}
