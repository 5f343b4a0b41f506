package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/ladder/internal/badges"
	"github.com/mauv0809/ladder/internal/events"
	"github.com/mauv0809/ladder/internal/metrics"
	"github.com/mauv0809/ladder/internal/notifier"
	"github.com/slack-go/slack"
	"golang.org/x/time/rate"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier posts tournament announcements to a Slack channel.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
	limiter   *rate.Limiter
}

// Slack allows roughly one message per second per channel.
const postInterval = time.Second

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	return NewNotifierWithAPI(slack.New(token), channelID, metrics)
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
		limiter:   rate.NewLimiter(rate.Every(postInterval), 1),
	}
}

func (s *Notifier) sendMessage(ctx context.Context, message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.limiter.Wait(ctx); err != nil {
		s.metrics.IncSlackNotifFailed()
		return "", "", fmt.Errorf("rate limited: %w", err)
	}

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

func (s *Notifier) SendTournamentStarted(ctx context.Context, event events.TournamentStarted, dryRun bool) error {
	_, _, err := s.sendMessage(ctx, s.formatTournamentStarted(event), dryRun)
	return err
}

func (s *Notifier) SendStageAdvanced(ctx context.Context, event events.StageAdvanced, dryRun bool) error {
	_, _, err := s.sendMessage(ctx, s.formatStageAdvanced(event), dryRun)
	return err
}

func (s *Notifier) SendTournamentCompleted(ctx context.Context, event events.TournamentCompleted, dryRun bool) error {
	_, _, err := s.sendMessage(ctx, s.formatTournamentCompleted(event), dryRun)
	return err
}

func (s *Notifier) SendTournamentEnded(ctx context.Context, event events.TournamentEnded, dryRun bool) error {
	_, _, err := s.sendMessage(ctx, s.formatTournamentEnded(event), dryRun)
	return err
}

func (s *Notifier) SendBadgesAwarded(ctx context.Context, playerName string, awarded []badges.Badge, dryRun bool) error {
	if len(awarded) == 0 {
		return nil
	}
	_, _, err := s.sendMessage(ctx, s.formatBadgesAwarded(playerName, awarded), dryRun)
	return err
}

func header(text string) slack.Block {
	return slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", text, true, false))
}

func section(text string) slack.Block {
	return slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", text, true, false), nil, nil)
}

// stageLabel turns ROUND_ROBIN into "Round robin".
func stageLabel(stage string) string {
	words := strings.ToLower(strings.ReplaceAll(stage, "_", " "))
	if words == "" {
		return words
	}
	return strings.ToUpper(words[:1]) + words[1:]
}

func (s *Notifier) formatTournamentStarted(event events.TournamentStarted) slack.Message {
	blocks := []slack.Block{header("🎾 Tournament on! 🎾")}

	format := stageLabel(event.Stage)
	if event.SpecialMode == "MIXED_ROUND_ROBIN" {
		format = "Mixed round robin"
	}
	blocks = append(blocks, section(fmt.Sprintf("Format: %s\nTeams: %s", format, stageLabel(event.TeamMode))))

	if len(event.TeamNames) > 0 {
		lines := make([]string, 0, len(event.TeamNames))
		for _, name := range event.TeamNames {
			lines = append(lines, "• "+name)
		}
		blocks = append(blocks, section("Teams:\n"+strings.Join(lines, "\n")))
	}
	return slack.NewBlockMessage(blocks...)
}

func (s *Notifier) formatStageAdvanced(event events.StageAdvanced) slack.Message {
	return slack.NewBlockMessage(
		header("⏭️ Next stage"),
		section(fmt.Sprintf("%s is done. Up next: %s", stageLabel(event.From), stageLabel(event.To))),
	)
}

func (s *Notifier) formatTournamentCompleted(event events.TournamentCompleted) slack.Message {
	winner := event.WinnerTeamName
	if winner == "" {
		winner = event.WinnerTeamID
	}
	return slack.NewBlockMessage(
		header("🏆 We have a winner! 🏆"),
		section(fmt.Sprintf("%s won the tournament!", winner)),
	)
}

func (s *Notifier) formatTournamentEnded(event events.TournamentEnded) slack.Message {
	return slack.NewBlockMessage(
		header("🛑 Tournament ended"),
		section("The tournament was ended early. No winner this time."),
	)
}

func (s *Notifier) formatBadgesAwarded(playerName string, awarded []badges.Badge) slack.Message {
	labels := make([]string, 0, len(awarded))
	for _, b := range awarded {
		labels = append(labels, "• "+stageLabel(string(b)))
	}
	blocks := []slack.Block{
		header("🎖️ New badge!"),
		section(fmt.Sprintf("%s earned:\n%s", playerName, strings.Join(labels, "\n"))),
	}
	return slack.NewBlockMessage(blocks...)
}
