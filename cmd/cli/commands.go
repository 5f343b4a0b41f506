package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(tournamentCmd)
	rootCmd.AddCommand(badgesCmd)

	sessionCmd.AddCommand(sessionCreateCmd, sessionShowCmd, sessionCheckInCmd, sessionCheckOutCmd, sessionImportCmd)
	sessionCreateCmd.Flags().String("starts-at", "", "Session start in RFC3339, defaults to now")
	sessionImportCmd.Flags().String("match", "", "Playtomic match to import players from")
	sessionImportCmd.Flags().String("from", "", "Import every club booking from this start date (2006-01-02T15:04:05)")

	tournamentCmd.AddCommand(tournamentShowCmd, tournamentSetupCmd, tournamentRecordCmd, tournamentEndCmd)
	tournamentSetupCmd.Flags().String("mode", "FAIR", "Team mode, FAIR or RANDOM")
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/health", nil)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/metrics", nil)
	},
}

var badgesCmd = &cobra.Command{
	Use:   "badges <player-id>",
	Short: "List the badges a player has earned",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/players/"+args[0]+"/badges", nil)
	},
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage sessions and who is present",
}

var sessionCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		startsAt, _ := cmd.Flags().GetString("starts-at")
		if startsAt == "" {
			startsAt = time.Now().UTC().Format(time.RFC3339)
		}
		return performRequest(http.MethodPost, "/sessions", map[string]string{"name": args[0], "startsAt": startsAt})
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show a session and its present attendees",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := performRequest(http.MethodGet, "/sessions/"+args[0], nil); err != nil {
			return err
		}
		return performRequest(http.MethodGet, "/sessions/"+args[0]+"/attendees", nil)
	},
}

var sessionCheckInCmd = &cobra.Command{
	Use:   "check-in <session-id> <player-id>...",
	Short: "Mark players present",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, playerID := range args[1:] {
			if err := performRequest(http.MethodPut, "/sessions/"+args[0]+"/attendees/"+playerID, nil); err != nil {
				return err
			}
		}
		return nil
	},
}

var sessionCheckOutCmd = &cobra.Command{
	Use:   "check-out <session-id> <player-id>...",
	Short: "Mark players absent",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, playerID := range args[1:] {
			if err := performRequest(http.MethodDelete, "/sessions/"+args[0]+"/attendees/"+playerID, nil); err != nil {
				return err
			}
		}
		return nil
	},
}

var sessionImportCmd = &cobra.Command{
	Use:   "import <session-id>",
	Short: "Check in the players of Playtomic bookings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		matchID, _ := cmd.Flags().GetString("match")
		from, _ := cmd.Flags().GetString("from")
		if matchID == "" && from == "" {
			return fmt.Errorf("one of --match or --from is required")
		}
		return performRequest(http.MethodPost, "/sessions/"+args[0]+"/attendance/playtomic",
			map[string]string{"matchId": matchID, "fromStartDate": from})
	},
}

var tournamentCmd = &cobra.Command{
	Use:   "tournament",
	Short: "Run the tournament of a session",
}

var tournamentShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show the latest tournament of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/sessions/"+args[0]+"/tournament", nil)
	},
}

var tournamentSetupCmd = &cobra.Command{
	Use:   "setup <session-id>",
	Short: "Form teams from the present attendees and start a tournament",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("mode")
		return performRequest(http.MethodPost, "/sessions/"+args[0]+"/tournament", map[string]string{"teamMode": mode})
	},
}

var tournamentRecordCmd = &cobra.Command{
	Use:   "record <session-id> <tournament-id> <match-id> <score-a> <score-b>",
	Short: "Record one game of a match",
	Args:  cobra.ExactArgs(5),
	RunE: func(cmd *cobra.Command, args []string) error {
		scoreA, err := strconv.Atoi(args[3])
		if err != nil {
			return fmt.Errorf("invalid score-a: %w", err)
		}
		scoreB, err := strconv.Atoi(args[4])
		if err != nil {
			return fmt.Errorf("invalid score-b: %w", err)
		}
		endpoint := fmt.Sprintf("/sessions/%s/tournaments/%s/matches/%s/games", args[0], args[1], args[2])
		return performRequest(http.MethodPost, endpoint, map[string]int{"scoreA": scoreA, "scoreB": scoreB})
	},
}

var tournamentEndCmd = &cobra.Command{
	Use:   "end <session-id>",
	Short: "End the active tournament of a session early",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/sessions/"+args[0]+"/tournament/end", nil)
	},
}

func performRequest(method, endpoint string, payload any) error {
	url := host + endpoint
	if dryRun {
		url += "?dry_run=true"
	}
	fmt.Printf("Making %s request to %s\n", method, url)

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(respBody))

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("server answered %s", resp.Status)
	}
	return nil
}
