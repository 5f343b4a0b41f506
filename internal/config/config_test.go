package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(lookupFrom(map[string]string{"DB_NAME": "ladder.db", "PORT": "8080"}))

	require.NoError(t, err)
	assert.Equal(t, "ladder.db", cfg.DBName)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, EventsBackendLocal, cfg.Events.Backend)
	assert.Equal(t, 3, cfg.Tournament.BestOf)
	assert.True(t, cfg.Slack.DryRun())
}

func TestLoad_MissingRequired(t *testing.T) {
	_, err := load(lookupFrom(map[string]string{"PORT": "8080"}))

	assert.ErrorContains(t, err, "DB_NAME")
}

func TestLoad_Backends(t *testing.T) {
	base := func(extra map[string]string) map[string]string {
		env := map[string]string{"DB_NAME": ":memory:", "PORT": "8080"}
		for k, v := range extra {
			env[k] = v
		}
		return env
	}

	_, err := load(lookupFrom(base(map[string]string{"EVENTS_BACKEND": "pubsub"})))
	assert.ErrorContains(t, err, "GCP_PROJECT")

	cfg, err := load(lookupFrom(base(map[string]string{"EVENTS_BACKEND": "pubsub", "GCP_PROJECT": "padel"})))
	require.NoError(t, err)
	assert.Equal(t, "padel", cfg.ProjectID)

	cfg, err = load(lookupFrom(base(map[string]string{"EVENTS_BACKEND": "inngest", "INNGEST_DEV": "true"})))
	require.NoError(t, err)
	assert.Equal(t, "ladder", cfg.Inngest.AppID)
	assert.True(t, cfg.Inngest.Dev)

	_, err = load(lookupFrom(base(map[string]string{"EVENTS_BACKEND": "kafka"})))
	assert.Error(t, err)
}

func TestLoad_BestOf(t *testing.T) {
	env := map[string]string{"DB_NAME": ":memory:", "PORT": "8080", "TOURNAMENT_BEST_OF": "5"}
	cfg, err := load(lookupFrom(env))
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Tournament.BestOf)

	for _, bad := range []string{"4", "0", "-3", "three"} {
		env["TOURNAMENT_BEST_OF"] = bad
		_, err := load(lookupFrom(env))
		assert.Error(t, err, "TOURNAMENT_BEST_OF=%s", bad)
	}
}
