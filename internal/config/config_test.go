package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/wgtracker/internal/errs"
	"github.com/steveyegge/wgtracker/internal/types"
)

const validYAML = `
github_token: secret
wg_repo: w3c/csswg-drafts
decisions_repo: w3c/csswg-decisions
state_directory: /var/lib/wg-tracker
start_date: 2019-01-01
bugzilla:
  api_key: bz-key
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.GitHubToken)
	assert.Equal(t, types.Repo{Owner: "w3c", Name: "csswg-drafts"}, cfg.WGRepoRef())
	assert.Equal(t, types.Repo{Owner: "w3c", Name: "csswg-decisions"}, cfg.DecisionsRepoRef())
	assert.Equal(t, time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC), cfg.StartTime())

	// Defaults survive a partial file
	assert.Equal(t, DefaultGitHubEndpoint, cfg.GitHub.Endpoint)
	assert.Equal(t, DefaultRequestsPerSecond, cfg.GitHub.RequestsPerSecond)
	assert.Equal(t, DefaultBugzillaURL, cfg.Bugzilla.URL)
	assert.Equal(t, "bz-key", cfg.Bugzilla.APIKey)
	assert.True(t, cfg.History)
	assert.Equal(t, DefaultHistoryRetentionConfig(), cfg.HistoryRetention)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindConfig))
}

func TestLoadMalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "github_token: [unterminated"))
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindConfig))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing token", mutate: func(c *Config) { c.GitHubToken = "" }, wantErr: "github_token is required"},
		{name: "bad wg repo", mutate: func(c *Config) { c.WGRepo = "csswg-drafts" }, wantErr: "wg_repo value must have 'owner/repo' syntax"},
		{name: "bad decisions repo", mutate: func(c *Config) { c.DecisionsRepo = "a/b/c" }, wantErr: "decisions_repo value must have 'owner/repo' syntax"},
		{name: "bad date syntax", mutate: func(c *Config) { c.StartDate = "2019-1-1" }, wantErr: "start_date value must have 'YYYY-MM-DD' syntax"},
		{name: "impossible date", mutate: func(c *Config) { c.StartDate = "2019-02-30" }, wantErr: "not a valid date"},
		{name: "missing state dir", mutate: func(c *Config) { c.StateDirectory = "" }, wantErr: "state_directory is required"},
		{name: "zero rate", mutate: func(c *Config) { c.GitHub.RequestsPerSecond = 0 }, wantErr: "requests_per_second must be positive"},
		{name: "bad retention", mutate: func(c *Config) { c.HistoryRetention.RetentionDays = -1 }, wantErr: "retention_days must be between 0 and 3650"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(validYAML))
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("WGT_GITHUB_TOKEN", "from-env")
	t.Setenv("WGT_BUGZILLA_API_KEY", "bz-env")
	t.Setenv("WGT_STATE_DIRECTORY", "/tmp/state")
	t.Setenv("WGT_HISTORY", "false")
	t.Setenv("WGT_HISTORY_RETENTION_DAYS", "7")

	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.GitHubToken)
	assert.Equal(t, "bz-env", cfg.Bugzilla.APIKey)
	assert.Equal(t, "/tmp/state", cfg.StateDirectory)
	assert.False(t, cfg.History)
	assert.Equal(t, 7, cfg.HistoryRetention.RetentionDays)
}

func TestApplyEnvInvalid(t *testing.T) {
	t.Setenv("WGT_HISTORY", "maybe")

	_, err := Load(writeConfig(t, validYAML))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid value for WGT_HISTORY")
}

func TestResolvedPolicyURL(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)
	assert.Equal(t, "https://raw.githubusercontent.com/w3c/csswg-decisions/master/config.toml", cfg.ResolvedPolicyURL())

	cfg.PolicyURL = "https://example.com/policy.toml"
	assert.Equal(t, "https://example.com/policy.toml", cfg.ResolvedPolicyURL())
}

func TestHistoryRetentionConfig(t *testing.T) {
	cfg := DefaultHistoryRetentionConfig()
	assert.True(t, cfg.Enabled())
	assert.Equal(t, 90*24*time.Hour, cfg.Retention())
	assert.Equal(t, "HistoryRetentionConfig{RetentionDays: 90, CleanupBatchSize: 1000}", cfg.String())

	cfg.RetentionDays = 0
	assert.False(t, cfg.Enabled())
	assert.NoError(t, cfg.Validate())

	cfg.CleanupBatchSize = 50
	assert.Error(t, cfg.Validate())
}
