package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/steveyegge/wgtracker/internal/errs"
	"github.com/steveyegge/wgtracker/internal/types"
)

// Default endpoints.
const (
	DefaultGitHubEndpoint    = "https://api.github.com/graphql"
	DefaultBugzillaURL       = "https://bugzilla.mozilla.org"
	DefaultRequestsPerSecond = 5.0
)

var (
	repoRE = regexp.MustCompile(`^([^/]+)/([^/]+)$`)
	dateRE = regexp.MustCompile(`^(\d\d\d\d)-(\d\d)-(\d\d)$`)
)

// Config is the tracker's main configuration, loaded from the YAML file
// named on the command line.
type Config struct {
	GitHubToken    string `yaml:"github_token"`
	WGRepo         string `yaml:"wg_repo"`
	DecisionsRepo  string `yaml:"decisions_repo"`
	StateDirectory string `yaml:"state_directory"`

	// StartDate (YYYY-MM-DD) seeds both watermarks the first time the
	// tracker runs against an empty state directory.
	StartDate string `yaml:"start_date"`

	// PolicyFile, if set, is read instead of fetching PolicyURL.
	PolicyFile string `yaml:"policy_file,omitempty"`
	PolicyURL  string `yaml:"policy_url,omitempty"`

	GitHub   GitHubConfig   `yaml:"github"`
	Bugzilla BugzillaConfig `yaml:"bugzilla"`

	// History enables the SQLite run history in the state directory.
	History          bool                   `yaml:"history"`
	HistoryRetention HistoryRetentionConfig `yaml:"history_retention"`
}

// GitHubConfig configures the GraphQL client.
type GitHubConfig struct {
	Endpoint          string  `yaml:"endpoint"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// BugzillaConfig configures the bug tracker client.
type BugzillaConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

// Default returns a Config with every optional field at its default.
func Default() *Config {
	return &Config{
		GitHub: GitHubConfig{
			Endpoint:          DefaultGitHubEndpoint,
			RequestsPerSecond: DefaultRequestsPerSecond,
		},
		Bugzilla: BugzillaConfig{
			URL: DefaultBugzillaURL,
		},
		History:          true,
		HistoryRetention: DefaultHistoryRetentionConfig(),
	}
}

// Load reads the YAML config at path, applies environment overrides and
// validates the result. All failures are classified as config errors.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Config("could not read config file", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, errs.Config("invalid environment override", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errs.Config("invalid config file", err)
	}
	return cfg, nil
}

// Parse decodes YAML config data on top of the defaults without validating.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errs.Config("could not parse config file", err)
	}
	return cfg, nil
}

// ApplyEnv overrides secrets and paths from the environment.
//
// Environment variables:
//   - WGT_GITHUB_TOKEN: GitHub API token
//   - WGT_BUGZILLA_API_KEY: Bugzilla API key
//   - WGT_STATE_DIRECTORY: state directory
//   - WGT_HISTORY: enable run history (true/false)
//   - WGT_HISTORY_RETENTION_DAYS: see HistoryRetentionConfig
func (c *Config) ApplyEnv() error {
	if err := parseEnvString("WGT_GITHUB_TOKEN", &c.GitHubToken); err != nil {
		return err
	}
	if err := parseEnvString("WGT_BUGZILLA_API_KEY", &c.Bugzilla.APIKey); err != nil {
		return err
	}
	if err := parseEnvString("WGT_STATE_DIRECTORY", &c.StateDirectory); err != nil {
		return err
	}
	if err := parseEnvBool("WGT_HISTORY", &c.History); err != nil {
		return err
	}
	return c.HistoryRetention.applyEnv()
}

// Validate checks required fields and value syntax.
func (c *Config) Validate() error {
	if c.GitHubToken == "" {
		return fmt.Errorf("github_token is required")
	}
	if err := validateSyntax("wg_repo", c.WGRepo, repoRE, "'owner/repo'"); err != nil {
		return err
	}
	if err := validateSyntax("decisions_repo", c.DecisionsRepo, repoRE, "'owner/repo'"); err != nil {
		return err
	}
	if err := validateSyntax("start_date", c.StartDate, dateRE, "'YYYY-MM-DD'"); err != nil {
		return err
	}
	if _, err := time.Parse("2006-01-02", c.StartDate); err != nil {
		return fmt.Errorf("start_date %q is not a valid date", c.StartDate)
	}
	if c.StateDirectory == "" {
		return fmt.Errorf("state_directory is required")
	}
	if c.GitHub.Endpoint == "" {
		return fmt.Errorf("github.endpoint must not be empty")
	}
	if c.GitHub.RequestsPerSecond <= 0 {
		return fmt.Errorf("github.requests_per_second must be positive (got %v)", c.GitHub.RequestsPerSecond)
	}
	if c.Bugzilla.URL == "" {
		return fmt.Errorf("bugzilla.url must not be empty")
	}
	return c.HistoryRetention.Validate()
}

func validateSyntax(key, value string, re *regexp.Regexp, syntax string) error {
	if !re.MatchString(value) {
		return fmt.Errorf("config file %s value must have %s syntax", key, syntax)
	}
	return nil
}

// WGRepoRef returns the working group repository. Only valid after Validate.
func (c *Config) WGRepoRef() types.Repo {
	r, _ := types.ParseRepo(c.WGRepo)
	return r
}

// DecisionsRepoRef returns the decisions repository. Only valid after Validate.
func (c *Config) DecisionsRepoRef() types.Repo {
	r, _ := types.ParseRepo(c.DecisionsRepo)
	return r
}

// StartTime returns midnight UTC of StartDate.
func (c *Config) StartTime() time.Time {
	t, _ := time.Parse("2006-01-02", c.StartDate)
	return t.UTC()
}

// ResolvedPolicyURL returns PolicyURL, defaulting to config.toml on the
// decisions repository's master branch.
func (c *Config) ResolvedPolicyURL() string {
	if c.PolicyURL != "" {
		return c.PolicyURL
	}
	return fmt.Sprintf("https://raw.githubusercontent.com/%s/master/config.toml", c.DecisionsRepo)
}
