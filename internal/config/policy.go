package config

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/steveyegge/wgtracker/internal/errs"
)

// DefaultComponentKey names the components entry used when a decision issue's
// spec labels do not resolve to exactly one component.
const DefaultComponentKey = "default"

// Policy is the per-decisions-repo configuration, stored as config.toml in
// the decisions repository.
//
//	[labels]
//	color = "fbca04"
//	prefixes = ["css-", "selectors-"]
//
//	[components]
//	css-grid = "Core :: Layout: Grid"
//	default = "Core :: Layout"
type Policy struct {
	Labels     *LabelPolicy      `toml:"labels"`
	Components map[string]string `toml:"components"`
}

// LabelPolicy selects which working group labels are mirrored onto
// decision issues. A label matches if its color equals Color or its name
// starts with any of Prefixes.
type LabelPolicy struct {
	Color    string   `toml:"color"`
	Prefixes []string `toml:"prefixes"`
}

// Component is a bug tracker product/component pair.
type Component struct {
	Product   string
	Component string
}

func (c Component) String() string {
	return c.Product + " :: " + c.Component
}

// ParseComponent parses "Product :: Component" syntax.
func ParseComponent(s string) (Component, error) {
	parts := strings.Split(s, "::")
	if len(parts) != 2 {
		return Component{}, errs.Errorf(errs.KindPolicy, "component %q must have 'Product :: Component' syntax", s)
	}
	c := Component{
		Product:   strings.TrimSpace(parts[0]),
		Component: strings.TrimSpace(parts[1]),
	}
	if c.Product == "" || c.Component == "" {
		return Component{}, errs.Errorf(errs.KindPolicy, "component %q must have 'Product :: Component' syntax", s)
	}
	return c, nil
}

// ParsePolicy decodes policy TOML and validates it.
func ParsePolicy(data string) (*Policy, error) {
	var p Policy
	if _, err := toml.Decode(data, &p); err != nil {
		return nil, errs.Config("could not parse repo config file", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks that every component entry can be parsed.
func (p *Policy) Validate() error {
	for key, value := range p.Components {
		if _, err := ParseComponent(value); err != nil {
			return fmt.Errorf("components.%s: %w", key, err)
		}
	}
	return nil
}

// LoadPolicy reads the policy from cfg.PolicyFile if set, otherwise fetches
// it from cfg.ResolvedPolicyURL().
func LoadPolicy(ctx context.Context, client *http.Client, cfg *Config) (*Policy, error) {
	if cfg.PolicyFile != "" {
		data, err := os.ReadFile(cfg.PolicyFile)
		if err != nil {
			return nil, errs.Config("could not read repo config file", err)
		}
		return ParsePolicy(string(data))
	}
	return FetchPolicy(ctx, client, cfg.ResolvedPolicyURL())
}

// FetchPolicy downloads and parses the policy at url.
func FetchPolicy(ctx context.Context, client *http.Client, url string) (*Policy, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.Config("invalid repo config url", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errs.Network("could not perform network request", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Network("could not read request body", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errs.Errorf(errs.KindResponse, "fetching repo config %s: unexpected status %s", url, resp.Status)
	}

	return ParsePolicy(string(body))
}
