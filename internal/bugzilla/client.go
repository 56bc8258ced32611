// Package bugzilla files bugs through the Bugzilla REST API.
package bugzilla

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/steveyegge/wgtracker/internal/engine"
	"github.com/steveyegge/wgtracker/internal/errs"
	"github.com/steveyegge/wgtracker/internal/types"
)

// DefaultVersion is sent for every bug; resolutions are not tied to a release.
const DefaultVersion = "unspecified"

var _ engine.BugTracker = (*Client)(nil)

// Client files bugs on one Bugzilla instance.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a client for the instance at baseURL. A nil httpClient uses a
// client with a one minute timeout.
func New(baseURL, apiKey string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpClient,
		logger:  logger,
	}
}

type createRequest struct {
	Product     string   `json:"product"`
	Component   string   `json:"component"`
	Summary     string   `json:"summary"`
	Description string   `json:"description"`
	Version     string   `json:"version"`
	URL         string   `json:"url,omitempty"`
	SeeAlso     []string `json:"see_also,omitempty"`
}

type createResponse struct {
	ID      int    `json:"id"`
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// BugURL returns the web URL of bug id.
func (c *Client) BugURL(id int) string {
	return fmt.Sprintf("%s/show_bug.cgi?id=%d", c.baseURL, id)
}

// FileBug creates bug and returns its web URL. The first URL becomes the
// bug's URL field; all of them are listed under See Also.
func (c *Client) FileBug(ctx context.Context, bug types.Bug) (string, error) {
	if err := bug.Validate(); err != nil {
		return "", errs.Policy("invalid bug", err)
	}

	body := createRequest{
		Product:     bug.Product,
		Component:   bug.Component,
		Summary:     bug.Summary,
		Description: bug.Description,
		Version:     DefaultVersion,
		SeeAlso:     bug.URLs,
	}
	if len(bug.URLs) > 0 {
		body.URL = bug.URLs[0]
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling bug: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rest/bug", bytes.NewReader(payload))
	if err != nil {
		return "", errs.Config("invalid bugzilla url", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-BUGZILLA-API-KEY", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errs.Network("could not perform network request", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errs.Network("could not read response", err)
	}

	var result createResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return "", errs.Errorf(errs.KindResponse, "bugzilla returned %s: could not parse response", resp.Status)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 || result.Error {
		return "", errs.Errorf(errs.KindResponse, "bugzilla returned %s: %s", resp.Status, result.Message)
	}
	if result.ID == 0 {
		return "", errs.Errorf(errs.KindResponse, "bugzilla response has no bug id")
	}

	url := c.BugURL(result.ID)
	c.logger.Info("filed bug", "url", url, "product", bug.Product, "component", bug.Component)
	return url, nil
}
