package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/evanschultz/minik/internal/app"
	"github.com/evanschultz/minik/internal/domain"
)

// userAgent identifies API traffic from this client.
const userAgent = "minik-board"

// maxItemPages bounds item pagination for one snapshot.
const maxItemPages = 10

// HTTPClient performs HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Logger receives request diagnostics.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
}

// Config holds configuration for client.
type Config struct {
	APIURL     string
	GraphQLURL string
	Timeout    time.Duration
}

// Client talks to the GitHub REST and GraphQL APIs.
type Client struct {
	apiURL     string
	graphqlURL string
	timeout    time.Duration
	tokens     TokenSource
	httpClient HTTPClient
	logger     Logger
	newID      func() string
	now        func() time.Time
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the diagnostics logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRequestIDs overrides request id generation.
func WithRequestIDs(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// WithClock overrides the snapshot timestamp source.
func WithClock(fn func() time.Time) Option {
	return func(c *Client) {
		if fn != nil {
			c.now = fn
		}
	}
}

// NewClient constructs a new value for this package.
func NewClient(cfg Config, tokens TokenSource, httpClient HTTPClient, opts ...Option) *Client {
	apiURL := strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if apiURL == "" {
		apiURL = "https://api.github.com"
	}
	graphqlURL := strings.TrimSpace(cfg.GraphQLURL)
	if graphqlURL == "" {
		graphqlURL = apiURL + "/graphql"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		apiURL:     apiURL,
		graphqlURL: graphqlURL,
		timeout:    cfg.Timeout,
		tokens:     tokens,
		httpClient: httpClient,
		newID:      uuid.NewString,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Viewer returns the authenticated user's login.
func (c *Client) Viewer(ctx context.Context) (string, error) {
	var resp viewerResponse
	if err := c.graphql(ctx, viewerQuery, nil, &resp); err != nil {
		return "", err
	}
	return resp.Viewer.Login, nil
}

// ListOrganizations returns the organizations the viewer belongs to.
func (c *Client) ListOrganizations(ctx context.Context) ([]domain.Organization, error) {
	var orgs []restOrganization
	if err := c.rest(ctx, "/user/orgs?per_page=100", &orgs); err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	out := make([]domain.Organization, 0, len(orgs))
	for _, org := range orgs {
		out = append(out, domain.Organization{
			ID:    org.ID,
			Login: org.Login,
			Name:  org.Name,
		})
	}
	return out, nil
}

// ListOrgProjects returns the projects owned by one organization.
func (c *Client) ListOrgProjects(ctx context.Context, org string) ([]domain.ProjectRef, error) {
	var resp orgProjectsResponse
	if err := c.graphql(ctx, orgProjectsQuery, map[string]any{"org": org}, &resp); err != nil {
		return nil, fmt.Errorf("list projects for %s: %w", org, err)
	}
	if resp.Organization == nil {
		return nil, fmt.Errorf("organization %s: %w", org, app.ErrNotFound)
	}
	return resp.Organization.ProjectsV2.refs(org), nil
}

// ListViewerProjects returns the projects owned by the viewer.
func (c *Client) ListViewerProjects(ctx context.Context) ([]domain.ProjectRef, error) {
	var resp viewerProjectsResponse
	if err := c.graphql(ctx, viewerProjectsQuery, nil, &resp); err != nil {
		return nil, fmt.Errorf("list viewer projects: %w", err)
	}
	return resp.Viewer.ProjectsV2.refs(resp.Viewer.Login), nil
}

// ProjectSnapshot fetches columns and items for one project.
func (c *Client) ProjectSnapshot(ctx context.Context, projectID string) (domain.Snapshot, error) {
	var (
		node   *projectNode
		items  []itemNode
		cursor *string
	)
	for page := 0; page < maxItemPages; page++ {
		var resp projectResponse
		vars := map[string]any{"projectId": projectID, "cursor": cursor}
		if err := c.graphql(ctx, projectQuery, vars, &resp); err != nil {
			return domain.Snapshot{}, err
		}
		if resp.Node == nil || resp.Node.ID == "" {
			return domain.Snapshot{}, fmt.Errorf("project %s: %w", projectID, app.ErrNotFound)
		}
		if node == nil {
			node = resp.Node
		}
		items = append(items, resp.Node.Items.Nodes...)
		if !resp.Node.Items.PageInfo.HasNextPage {
			break
		}
		next := resp.Node.Items.PageInfo.EndCursor
		cursor = &next
		if page == maxItemPages-1 && c.logger != nil {
			c.logger.Warn("project item pagination truncated", "project_id", projectID, "items", len(items))
		}
	}
	snap, err := node.snapshot(items)
	if err != nil {
		return domain.Snapshot{}, err
	}
	snap.FetchedAt = c.now().UTC()
	return snap, nil
}

// UpdateItemStatus sets one item's single-select Status value.
func (c *Client) UpdateItemStatus(ctx context.Context, projectID, itemID, fieldID, optionID string) error {
	vars := map[string]any{
		"projectId": projectID,
		"itemId":    itemID,
		"fieldId":   fieldID,
		"value":     map[string]any{"singleSelectOptionId": optionID},
	}
	var resp updateItemResponse
	if err := c.graphql(ctx, updateItemMutation, vars, &resp); err != nil {
		return err
	}
	if resp.UpdateProjectV2ItemFieldValue.ProjectV2Item.ID == "" {
		return errors.New("update item status: response carried no item id")
	}
	return nil
}

// graphql posts one query and decodes its data block into out.
func (c *Client) graphql(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("encode graphql request: %w", err)
	}
	var envelope graphQLResponse
	if err := c.do(ctx, http.MethodPost, c.graphqlURL, body, &envelope); err != nil {
		return err
	}
	if len(envelope.Errors) > 0 {
		first := envelope.Errors[0]
		return &GraphQLError{Type: first.Type, Message: first.Message, Count: len(envelope.Errors)}
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return errors.New("graphql: empty data")
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode graphql data: %w", err)
	}
	return nil
}

// rest performs one GET against the REST API.
func (c *Client) rest(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, c.apiURL+path, nil, out)
}

// do performs an authenticated request and decodes the JSON response.
func (c *Client) do(ctx context.Context, method, url string, body []byte, out any) error {
	if c.tokens == nil {
		return app.ErrAuthRequired
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := c.newID()
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-Id", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if c.logger != nil {
		c.logger.Debug("github request", "request_id", requestID, "method", method, "url", url, "status", resp.StatusCode, "elapsed", time.Since(started))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		statusErr := &StatusError{
			StatusCode:  resp.StatusCode,
			Body:        string(raw),
			RateLimited: resp.Header.Get("X-RateLimit-Remaining") == "0",
		}
		if resp.StatusCode == http.StatusUnauthorized {
			if inv, ok := c.tokens.(Invalidator); ok {
				inv.Invalidate()
			}
		}
		return statusErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
