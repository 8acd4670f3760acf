// Package release lists the releases of a GitHub repository.
package release

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const (
	// DefaultAPIBaseURL is the GitHub REST API root.
	DefaultAPIBaseURL = "https://api.github.com"
	// DefaultTimeout bounds a single release index request.
	DefaultTimeout = 30 * time.Second

	schemaURL = "https://github.com/ZebulonRouseFrantzich/voorhees-action/schemas/releases.json"
)

// ErrUnexpectedStatus is matched by every *StatusError.
var ErrUnexpectedStatus = errors.New("unexpected release index status")

//go:embed releases.schema.json
var releasesSchema []byte

// Release is the subset of the GitHub release payload the action uses.
type Release struct {
	TagName    string `json:"tag_name"`
	Prerelease bool   `json:"prerelease"`
	Draft      bool   `json:"draft"`
	HTMLURL    string `json:"html_url"`
}

// StatusError reports a non-200 answer from the release index.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("github returned an unexpected status: %d", e.Code)
}

// Is makes errors.Is(err, ErrUnexpectedStatus) hold.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// HTTPClient is the part of *http.Client the release client needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root, e.g. for GitHub Enterprise.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h HTTPClient) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// Client queries the GitHub releases endpoint.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	token      string
	userAgent  string
}

// NewClient creates a release index client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultAPIBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  UserAgent("dev"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListReleases returns the releases of owner/repo in the order GitHub
// serves them, newest first.
func (c *Client) ListReleases(ctx context.Context, owner, repo string) ([]Release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases", c.baseURL, owner, repo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch releases: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, URL: url}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read releases: %w", err)
	}

	return parseReleases(body)
}

func parseReleases(body []byte) ([]Release, error) {
	sch, err := compiledSchema()
	if err != nil {
		return nil, err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("decode releases: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		return nil, fmt.Errorf("invalid release index payload: %w", err)
	}

	var releases []Release
	if err := json.Unmarshal(body, &releases); err != nil {
		return nil, fmt.Errorf("decode releases: %w", err)
	}
	return releases, nil
}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(releasesSchema))
		if err != nil {
			schemaErr = fmt.Errorf("load release schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("add release schema: %w", err)
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}

// TokenFrom returns the token to authenticate release index requests with,
// preferring VOORHEES_GITHUB_TOKEN over GITHUB_TOKEN.
func TokenFrom(getenv func(string) string) string {
	if tok := strings.TrimSpace(getenv("VOORHEES_GITHUB_TOKEN")); tok != "" {
		return tok
	}
	return strings.TrimSpace(getenv("GITHUB_TOKEN"))
}

// UserAgent returns the User-Agent header for the given action version.
func UserAgent(version string) string {
	return fmt.Sprintf("voorhees-action/%s", version)
}
