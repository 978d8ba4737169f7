package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v70/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
)

// DefaultContentInterval spaces content-creating requests.
// https://docs.github.com/en/rest/using-the-rest-api/rate-limits-for-the-rest-api?apiVersion=2022-11-28#calculating-points-for-the-secondary-rate-limit
const DefaultContentInterval = 1 * time.Second

// Client wraps the GitHub REST and GraphQL clients
type Client struct {
	inner           *github.Client
	v4              *githubv4.Client
	httpClient      *http.Client
	gitToken        func(ctx context.Context) (string, error)
	contentInterval time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithContentInterval changes the pause taken before each content-creating request.
func WithContentInterval(d time.Duration) Option {
	return func(c *Client) {
		c.contentInterval = d
	}
}

// WithBaseURL points the client at a GitHub Enterprise server or a test
// server. REST calls go to baseURL, GraphQL calls to baseURL/graphql.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		base := strings.TrimSuffix(baseURL, "/")
		u, err := url.Parse(base + "/")
		if err != nil {
			return
		}
		c.inner.BaseURL = u
		c.v4 = githubv4.NewEnterpriseClient(base+"/graphql", c.httpClient)
	}
}

func newClient(httpClient *http.Client, gitToken func(ctx context.Context) (string, error), opts ...Option) *Client {
	c := &Client{
		inner:           github.NewClient(httpClient),
		v4:              githubv4.NewClient(httpClient),
		httpClient:      httpClient,
		gitToken:        gitToken,
		contentInterval: DefaultContentInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientByPAT creates a new GitHub client with the provided token
func NewClientByPAT(token string, opts ...Option) *Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)

	return newClient(tc, func(context.Context) (string, error) { return token, nil }, opts...)
}

// NewClientByApp creates a client authenticated as a GitHub App installation.
func NewClientByApp(appID, installationID int, privateKey string, opts ...Option) (*Client, error) {
	itr, err := ghinstallation.New(http.DefaultTransport, int64(appID), int64(installationID), []byte(privateKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub App transport: %w", err)
	}
	return newClient(&http.Client{Transport: itr}, itr.Token, opts...), nil
}

// GetInner returns the underlying GitHub client
func (client *Client) GetInner() *github.Client {
	return client.inner
}

// GetV4 returns the underlying GitHub GraphQL client
func (client *Client) GetV4() *githubv4.Client {
	return client.v4
}

// GitToken returns a token usable as the password of git over HTTPS.
func (client *Client) GitToken(ctx context.Context) (string, error) {
	return client.gitToken(ctx)
}

// pace waits before a content-creating request.
func (client *Client) pace(ctx context.Context) error {
	if client.contentInterval <= 0 {
		return nil
	}
	select {
	case <-time.After(client.contentInterval):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
