package git

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const DefaultGraphQLEndpoint = "https://api.github.com/graphql"

// ErrNoToken means no GitHub token could be found.
var ErrNoToken = errors.New("no github token: set GITHUB_TOKEN or run gh auth login")

const contributionsQuery = `query($from: DateTime!, $to: DateTime!) {
  viewer {
    contributionsCollection(from: $from, to: $to) {
      contributionCalendar {
        weeks {
          contributionDays {
            contributionCount
          }
        }
      }
    }
  }
}`

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type contributionsResponse struct {
	Data struct {
		Viewer struct {
			ContributionsCollection struct {
				ContributionCalendar struct {
					Weeks []struct {
						ContributionDays []struct {
							ContributionCount int `json:"contributionCount"`
						} `json:"contributionDays"`
					} `json:"weeks"`
				} `json:"contributionCalendar"`
			} `json:"contributionsCollection"`
		} `json:"viewer"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// ContributionClient reads the authenticated user's contribution calendar.
type ContributionClient struct {
	Endpoint string
	http     *http.Client
	log      *zap.Logger
}

// NewContributionClient wraps token in an oauth2 HTTP client.
func NewContributionClient(ctx context.Context, token string, log *zap.Logger) *ContributionClient {
	if log == nil {
		log = zap.NewNop()
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	hc := oauth2.NewClient(ctx, src)
	hc.Timeout = 30 * time.Second
	return &ContributionClient{Endpoint: DefaultGraphQLEndpoint, http: hc, log: log}
}

// ResolveToken looks in GITHUB_TOKEN, then GH_TOKEN, then asks the gh CLI.
func ResolveToken(ctx context.Context, run Runner) (string, error) {
	for _, env := range []string{"GITHUB_TOKEN", "GH_TOKEN"} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v, nil
		}
	}
	if run == nil {
		run = ExecRunner
	}
	out, err := run(ctx, Command{Name: "gh", Args: []string{"auth", "token"}})
	if err != nil {
		return "", fmt.Errorf("%w (%v)", ErrNoToken, err)
	}
	tok := strings.TrimSpace(string(out))
	if tok == "" {
		return "", ErrNoToken
	}
	return tok, nil
}

// MaxDaily returns the highest single-day contribution count in year.
func (c *ContributionClient) MaxDaily(ctx context.Context, year int) (int, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)

	body, err := json.Marshal(graphQLRequest{
		Query: contributionsQuery,
		Variables: map[string]any{
			"from": from.Format(time.RFC3339),
			"to":   to.Format(time.RFC3339),
		},
	})
	if err != nil {
		return 0, fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("query contributions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("query contributions: unexpected status %s", resp.Status)
	}

	var out contributionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode contributions: %w", err)
	}
	if len(out.Errors) > 0 {
		return 0, fmt.Errorf("query contributions: %s", out.Errors[0].Message)
	}

	best := 0
	for _, w := range out.Data.Viewer.ContributionsCollection.ContributionCalendar.Weeks {
		for _, d := range w.ContributionDays {
			best = max(best, d.ContributionCount)
		}
	}
	c.log.Info("fetched contribution maximum", zap.Int("year", year), zap.Int("max_daily", best))
	return best, nil
}
