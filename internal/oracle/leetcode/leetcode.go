// Package leetcode implements the LeetCode verification oracle: it
// queries the public GraphQL endpoint for a user's recent submissions
// and counts distinct problems accepted on a given calendar day.
package leetcode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/focusrpg/focusrpg/internal/domain"
)

// DefaultEndpoint is LeetCode's public GraphQL API.
const DefaultEndpoint = "https://leetcode.com/graphql"

const recentSubmissionsQuery = `query recentSubmissions($username: String!, $limit: Int!) {
  recentSubmissionList(username: $username, limit: $limit) {
    titleSlug
    statusDisplay
    timestamp
  }
}`

// submissionLimit bounds how far back we look. Twenty covers a heavy
// practice day; anything older is not today's work anyway.
const submissionLimit = 20

// Client is a LeetCode GraphQL client with a bounded request timeout.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient creates a client against the given endpoint (empty =
// DefaultEndpoint) with the given timeout.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type submission struct {
	TitleSlug     string `json:"titleSlug"`
	StatusDisplay string `json:"statusDisplay"`
	Timestamp     string `json:"timestamp"`
}

type graphqlResponse struct {
	Data struct {
		RecentSubmissionList []submission `json:"recentSubmissionList"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// FetchDailyAcceptedCount returns the number of distinct problems the
// user had accepted on the given calendar day. Any transport, HTTP, or
// GraphQL failure is reported as ErrOracleUnavailable.
func (c *Client) FetchDailyAcceptedCount(ctx context.Context, username string, day time.Time) (int, error) {
	body, err := json.Marshal(graphqlRequest{
		Query: recentSubmissionsQuery,
		Variables: map[string]any{
			"username": username,
			"limit":    submissionLimit,
		},
	})
	if err != nil {
		return 0, fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrOracleUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: status %d", domain.ErrOracleUnavailable, resp.StatusCode)
	}

	var parsed graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("%w: decode: %v", domain.ErrOracleUnavailable, err)
	}
	if len(parsed.Errors) > 0 {
		return 0, fmt.Errorf("%w: %s", domain.ErrOracleUnavailable, parsed.Errors[0].Message)
	}

	return countAcceptedOn(parsed.Data.RecentSubmissionList, day), nil
}

// countAcceptedOn counts distinct accepted problem slugs whose
// submission timestamp falls on the given calendar day. Duplicate
// accepts of the same problem count once.
func countAcceptedOn(subs []submission, day time.Time) int {
	seen := map[string]bool{}
	for _, s := range subs {
		if s.StatusDisplay != "Accepted" {
			continue
		}
		unix, err := strconv.ParseInt(s.Timestamp, 10, 64)
		if err != nil {
			continue
		}
		at := time.Unix(unix, 0).In(day.Location())
		if !domain.SameDay(at, day) {
			continue
		}
		seen[s.TitleSlug] = true
	}
	return len(seen)
}
