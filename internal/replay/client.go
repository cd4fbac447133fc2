package replay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/okian/momentum/internal/domain/momentum"
	"github.com/okian/momentum/pkg/logger"
)

// Client pushes scripts to a running momentum server.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// PushStats counts the outcome of each submitted event.
type PushStats struct {
	MatchID   string `json:"match_id"`
	Accepted  int    `json:"accepted"`
	Duplicate int    `json:"duplicate"`
	Failed    int    `json:"failed"`
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// Push creates the script's match and queues its events in order. Events
// of one match must arrive in order, so they are sent one at a time.
func (c *Client) Push(ctx context.Context, s *Script) (PushStats, error) {
	id, err := c.createMatch(ctx, s)
	if err != nil {
		return PushStats{}, err
	}
	stats := PushStats{MatchID: id}
	log := logger.Get().Named("replay-client")

	path := "/matches/" + url.PathEscape(id) + "/events"
	for _, e := range s.Events {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("push interrupted: %w", err)
		}
		body := map[string]any{"event_id": e.ID, "type": e.Type, "side": e.Side, "minute": e.Minute}
		status, data, err := c.do(ctx, http.MethodPost, path, body)
		if err != nil {
			return stats, err
		}
		switch status {
		case http.StatusAccepted:
			stats.Accepted++
		case http.StatusOK:
			var ack ackResponse
			if err := json.Unmarshal(data, &ack); err == nil && ack.Duplicate {
				stats.Duplicate++
				continue
			}
			stats.Accepted++
		default:
			stats.Failed++
			log.Warn(ctx, "event rejected",
				logger.String("match_id", id),
				logger.String("event_id", e.ID),
				logger.Int("status", status),
				logger.String("body", string(bytes.TrimSpace(data))),
			)
		}
	}
	return stats, nil
}

// WaitApplied polls the match analysis until its sequence reaches n, the
// number of events applied by the server's workers.
func (c *Client) WaitApplied(ctx context.Context, matchID string, n int, interval time.Duration) error {
	path := "/matches/" + url.PathEscape(matchID) + "/analysis"
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status, data, err := c.do(ctx, http.MethodGet, path, nil)
		if err != nil {
			return err
		}
		if status != http.StatusOK {
			return fmt.Errorf("%w: analysis: status %d: %s", ErrRequest, status, bytes.TrimSpace(data))
		}
		var a struct {
			Sequence int `json:"sequence"`
		}
		if err := json.Unmarshal(data, &a); err != nil {
			return fmt.Errorf("%w: decode analysis: %w", ErrRequest, err)
		}
		if a.Sequence >= n {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: waiting for %d events, applied %d: %w", ErrRequest, n, a.Sequence, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Report fetches a match report.
func (c *Client) Report(ctx context.Context, matchID string) (momentum.Report, error) {
	var rep momentum.Report
	status, data, err := c.do(ctx, http.MethodGet, "/matches/"+url.PathEscape(matchID)+"/report", nil)
	if err != nil {
		return rep, err
	}
	if status != http.StatusOK {
		return rep, fmt.Errorf("%w: report: status %d: %s", ErrRequest, status, bytes.TrimSpace(data))
	}
	if err := json.Unmarshal(data, &rep); err != nil {
		return rep, fmt.Errorf("%w: decode report: %w", ErrRequest, err)
	}
	return rep, nil
}

func (c *Client) createMatch(ctx context.Context, s *Script) (string, error) {
	body := map[string]any{
		"match_id":       s.MatchID,
		"home_team":      s.Config.HomeTeam,
		"away_team":      s.Config.AwayTeam,
		"home_strength":  s.Config.HomeStrength,
		"away_strength":  s.Config.AwayStrength,
		"importance":     s.Config.Importance,
		"crowd_factor":   s.Config.CrowdFactor,
		"weather_factor": s.Config.WeatherFactor,
	}
	status, data, err := c.do(ctx, http.MethodPost, "/matches", body)
	if err != nil {
		return "", err
	}
	if status != http.StatusCreated {
		return "", fmt.Errorf("%w: create match: status %d: %s", ErrRequest, status, bytes.TrimSpace(data))
	}
	var created struct {
		MatchID string `json:"match_id"`
	}
	if err := json.Unmarshal(data, &created); err != nil {
		return "", fmt.Errorf("%w: decode created match: %w", ErrRequest, err)
	}
	return created.MatchID, nil
}

// do sends body as JSON and returns the status and the full response body.
func (c *Client) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %s %s: %w", ErrRequest, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("%w: read response: %w", ErrRequest, err)
	}
	return resp.StatusCode, data, nil
}
