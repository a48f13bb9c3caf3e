package warcraftlogs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/guildroster/roster_backend/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"
)

var ErrReportNotFound = errors.New("report not found")

// maxResponseBytes caps a report response body.
var maxResponseBytes int64 = 8 << 20

// APIError is a non-2xx response or a GraphQL error payload.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("warcraftlogs api error %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL  string
	http     *http.Client
	limiter  <-chan time.Time
	group    singleflight.Group
	cacheTTL time.Duration
}

// NewClient builds a client from WCL_* environment variables, authenticated
// with the OAuth2 client credentials grant.
func NewClient() (*Client, error) {
	clientId := strings.TrimSpace(os.Getenv("WCL_CLIENT_ID"))
	clientSecret := strings.TrimSpace(os.Getenv("WCL_CLIENT_SECRET"))
	if clientId == "" || clientSecret == "" {
		return nil, errors.New("warcraftlogs client credentials are empty")
	}
	baseURL := strings.TrimSpace(os.Getenv("WCL_API_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://www.warcraftlogs.com"
	}
	baseURL = strings.TrimRight(baseURL, "/")
	tokenURL := strings.TrimSpace(os.Getenv("WCL_TOKEN_URL"))
	if tokenURL == "" {
		tokenURL = baseURL + "/oauth/token"
	}

	creds := clientcredentials.Config{
		ClientID:     clientId,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
	base := &http.Client{Timeout: 30 * time.Second}
	httpClient := creds.Client(context.WithValue(context.Background(), oauth2.HTTPClient, base))
	httpClient.Timeout = 30 * time.Second

	return NewClientWithHTTP(baseURL, httpClient, config.IntFromEnv("WCL_RATE_LIMIT_PER_MIN", 60)), nil
}

// NewClientWithHTTP uses httpClient as is; authentication is the caller's concern.
func NewClientWithHTTP(baseURL string, httpClient *http.Client, rateLimitPerMin int) *Client {
	if rateLimitPerMin <= 0 {
		rateLimitPerMin = 60
	}
	interval := time.Minute / time.Duration(rateLimitPerMin)

	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     httpClient,
		limiter:  time.Tick(interval),
		cacheTTL: time.Duration(config.IntFromEnv("WCL_REPORT_CACHE_HOURS", 24)) * time.Hour,
	}
}

func reportCacheKey(code string) string {
	return "WclReport:" + code
}

// FetchReport returns the report with its player participants, from the
// redis cache when present. Concurrent calls for one code share a single
// upstream request.
func (c *Client) FetchReport(ctx context.Context, code string) (*Report, error) {
	var cached Report
	if ok, err := config.GetRedisObject(reportCacheKey(code), &cached); err == nil && ok {
		return &cached, nil
	}
	return c.load(ctx, code)
}

// RefreshReport skips the cache and loads the report upstream, so a report
// that is still being logged picks up new participants. The cache is
// overwritten with the result.
func (c *Client) RefreshReport(ctx context.Context, code string) (*Report, error) {
	return c.load(ctx, code)
}

// load runs the shared upstream call detached from any one caller's
// cancellation; each caller still stops waiting when its own ctx is done.
func (c *Client) load(ctx context.Context, code string) (*Report, error) {
	ch := c.group.DoChan(code, func() (interface{}, error) {
		report, err := c.fetchReport(context.WithoutCancel(ctx), code)
		if err != nil {
			return nil, err
		}
		if err := config.SetRedisObject(reportCacheKey(code), report, c.cacheTTL); err != nil {
			config.LogError(config.GetLogger(), "warcraftlogs", "FetchReport", "cache report", code, err)
		}
		return report, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Report), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Client) fetchReport(ctx context.Context, code string) (*Report, error) {
	select {
	case <-c.limiter:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	payload, err := json.Marshal(graphqlRequest{
		Query:     reportQuery,
		Variables: map[string]any{"code": code},
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v2/client", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read report response: %w", err)
	}
	if int64(len(body)) > maxResponseBytes {
		return nil, fmt.Errorf("report response exceeds %d bytes", maxResponseBytes)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var parsed reportResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	if len(parsed.Errors) > 0 {
		messages := make([]string, 0, len(parsed.Errors))
		for _, e := range parsed.Errors {
			messages = append(messages, e.Message)
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: strings.Join(messages, "; ")}
	}
	if parsed.Data.ReportData.Report == nil {
		return nil, ErrReportNotFound
	}
	return toReport(parsed.Data.ReportData.Report), nil
}

func msToTime(ms float64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(int64(ms)).UTC()
}

// toReport keeps masterData actor order; roles come from playerDetails by actor id.
func toReport(w *wireReport) *Report {
	report := &Report{
		Code:         w.Code,
		Title:        w.Title,
		StartTime:    msToTime(w.StartTime),
		EndTime:      msToTime(w.EndTime),
		Participants: []Participant{},
	}
	if w.Owner != nil {
		report.Owner = w.Owner.Name
	}
	if w.Zone != nil {
		report.Zone = w.Zone.Name
	}

	roles := make(map[int]Role)
	if w.PlayerDetails != nil {
		details := w.PlayerDetails.Data.PlayerDetails
		for _, a := range details.Tanks {
			roles[a.ID] = RoleTank
		}
		for _, a := range details.Healers {
			roles[a.ID] = RoleHealer
		}
		for _, a := range details.DPS {
			roles[a.ID] = RoleDPS
		}
	}

	if w.MasterData == nil {
		return report
	}
	for _, actor := range w.MasterData.Actors {
		if actor.Type != "" && actor.Type != "Player" {
			continue
		}
		report.Participants = append(report.Participants, Participant{
			ExternalId: fmt.Sprint(actor.ID),
			Name:       actor.Name,
			Class:      actor.SubType,
			Server:     actor.Server,
			Role:       roles[actor.ID],
		})
	}
	return report
}
