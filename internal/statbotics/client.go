// Package statbotics provides a minimal client for the Statbotics v3 API.
package statbotics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ga2230/reefscout/internal/model"
)

// DefaultBaseURL is the root endpoint for the Statbotics v3 API.
const DefaultBaseURL = "https://api.statbotics.io/v3"

// teamYearLimit covers every active team in one page.
const teamYearLimit = 3000

// Client is a minimal Statbotics API client.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for baseURL, or DefaultBaseURL when empty.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// TeamYear holds the fields we need from the /team_years endpoint.
type TeamYear struct {
	Team       int     `json:"team"`
	Year       int     `json:"year"`
	EPATotal   float64 `json:"epa_total"`
	EPAAuto    float64 `json:"epa_auto"`
	EPATeleop  float64 `json:"epa_teleop"`
	EPAEndgame float64 `json:"epa_endgame"`
}

// get performs a GET request against the API and JSON-decodes the response body into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: HTTP %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// TeamYears returns every team's season summary for year.
func (c *Client) TeamYears(ctx context.Context, year int) ([]TeamYear, error) {
	var out []TeamYear
	path := fmt.Sprintf("/team_years?year=%d&limit=%d", year, teamYearLimit)
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Ratings fetches year's team summaries keyed by team number.
func (c *Client) Ratings(ctx context.Context, year int) (model.Ratings, error) {
	years, err := c.TeamYears(ctx, year)
	if err != nil {
		return nil, err
	}
	out := make(model.Ratings, len(years))
	for _, ty := range years {
		out[strconv.Itoa(ty.Team)] = model.Rating{
			Auto:   ty.EPAAuto,
			Teleop: ty.EPATeleop,
			Total:  ty.EPATotal,
		}
	}
	return out, nil
}
