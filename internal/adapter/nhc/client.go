// Package nhc retrieves ATCF decks and the storm index from the National
// Hurricane Center file server.
package nhc

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/storm-vortex-track/internal/atcf"
	"github.com/couchcryptid/storm-vortex-track/internal/domain"
	"github.com/couchcryptid/storm-vortex-track/internal/observability"
)

// DefaultBaseURL is the public NHC file server.
const DefaultBaseURL = "https://ftp.nhc.noaa.gov"

const stormListPath = "/atcf/index/storm_list.txt"

// Column positions in storm_list.txt.
const (
	listColName   = 0
	listColNumber = 7
	listColYear   = 8
	listColCode   = 20
)

// Storm is one entry of the NHC storm index.
type Storm struct {
	ID   domain.StormID
	Name string
}

// Client implements domain.Provider and domain.Resolver over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an NHC client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		metrics: metrics,
		logger:  logger,
	}
}

// DeckURL returns the location of a deck. Historical decks live in the yearly
// archive; realtime decks in the live aid, best-track and fix directories.
func (c *Client) DeckURL(req domain.FetchRequest) (string, error) {
	id := strings.ToLower(req.StormID.String())
	deck := string(req.Deck)
	switch req.Mode {
	case domain.ModeHistorical, "":
		return fmt.Sprintf("%s/atcf/archive/%d/%s%s.dat.gz", c.baseURL, req.StormID.Year, deck, id), nil
	case domain.ModeRealtime:
		switch req.Deck {
		case domain.FileDeckA:
			return fmt.Sprintf("%s/atcf/aid_public/a%s.dat.gz", c.baseURL, id), nil
		case domain.FileDeckB:
			return fmt.Sprintf("%s/atcf/btk/b%s.dat", c.baseURL, id), nil
		case domain.FileDeckF:
			return fmt.Sprintf("%s/atcf/fix/f%s.dat", c.baseURL, id), nil
		}
	}
	return "", fmt.Errorf("%w: no location for %s-deck in %s mode", domain.ErrConfiguration, deck, req.Mode)
}

// Fetch downloads and decodes a deck. Rows are limited to the record types
// the deck allows; a-deck rows are placed at their forecast valid time.
func (c *Client) Fetch(ctx context.Context, req domain.FetchRequest) (domain.RecordTable, error) {
	deck := string(req.Deck)
	u, err := c.DeckURL(req)
	if err != nil {
		return nil, err
	}

	opts := atcf.DecodeOptions{ApplyForecastHours: req.Deck == domain.FileDeckA}
	if allowed, err := req.Deck.AllowedRecordTypes(); err == nil {
		opts.RecordTypes = allowed
	}

	start := time.Now()
	table, err := c.fetchDeck(ctx, u, opts)
	c.metrics.FetchDuration.WithLabelValues(deck).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues(deck, "error").Inc()
		c.logger.Warn("deck fetch failed", "storm_id", req.StormID.String(), "url", u, "error", err)
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrRetrieval, req.StormID, err)
	}
	c.metrics.FetchRequests.WithLabelValues(deck, "success").Inc()
	c.logger.Debug("deck fetched", "storm_id", req.StormID.String(), "url", u, "fixes", len(table))
	return table, nil
}

func (c *Client) fetchDeck(ctx context.Context, u string, opts atcf.DecodeOptions) (domain.RecordTable, error) {
	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	table, err := atcf.Decode(body, opts)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", u, err)
	}
	return table, nil
}

// Resolve looks a storm up by name and year in the storm index.
func (c *Client) Resolve(ctx context.Context, name string, year int) (domain.StormID, error) {
	storms, err := c.Storms(ctx)
	if err != nil {
		c.metrics.ResolveCalls.WithLabelValues("error").Inc()
		return domain.StormID{}, err
	}
	name = strings.ToUpper(strings.TrimSpace(name))
	for _, s := range storms {
		if s.ID.Year == year && s.Name == name {
			c.metrics.ResolveCalls.WithLabelValues("success").Inc()
			return s.ID, nil
		}
	}
	c.metrics.ResolveCalls.WithLabelValues("not_found").Inc()
	return domain.StormID{}, fmt.Errorf("%w: no storm named %q in %d", domain.ErrIdentityResolution, name, year)
}

// Storms downloads and parses the storm index.
func (c *Client) Storms(ctx context.Context) ([]Storm, error) {
	body, err := c.get(ctx, c.baseURL+stormListPath)
	if err != nil {
		return nil, fmt.Errorf("%w: storm list: %w", domain.ErrRetrieval, err)
	}
	defer body.Close()

	storms, err := parseStormList(body)
	if err != nil {
		return nil, fmt.Errorf("%w: storm list: %w", domain.ErrRetrieval, err)
	}
	return storms, nil
}

// CheckReadiness verifies the file server answers for the storm index.
func (c *Client) CheckReadiness(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+stormListPath, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("nhc unreachable: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("nhc unavailable: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) get(ctx context.Context, u string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", u, err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("nhc error: %s: status %d: %s", u, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp.Body, nil
}

func parseStormList(r io.Reader) ([]Storm, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var storms []Storm
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) <= listColCode {
			continue
		}
		id, err := domain.ParseStormID(record[listColCode])
		if err != nil {
			continue
		}
		if year, err := strconv.Atoi(strings.TrimSpace(record[listColYear])); err == nil {
			id.Year = year
		}
		if number, err := strconv.Atoi(strings.TrimSpace(record[listColNumber])); err == nil {
			id.Number = number
		}
		storms = append(storms, Storm{
			ID:   id,
			Name: strings.ToUpper(strings.TrimSpace(record[listColName])),
		})
	}
	if len(storms) == 0 {
		return nil, errors.New("no storms listed")
	}
	return storms, nil
}
