//-------------------------------------------------------------------------
//
// chessdash - chess game warehouse
//
// Copyright (c) 2025 - 2026, the chessdash authors
// This software is released under The MIT License
//
//-------------------------------------------------------------------------

// Package lichess fetches games from the Lichess streaming NDJSON API.
package lichess

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/chessdash/chessdash/internal/logging"
	"github.com/chessdash/chessdash/internal/source"
	"github.com/chessdash/chessdash/internal/warehouse"
)

// DefaultBaseURL is the production Lichess API root.
const DefaultBaseURL = "https://lichess.org/api"

// Client streams games for a user as newline-delimited JSON.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New creates a client against the production API.
func New() *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		HTTP:    source.NewHTTPClient(source.DefaultTimeout),
	}
}

// Name returns the platform identifier.
func (c *Client) Name() string {
	return "lichess"
}

// Description returns a human-readable description.
func (c *Client) Description() string {
	return "Lichess (lichess.org) - streaming NDJSON export API"
}

// game mirrors the subset of the Lichess game export we consume.
type game struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"createdAt"`
	Winner    string `json:"winner"`
	Perf      string `json:"perf"`
	Moves     string `json:"moves"`
	Players   struct {
		White struct {
			User struct {
				Name string `json:"name"`
			} `json:"user"`
		} `json:"white"`
		Black struct {
			User struct {
				Name string `json:"name"`
			} `json:"user"`
		} `json:"black"`
	} `json:"players"`
	Opening struct {
		ECO  string `json:"eco"`
		Name string `json:"name"`
	} `json:"opening"`
	Clock *struct {
		Initial   int `json:"initial"`
		Increment int `json:"increment"`
	} `json:"clock"`
}

// FetchGames streams the user's games into emit.
func (c *Client) FetchGames(ctx context.Context, username string, maxGames int, emit func(warehouse.RawGame) error) error {
	endpoint := fmt.Sprintf("%s/games/user/%s", c.BaseURL, url.PathEscape(username))
	params := url.Values{"opening": {"true"}}
	if maxGames > 0 {
		params.Set("max", strconv.Itoa(maxGames))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build lichess request: %w", err)
	}
	req.Header.Set("Accept", "application/x-ndjson")

	resp, err := source.DoGet(c.HTTP, req)
	if err != nil {
		return fmt.Errorf("lichess request failed: %w", err)
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	// Long games can exceed the default token size
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	count := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var g game
		if err := json.Unmarshal([]byte(line), &g); err != nil {
			logging.Warn().Err(err).Msg("Skipping undecodable lichess line")
			continue
		}

		if err := emit(c.parse(g)); err != nil {
			return err
		}
		count++
		if maxGames > 0 && count >= maxGames {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("lichess stream failed: %w", err)
	}

	logging.Debug().
		Int("games", count).
		Str("username", username).
		Msg("Finished lichess stream")
	return nil
}

// parse converts one export record into the common shape.
func (c *Client) parse(g game) warehouse.RawGame {
	raw := warehouse.RawGame{
		Source:       "lichess",
		SourceGameID: g.ID,
		White:        g.Players.White.User.Name,
		Black:        g.Players.Black.User.Name,
		Event:        g.Perf,
		Result:       parseResult(g.Winner),
		ECO:          g.Opening.ECO,
		URL:          "https://lichess.org/" + g.ID,
		Moves:        g.Moves,
	}

	if raw.White == "" {
		raw.White = "Anonymous"
	}
	if raw.Black == "" {
		raw.Black = "Anonymous"
	}

	if g.CreatedAt > 0 {
		t := time.UnixMilli(g.CreatedAt).UTC()
		raw.Year, raw.Month, raw.Day = t.Year(), int(t.Month()), t.Day()
	}

	// "Sicilian Defense: Najdorf Variation" carries the variation after
	// the colon
	if g.Opening.Name != "" {
		if name, variation, ok := strings.Cut(g.Opening.Name, ": "); ok {
			raw.OpeningName, raw.OpeningVariation = name, variation
		} else {
			raw.OpeningName = g.Opening.Name
		}
	}

	if g.Clock != nil {
		raw.TimeControl = strconv.Itoa(g.Clock.Initial)
	}

	return raw
}

// parseResult converts the Lichess winner field to a PGN result code.
func parseResult(winner string) string {
	switch winner {
	case "white":
		return "1-0"
	case "black":
		return "0-1"
	default:
		return "1/2-1/2"
	}
}

func init() {
	source.Register(New())
}
