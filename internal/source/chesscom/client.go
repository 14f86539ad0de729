//-------------------------------------------------------------------------
//
// chessdash - chess game warehouse
//
// Copyright (c) 2025 - 2026, the chessdash authors
// This software is released under The MIT License
//
//-------------------------------------------------------------------------

// Package chesscom fetches games from the Chess.com published-data API.
package chesscom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/notnil/chess"

	"github.com/chessdash/chessdash/internal/logging"
	"github.com/chessdash/chessdash/internal/source"
	"github.com/chessdash/chessdash/internal/warehouse"
)

// DefaultBaseURL is the production Chess.com published-data API root.
const DefaultBaseURL = "https://api.chess.com/pub"

// Client pages through a user's monthly game archives.
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
	return "chesscom"
}

// Description returns a human-readable description.
func (c *Client) Description() string {
	return "Chess.com (chess.com) - monthly archive API"
}

type archiveIndex struct {
	Archives []string `json:"archives"`
}

type archivePage struct {
	Games []archiveGame `json:"games"`
}

type archiveGame struct {
	URL         string `json:"url"`
	PGN         string `json:"pgn"`
	TimeControl string `json:"time_control"`
}

// FetchGames walks the monthly archives newest-first and emits each game.
func (c *Client) FetchGames(ctx context.Context, username string, maxGames int, emit func(warehouse.RawGame) error) error {
	archives, err := c.listArchives(ctx, username)
	if err != nil {
		return err
	}
	logging.Debug().
		Int("archives", len(archives)).
		Str("username", username).
		Msg("Listed chesscom archives")

	count := 0
	for i := len(archives) - 1; i >= 0; i-- {
		page, err := c.fetchArchive(ctx, archives[i])
		if err != nil {
			return err
		}

		// Within a month the API lists games oldest-first
		for j := len(page.Games) - 1; j >= 0; j-- {
			raw, err := c.parse(page.Games[j])
			if err != nil {
				logging.Warn().Err(err).Msg("Skipping unparseable chesscom game")
				continue
			}

			if err := emit(raw); err != nil {
				return err
			}
			count++
			if maxGames > 0 && count >= maxGames {
				return nil
			}
		}
	}
	return nil
}

// listArchives fetches the user's monthly archive URLs, oldest-first.
func (c *Client) listArchives(ctx context.Context, username string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/player/%s/games/archives",
		c.BaseURL, url.PathEscape(strings.ToLower(username)))

	var index archiveIndex
	if err := c.getJSON(ctx, endpoint, &index); err != nil {
		return nil, fmt.Errorf("failed to list chesscom archives: %w", err)
	}
	return index.Archives, nil
}

// fetchArchive fetches one monthly archive page.
func (c *Client) fetchArchive(ctx context.Context, archiveURL string) (*archivePage, error) {
	var page archivePage
	if err := c.getJSON(ctx, archiveURL, &page); err != nil {
		return nil, fmt.Errorf("failed to fetch chesscom archive: %w", err)
	}
	return &page, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := source.DoGet(c.HTTP, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

// parse converts one archive entry into the common shape via its PGN.
func (c *Client) parse(g archiveGame) (warehouse.RawGame, error) {
	opt, err := chess.PGN(strings.NewReader(g.PGN))
	if err != nil {
		return warehouse.RawGame{}, fmt.Errorf("failed to parse PGN: %w", err)
	}
	game := chess.NewGame(opt)

	tag := func(key string) string {
		if p := game.GetTagPair(key); p != nil {
			return p.Value
		}
		return ""
	}

	// The PGN reader is lenient and will accept junk as an empty game;
	// a real archive entry always carries these headers
	if tag("White") == "" || tag("Black") == "" || tag("Result") == "" {
		return warehouse.RawGame{}, fmt.Errorf("PGN missing required headers")
	}

	gameURL := g.URL
	if gameURL == "" {
		gameURL = tag("Link")
	}

	raw := warehouse.RawGame{
		Source:           "chesscom",
		SourceGameID:     gameID(gameURL),
		White:            tag("White"),
		Black:            tag("Black"),
		Event:            tag("Event"),
		EventSite:        tag("Site"),
		EventRound:       tag("Round"),
		Result:           tag("Result"),
		ECO:              tag("ECO"),
		OpeningName:      tag("Opening"),
		OpeningVariation: tag("Variation"),
		TimeControl:      g.TimeControl,
		URL:              gameURL,
		Moves:            moveText(game),
	}
	if raw.OpeningName == "" {
		// Most live-chess PGNs only carry the opening as an ECOUrl
		raw.OpeningName = openingName(tag("ECOUrl"))
	}
	if raw.TimeControl == "" {
		raw.TimeControl = tag("TimeControl")
	}

	date := tag("UTCDate")
	if date == "" {
		date = tag("Date")
	}
	raw.Year, raw.Month, raw.Day = parseDate(date)

	return raw, nil
}

// gameID extracts the numeric trailing segment of a game URL.
func gameID(gameURL string) string {
	if gameURL == "" {
		return ""
	}
	parts := strings.Split(strings.TrimRight(gameURL, "/"), "/")
	return parts[len(parts)-1]
}

// openingName recovers a readable name from an ECOUrl tag such as
// https://www.chess.com/openings/Sicilian-Defense-Najdorf-Variation
func openingName(ecoURL string) string {
	if ecoURL == "" {
		return ""
	}
	parts := strings.Split(strings.TrimRight(ecoURL, "/"), "/")
	return strings.ReplaceAll(parts[len(parts)-1], "-", " ")
}

// parseDate splits a PGN date tag, treating "????.??.??" placeholders as
// unknown components.
func parseDate(date string) (year, month, day int) {
	parts := strings.Split(date, ".")
	if len(parts) != 3 {
		return 0, 0, 0
	}
	year, _ = strconv.Atoi(parts[0])
	month, _ = strconv.Atoi(parts[1])
	day, _ = strconv.Atoi(parts[2])
	return year, month, day
}

// moveText renders the game's moves in standard algebraic notation.
func moveText(game *chess.Game) string {
	moves := game.Moves()
	positions := game.Positions()
	notation := chess.AlgebraicNotation{}

	parts := make([]string, 0, len(moves))
	for i, move := range moves {
		parts = append(parts, notation.Encode(positions[i], move))
	}
	return strings.Join(parts, " ")
}

func init() {
	source.Register(New())
}
