// Package pokeapi is the external data source for Pokémon lookups.
package pokeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"pokeinfo/statehub/internal/model"
)

var (
	ErrNotFound = errors.New("pokemon not found")
	ErrUpstream = errors.New("pokemon api error")
)

// maxResponseBytes bounds how much of an upstream reply is decoded.
const maxResponseBytes = 1 << 20

const pokemonQuery = `query PokemonInfo($name: String) {
  pokemon(name: $name) {
    id
    number
    name
    image
    attacks {
      special {
        name
        type
        damage
      }
    }
  }
}`

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlResponse struct {
	Data struct {
		Pokemon *model.Pokemon `json:"pokemon"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	delay      time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewClient talks to the GraphQL Pokémon endpoint at baseURL. delay is an
// artificial latency added before every lookup so the loading state is visible.
func NewClient(baseURL string, timeout, delay time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		delay:      delay,
		logger:     logger,
		now:        time.Now,
	}
}

// FetchByKey looks up a Pokémon by name (case-insensitive).
func (c *Client) FetchByKey(ctx context.Context, name string) (model.Pokemon, error) {
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return model.Pokemon{}, ctx.Err()
		}
	}

	body, err := json.Marshal(graphqlRequest{
		Query:     pokemonQuery,
		Variables: map[string]any{"name": strings.ToLower(name)},
	})
	if err != nil {
		return model.Pokemon{}, fmt.Errorf("encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/", bytes.NewReader(body))
	if err != nil {
		return model.Pokemon{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json;charset=UTF-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.Pokemon{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	var out graphqlResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return model.Pokemon{}, fmt.Errorf("%w: decode response (status %d): %v", ErrUpstream, resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK || len(out.Errors) > 0 {
		msgs := make([]string, 0, len(out.Errors))
		for _, e := range out.Errors {
			msgs = append(msgs, e.Message)
		}
		c.logger.Warn("pokemon api returned errors",
			zap.Int("status", resp.StatusCode), zap.Strings("errors", msgs))
		return model.Pokemon{}, fmt.Errorf("%w: %s", ErrUpstream, strings.Join(msgs, "\n"))
	}
	if out.Data.Pokemon == nil {
		return model.Pokemon{}, fmt.Errorf("%w: no pokemon with the name %q", ErrNotFound, name)
	}

	p := *out.Data.Pokemon
	p.FetchedAt = c.now().Format("15:04 05.000")
	return p, nil
}
