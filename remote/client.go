package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"gambit/game"
	"gambit/searcher"
	"gambit/timectl"
)

// Client forwards decisions to a served engine. It satisfies the same
// facade as the local engines, so a remote engine plays matches like any
// other. Stats mirror the remote counters, accumulated from the deltas
// each decision reports.
type Client struct {
	baseURL string
	codec   Codec
	httpc   *http.Client

	mu    sync.Mutex
	stats searcher.Stats
}

type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client, as for timeouts or a
// custom transport.
func WithHTTPClient(httpc *http.Client) ClientOption {
	return func(c *Client) { c.httpc = httpc }
}

func NewClient(baseURL string, codec Codec, options ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		codec:   codec,
		httpc:   http.DefaultClient,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// ChooseBest asks the served engine for the best move. The control
// travels in its wire form; a control that refuses serialization, such
// as a constrained relative budget, fails here rather than granting the
// remote side time the caller already spent.
func (c *Client) ChooseBest(moves []game.Move, state game.State, tc timectl.Control) (game.Move, error) {
	if len(moves) == 0 {
		return nil, searcher.ErrNoMoves
	}
	blob, err := c.codec.EncodeState(state)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	payload := chooseRequest{State: blob}
	if tc != nil {
		param, err := tc.Param()
		if err != nil {
			return nil, fmt.Errorf("serialize time control: %w", err)
		}
		switch param.Key {
		case timectl.KeyTime:
			payload.Time = param.Value
		case timectl.KeyReltime:
			payload.Reltime = param.Value
		}
	}

	var resp chooseResponse
	if err := c.post("/v1/choose", payload, &resp); err != nil {
		return nil, err
	}

	for _, move := range moves {
		if move.String() == resp.Move {
			c.mu.Lock()
			c.stats = c.stats.Add(resp.Stats.toStats())
			c.mu.Unlock()
			return move, nil
		}
	}
	return nil, fmt.Errorf("remote move %q is not a legal move", resp.Move)
}

func (c *Client) Stats() searcher.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// ClearCache asks the served engine to drop its reusable state. The
// facade gives no way to report a failure, so one is only logged.
func (c *Client) ClearCache() {
	if err := c.post("/v1/cache/clear", struct{}{}, nil); err != nil {
		log.Warn().Err(err).Msg("remote cache clear failed")
	}
}

func (c *Client) post(path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	resp, err := c.httpc.Post(c.baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var remoteErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&remoteErr); err == nil && remoteErr.Error != "" {
			return fmt.Errorf("post %s: %s (status %d)", path, remoteErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("post %s: status %d", path, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
