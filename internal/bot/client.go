// Package bot runs the chat-bot command surface as an independent
// worker. It long-polls the messaging API and only ever talks to the
// auth gateway and the ledger engine's atomic operations; it never
// touches storage directly and keeps no per-user state in the process.
package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"casinoledger/internal/config"
)

type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type Message struct {
	From *User  `json:"from"`
	Chat Chat   `json:"chat"`
	Text string `json:"text"`
}

type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// Client is a minimal bot-API wire client (getUpdates/sendMessage).
type Client struct {
	baseURL     string
	pollTimeout time.Duration
	http        *http.Client
}

func NewClient(cfg config.BotConfig) *Client {
	return &Client{
		baseURL:     strings.TrimRight(cfg.APIBaseURL, "/") + "/bot" + cfg.Token,
		pollTimeout: cfg.PollTimeout,
		// The long poll holds the connection open for pollTimeout, so
		// the client deadline must sit beyond it.
		http: &http.Client{Timeout: cfg.PollTimeout + 10*time.Second},
	}
}

// GetUpdates long-polls for updates newer than offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	params := url.Values{}
	params.Set("offset", strconv.FormatInt(offset, 10))
	params.Set("timeout", strconv.Itoa(int(c.pollTimeout.Seconds())))

	raw, err := c.call(ctx, "getUpdates", params)
	if err != nil {
		return nil, err
	}

	var updates []Update

	err = json.Unmarshal(raw, &updates)
	if err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}

	return updates, nil
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	params := url.Values{}
	params.Set("chat_id", strconv.FormatInt(chatID, 10))
	params.Set("text", text)

	_, err := c.call(ctx, "sendMessage", params)

	return err
}

func (c *Client) call(ctx context.Context, method string, params url.Values) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/"+method, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	var body apiResponse

	err = json.NewDecoder(resp.Body).Decode(&body)
	if err != nil {
		return nil, fmt.Errorf("decode %s response: %w", method, err)
	}

	if !body.OK {
		return nil, fmt.Errorf("%s failed: %s", method, body.Description)
	}

	return body.Result, nil
}
