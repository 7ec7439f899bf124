// Package yunhu pushes HTML boards to Yunhu chats through the bot open API.
package yunhu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public open API endpoint.
const DefaultBaseURL = "https://chat-go.jwzhd.com/open-apis/v1"

const (
	codeOK              = 1
	maxResponseBodySize = 1 << 20
	defaultTimeout      = 10 * time.Second
)

// APIError is returned when the API answers with a non-success code.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "unknown error"
	}
	return fmt.Sprintf("yunhu api error %d: %s", e.Code, msg)
}

// Board is one board push.
type Board struct {
	ChatID   string
	ChatType string
	Content  string
	ExpireAt time.Time
}

type setBoardRequest struct {
	ChatID      string `json:"chatId"`
	ChatType    string `json:"chatType"`
	MemberID    string `json:"memberId"`
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
	ExpireTime  int64  `json:"expireTime"`
}

type apiResponse struct {
	Code    int    `json:"code"`
	Msg     string `json:"msg"`
	Message string `json:"message"`
}

// Publisher sets a chat board.
type Publisher interface {
	SetBoard(ctx context.Context, b Board) error
}

// Client is a rate-limited board API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRate limits calls to perSecond requests per second (burst 1).
// A non-positive value disables limiting.
func WithRate(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// NewClient creates a Client for baseURL (DefaultBaseURL when empty).
func NewClient(baseURL, token string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(2, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetBoard replaces the board content of a chat.
func (c *Client) SetBoard(ctx context.Context, b Board) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(setBoardRequest{
		ChatID:      b.ChatID,
		ChatType:    b.ChatType,
		MemberID:    "",
		ContentType: "html",
		Content:     b.Content,
		ExpireTime:  b.ExpireAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode board: %w", err)
	}

	endpoint := c.baseURL + "/bot/board?token=" + url.QueryEscape(c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var out apiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("undecodable response (http %d): %w", resp.StatusCode, err)
	}
	if out.Code != codeOK {
		msg := out.Msg
		if msg == "" {
			msg = out.Message
		}
		return &APIError{Code: out.Code, Message: msg}
	}
	return nil
}
