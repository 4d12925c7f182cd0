package piazza

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strconv"
)

const defaultBaseURL = "https://piazza.com"

// Client is a logged-in session against one Piazza network (one course).
// Piazza exposes a single RPC endpoint; every call posts a method name
// and params.
type Client struct {
	baseURL   string
	networkID string
	http      *http.Client
}

// Login authenticates and returns a client bound to the given network.
func Login(networkID, email, password string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	c := &Client{
		baseURL:   defaultBaseURL,
		networkID: networkID,
		http:      &http.Client{Jar: jar},
	}

	var result json.RawMessage
	err = c.call(context.Background(), "user.login", map[string]any{
		"email": email,
		"pass":  password,
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("piazza login: %w", err)
	}

	return c, nil
}

type rpcRequest struct {
	Method string `json:"method"`
	Params any    `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

func (c *Client) call(ctx context.Context, method string, params any, result any) error {
	payload, err := json.Marshal(rpcRequest{Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/logic/api?method=%s", c.baseURL, method)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("piazza error (status %d): %s", resp.StatusCode, string(body))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	if rpcResp.Error != "" {
		return fmt.Errorf("piazza error: %s", rpcResp.Error)
	}

	if result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("unmarshal result: %w", err)
		}
	}
	return nil
}

type feedResult struct {
	Feed []struct {
		Nr json.Number `json:"nr"`
	} `json:"feed"`
}

// Feed returns the post numbers in the course's recent feed.
func (c *Client) Feed(ctx context.Context, limit int) ([]int, error) {
	var result feedResult
	err := c.call(ctx, "network.get_feed", map[string]any{
		"nid":    c.networkID,
		"limit":  limit,
		"offset": 0,
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("fetching feed: %w", err)
	}

	var ids []int
	for _, entry := range result.Feed {
		id, err := strconv.Atoi(entry.Nr.String())
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

type postResult struct {
	History []struct {
		Subject string `json:"subject"`
		Content string `json:"content"`
	} `json:"history"`
}

// Post fetches a full post and returns its plain-text subject and body.
// The latest revision is first in the history array.
func (c *Client) Post(ctx context.Context, id int) (string, error) {
	var result postResult
	err := c.call(ctx, "content.get", map[string]any{
		"nid": c.networkID,
		"cid": id,
	}, &result)
	if err != nil {
		return "", fmt.Errorf("fetching post %d: %w", id, err)
	}

	if len(result.History) == 0 {
		return "", nil
	}

	latest := result.History[0]
	return ExtractContent(latest.Subject, latest.Content), nil
}
