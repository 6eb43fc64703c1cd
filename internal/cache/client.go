package cache

import (
	"encoding/json"
	"errors"
	"net"
	"time"
)

// Client implements KV over a Unix socket. Every operation opens its own
// short-lived connection, so a Client carries no state worth closing.
type Client struct {
	socketPath string
}

func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath}
}

func (c *Client) roundTrip(req *Request) (Response, error) {
	var resp Response
	conn, err := net.DialTimeout("unix", c.socketPath, 500*time.Millisecond)
	if err != nil {
		return resp, err
	}
	defer conn.Close()

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return resp, err
	}
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return resp, err
	}
	if !resp.OK {
		if resp.Error == "" {
			return resp, errors.New("cache: daemon rejected request")
		}
		return resp, errors.New(resp.Error)
	}
	return resp, nil
}

func (c *Client) Get(key string) ([]byte, bool, error) {
	resp, err := c.roundTrip(&Request{Op: "get", Key: key})
	if err != nil {
		return nil, false, err
	}
	if !resp.Found {
		return nil, false, nil
	}
	return append([]byte(nil), resp.Value...), true, nil
}

func (c *Client) Set(key string, value []byte, ttl time.Duration) error {
	req := Request{Op: "set", Key: key, Value: value, TTLSeconds: int64(ttl / time.Second)}
	_, err := c.roundTrip(&req)
	return err
}

func (c *Client) Delete(key string) error {
	_, err := c.roundTrip(&Request{Op: "delete", Key: key})
	return err
}

func (c *Client) IsValid(key string) (bool, error) {
	resp, err := c.roundTrip(&Request{Op: "check", Key: key})
	if err != nil {
		return false, err
	}
	return resp.Found, nil
}

var _ KV = (*Client)(nil)
