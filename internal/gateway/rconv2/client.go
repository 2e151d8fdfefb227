// Package rconv2 implements the legacy fallback channel to the game
// server: one XOR-obfuscated command per TCP connection. There is no
// session; every operation re-dials, primes the connection with the
// obfuscated password and closes the socket afterwards.
package rconv2

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	brcfg "hllrotate/internal/config"
	"hllrotate/internal/gateway/command"
	"hllrotate/internal/logger"
)

const transportName = "rconv2"

// xorKey is the fixed obfuscation key from the RCON v2 wire description.
var xorKey = []byte("#B")

// Client executes rotation commands over the raw socket protocol.
type Client struct {
	addr       string
	password   string
	timeout    time.Duration
	classifier *command.Classifier

	// dial is swappable for tests.
	dial func(ctx context.Context, addr string, timeout time.Duration) (net.Conn, error)
}

// NewClient constructs a raw transport client from configuration.
func NewClient(cfg brcfg.RconConfig, classifier *command.Classifier) (*Client, error) {
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		return nil, fmt.Errorf("rcon.host cannot be empty")
	}
	if cfg.Port <= 0 {
		return nil, fmt.Errorf("rcon.port must be positive")
	}
	if strings.TrimSpace(cfg.Password) == "" {
		return nil, fmt.Errorf("rcon.password cannot be empty")
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		addr:       net.JoinHostPort(host, fmt.Sprintf("%d", cfg.Port)),
		password:   strings.TrimSpace(cfg.Password),
		timeout:    timeout,
		classifier: classifier,
		dial:       dialTCP,
	}, nil
}

func dialTCP(ctx context.Context, addr string, timeout time.Duration) (net.Conn, error) {
	d := net.Dialer{Timeout: timeout}
	return d.DialContext(ctx, "tcp", addr)
}

// RotationList runs rotlist and returns one entry per non-blank response
// line. The raw protocol only reports layer identifiers.
func (c *Client) RotationList(ctx context.Context) ([]command.MapEntry, error) {
	raw, err := c.send(ctx, "rotlist")
	if err != nil {
		return nil, err
	}
	var entries []command.MapEntry
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		entries = append(entries, command.MapEntry{ID: line})
	}
	return entries, nil
}

// RotationAdd appends one map to the live rotation.
func (c *Client) RotationAdd(ctx context.Context, name string) error {
	_, err := c.send(ctx, "rotadd "+strings.TrimSpace(name))
	return err
}

// RotationDelete removes one map from the live rotation.
func (c *Client) RotationDelete(ctx context.Context, name string) error {
	_, err := c.send(ctx, "rotdel "+strings.TrimSpace(name))
	return err
}

// send runs a single obfuscated command over a fresh connection.
func (c *Client) send(ctx context.Context, cmd string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("rconv2 client not initialized")
	}
	op := strings.Fields(cmd)[0]
	logger.Debugf("rconv2: dialing %s for %s", c.addr, op)

	conn, err := c.dial(ctx, c.addr, c.timeout)
	if err != nil {
		return "", c.netErr(op, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return "", c.netErr(op, err)
	}

	// Connection priming: obfuscated password first, then the command.
	if _, err := conn.Write(xorCrypt([]byte(c.password))); err != nil {
		return "", c.netErr(op, err)
	}
	if _, err := conn.Write(xorCrypt([]byte(cmd))); err != nil {
		return "", c.netErr(op, err)
	}

	buf := make([]byte, 4096)
	n, err := conn.Read(buf)
	if err != nil {
		return "", c.netErr(op, err)
	}
	out := string(xorCrypt(buf[:n]))
	if reply := strings.TrimSpace(out); strings.HasPrefix(strings.ToUpper(reply), "FAIL") {
		return "", &command.TransportError{
			Kind:      command.KindRejected,
			Transport: transportName,
			Op:        op,
			Reason:    c.classifier.Classify(reply),
			Body:      reply,
		}
	}
	return out, nil
}

func (c *Client) netErr(op string, err error) error {
	return &command.TransportError{
		Kind:      command.KindNetwork,
		Transport: transportName,
		Op:        op,
		Err:       err,
	}
}

// xorCrypt applies the fixed repeating key; the cipher is symmetric so the
// same function encodes and decodes.
func xorCrypt(data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ xorKey[i%len(xorKey)]
	}
	return out
}
