// Package crcon implements the primary remote-administration channel: the
// CRCON HTTP API. The client holds one persistent http.Client (connection
// pool plus session cookie jar) for its lifetime and speaks the small
// endpoint subset rotation enforcement needs.
package crcon

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	brcfg "hllrotate/internal/config"
	"hllrotate/internal/gateway/command"
	"hllrotate/internal/logger"
	"hllrotate/internal/pkg/text"

	"github.com/tidwall/gjson"
)

const transportName = "crcon"

// Client wraps the CRCON REST endpoints required for rotation enforcement.
type Client struct {
	baseURL    *url.URL
	apiPrefix  string
	httpClient *http.Client
	username   string
	password   string
	token      string
	classifier *command.Classifier

	loggedIn bool
}

// NewClient constructs a CRCON client from configuration. Exactly one auth
// mode is active for the client's lifetime: bearer token when configured,
// otherwise a cookie session established by /login.
func NewClient(cfg brcfg.CrconConfig, classifier *command.Classifier) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, fmt.Errorf("crcon.base_url cannot be empty")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing crcon.base_url failed: %w", err)
	}
	token := strings.TrimSpace(cfg.BearerToken)
	username := strings.TrimSpace(cfg.Username)
	password := strings.TrimSpace(cfg.Password)
	if token == "" && (username == "" || password == "") {
		return nil, fmt.Errorf("crcon requires bearer_token or username+password")
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402
		} else {
			transport.TLSClientConfig.InsecureSkipVerify = true // #nosec G402
		}
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("building cookie jar failed: %w", err)
	}
	prefix := strings.TrimSpace(cfg.APIPrefix)
	if prefix == "" {
		prefix = "/api"
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return &Client{
		baseURL:    parsed,
		apiPrefix:  strings.TrimSuffix(prefix, "/"),
		httpClient: &http.Client{Timeout: timeout, Transport: transport, Jar: jar},
		username:   username,
		password:   password,
		token:      token,
		classifier: classifier,
	}, nil
}

// SetHTTPClient sets the HTTP client for testing.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Login authenticates the session-mode client and retains the session
// cookie. Token-mode clients never call it.
func (c *Client) Login(ctx context.Context) error {
	payload := map[string]string{"username": c.username, "password": c.password}
	_, err := c.doRequest(ctx, http.MethodPost, "/login", payload)
	if err != nil {
		if te, ok := command.AsTransportError(err); ok {
			te.Kind = command.KindAuth
		}
		return err
	}
	c.loggedIn = true
	logger.Debugf("crcon: session established for %s", c.username)
	return nil
}

// GetMapRotation fetches the live rotation. Index 0 is the map currently
// being played.
func (c *Client) GetMapRotation(ctx context.Context) ([]command.MapEntry, error) {
	res, err := c.call(ctx, http.MethodGet, "/get_map_rotation", nil)
	if err != nil {
		return nil, err
	}
	return parseEntryList(res, "rotation"), nil
}

// GetMaps fetches the full map catalog.
func (c *Client) GetMaps(ctx context.Context) ([]command.MapEntry, error) {
	res, err := c.call(ctx, http.MethodGet, "/get_maps", nil)
	if err != nil {
		return nil, err
	}
	return parseEntryList(res, "maps"), nil
}

type mutationPayload struct {
	MapNames  []string `json:"map_names"`
	Arguments struct {
		MapNames []string `json:"map_names"`
	} `json:"arguments"`
}

func newMutationPayload(names []string) mutationPayload {
	var p mutationPayload
	p.MapNames = names
	p.Arguments.MapNames = names
	return p
}

// AddMapsToRotation appends names to the rotation queue in order.
func (c *Client) AddMapsToRotation(ctx context.Context, names []string) error {
	_, err := c.call(ctx, http.MethodPost, "/add_maps_to_rotation", newMutationPayload(names))
	return err
}

// RemoveMapsFromRotation removes names from the rotation queue.
func (c *Client) RemoveMapsFromRotation(ctx context.Context, names []string) error {
	_, err := c.call(ctx, http.MethodPost, "/remove_maps_from_rotation", newMutationPayload(names))
	return err
}

// call establishes the session when needed and executes one API request.
func (c *Client) call(ctx context.Context, method, path string, payload any) (gjson.Result, error) {
	if c.token == "" && !c.loggedIn {
		if err := c.Login(ctx); err != nil {
			return gjson.Result{}, err
		}
	}
	return c.doRequest(ctx, method, path, payload)
}

func (c *Client) doRequest(ctx context.Context, method, path string, payload any) (gjson.Result, error) {
	op := strings.TrimPrefix(path, "/")
	endpoint := c.resolveEndpoint(path)

	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return gjson.Result{}, c.protocolErr(op, 0, "", err)
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return gjson.Result{}, c.protocolErr(op, 0, "", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, &command.TransportError{
			Kind:      command.KindNetwork,
			Transport: transportName,
			Op:        op,
			Err:       err,
		}
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	trimmedBody := text.Truncate(strings.TrimSpace(string(data)), 512)

	if resp.StatusCode >= 300 {
		return gjson.Result{}, c.statusErr(op, resp.StatusCode, trimmedBody)
	}
	if len(data) == 0 {
		return gjson.Result{}, nil
	}
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, c.protocolErr(op, resp.StatusCode, trimmedBody, fmt.Errorf("response is not valid json"))
	}
	parsed := gjson.ParseBytes(data)
	// CRCON wraps command failures in a 200 with failed=true.
	if parsed.Get("failed").Bool() {
		msg := parsed.Get("error").String()
		if msg == "" {
			msg = trimmedBody
		}
		return gjson.Result{}, &command.TransportError{
			Kind:      command.KindRejected,
			Transport: transportName,
			Op:        op,
			Status:    resp.StatusCode,
			Reason:    c.classifier.Classify(msg),
			Body:      text.Truncate(msg, 512),
		}
	}
	return parsed, nil
}

func (c *Client) statusErr(op string, status int, body string) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &command.TransportError{
			Kind:      command.KindAuth,
			Transport: transportName,
			Op:        op,
			Status:    status,
			Body:      body,
		}
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return &command.TransportError{
			Kind:      command.KindRejected,
			Transport: transportName,
			Op:        op,
			Status:    status,
			Reason:    c.classifier.Classify(body),
			Body:      body,
		}
	default:
		return &command.TransportError{
			Kind:      command.KindProtocol,
			Transport: transportName,
			Op:        op,
			Status:    status,
			Body:      body,
		}
	}
}

func (c *Client) protocolErr(op string, status int, body string, err error) error {
	return &command.TransportError{
		Kind:      command.KindProtocol,
		Transport: transportName,
		Op:        op,
		Status:    status,
		Body:      body,
		Err:       err,
	}
}

func (c *Client) resolveEndpoint(path string) string {
	base := *c.baseURL
	base.Path = strings.TrimSuffix(base.Path, "/") + c.apiPrefix + path
	base.RawQuery = ""
	base.Fragment = ""
	return base.String()
}
