package crcon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	brcfg "hllrotate/internal/config"
	"hllrotate/internal/gateway/command"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, cfg brcfg.CrconConfig) *Client {
	t.Helper()
	c, err := NewClient(cfg, command.NewClassifier(nil, nil))
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(brcfg.CrconConfig{BaseURL: "http://rcon.local"}, command.NewClassifier(nil, nil))
	assert.Error(t, err)

	_, err = NewClient(brcfg.CrconConfig{BearerToken: "tok"}, command.NewClassifier(nil, nil))
	assert.Error(t, err, "base_url is required")
}

func TestBearerTokenAuth(t *testing.T) {
	var gotAuth string
	var loginCalls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/login" {
			loginCalls++
		}
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"result": []}`))
	}))
	defer ts.Close()

	c := testClient(t, brcfg.CrconConfig{BaseURL: ts.URL, BearerToken: "tok"})
	_, err := c.GetMapRotation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Zero(t, loginCalls, "token mode must not hit /login")
}

func TestSessionLoginOnFirstCall(t *testing.T) {
	var loginCalls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/login":
			loginCalls++
			var creds map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			assert.Equal(t, "admin", creds["username"])
			assert.Equal(t, "hunter2", creds["password"])
			http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: "abc"})
			w.Write([]byte(`{}`))
		case "/api/get_map_rotation":
			cookie, err := r.Cookie("sessionid")
			require.NoError(t, err, "rotation call must carry the session cookie")
			assert.Equal(t, "abc", cookie.Value)
			w.Write([]byte(`["carentan_warfare"]`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer ts.Close()

	c := testClient(t, brcfg.CrconConfig{BaseURL: ts.URL, Username: "admin", Password: "hunter2"})

	for i := 0; i < 2; i++ {
		entries, err := c.GetMapRotation(context.Background())
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "carentan_warfare", entries[0].Canonical())
	}
	assert.Equal(t, 1, loginCalls, "session is reused across calls")
}

func TestLoginFailureIsAuthError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	}))
	defer ts.Close()

	c := testClient(t, brcfg.CrconConfig{BaseURL: ts.URL, Username: "admin", Password: "wrong"})
	_, err := c.GetMapRotation(context.Background())
	require.Error(t, err)
	te, ok := command.AsTransportError(err)
	require.True(t, ok)
	assert.Equal(t, command.KindAuth, te.Kind)
}

func TestRotationEnvelopeShapes(t *testing.T) {
	cases := map[string]string{
		"bare array":     `["stmariedumont_warfare"]`,
		"result array":   `{"result": ["stmariedumont_warfare"]}`,
		"nested object":  `{"result": {"rotation": [{"id": "stmariedumont_warfare", "pretty_name": "St Marie Du Mont Warfare"}]}}`,
		"object entries": `{"result": [{"map": {"id": "stmariedumont_warfare"}}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			defer ts.Close()

			c := testClient(t, brcfg.CrconConfig{BaseURL: ts.URL, BearerToken: "tok"})
			entries, err := c.GetMapRotation(context.Background())
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, "stmariedumont_warfare", entries[0].Canonical())
		})
	}
}

func TestMutationPayloadShape(t *testing.T) {
	var got map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/add_maps_to_rotation", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"failed": false}`))
	}))
	defer ts.Close()

	c := testClient(t, brcfg.CrconConfig{BaseURL: ts.URL, BearerToken: "tok"})
	require.NoError(t, c.AddMapsToRotation(context.Background(), []string{"foy_warfare"}))

	assert.Equal(t, []any{"foy_warfare"}, got["map_names"])
	args, ok := got["arguments"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{"foy_warfare"}, args["map_names"])
}

func TestFailedEnvelopeIsRejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"failed": true, "error": "map foy_warfare not in rotation"}`))
	}))
	defer ts.Close()

	c := testClient(t, brcfg.CrconConfig{BaseURL: ts.URL, BearerToken: "tok"})
	err := c.RemoveMapsFromRotation(context.Background(), []string{"foy_warfare"})
	require.Error(t, err)
	te, ok := command.AsTransportError(err)
	require.True(t, ok)
	assert.Equal(t, command.KindRejected, te.Kind)
	assert.Equal(t, command.ReasonNotApplicable, te.Reason)
	assert.True(t, command.IsNoOp(err))
}

func TestStatusCodeClassification(t *testing.T) {
	cases := []struct {
		status int
		body   string
		kind   command.ErrorKind
		reason command.RejectedReason
	}{
		{http.StatusUnauthorized, "nope", command.KindAuth, command.ReasonUnknown},
		{http.StatusForbidden, "nope", command.KindAuth, command.ReasonUnknown},
		{http.StatusBadRequest, "invalid map name", command.KindRejected, command.ReasonInvalidName},
		{http.StatusUnprocessableEntity, "request was invalid", command.KindRejected, command.ReasonInvalidName},
		{http.StatusInternalServerError, "boom", command.KindProtocol, command.ReasonUnknown},
	}
	for _, tc := range cases {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, tc.body, tc.status)
		}))
		c := testClient(t, brcfg.CrconConfig{BaseURL: ts.URL, BearerToken: "tok"})
		_, err := c.GetMapRotation(context.Background())
		ts.Close()

		require.Error(t, err, "status %d", tc.status)
		te, ok := command.AsTransportError(err)
		require.True(t, ok)
		assert.Equal(t, tc.kind, te.Kind, "status %d", tc.status)
		assert.Equal(t, tc.reason, te.Reason, "status %d", tc.status)
	}
}

func TestUnreachableServerIsNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	c := testClient(t, brcfg.CrconConfig{BaseURL: url, BearerToken: "tok"})
	_, err := c.GetMapRotation(context.Background())
	require.Error(t, err)
	te, ok := command.AsTransportError(err)
	require.True(t, ok)
	assert.Equal(t, command.KindNetwork, te.Kind)
}

func TestNonJSONBodyIsProtocolError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway</html>"))
	}))
	defer ts.Close()

	c := testClient(t, brcfg.CrconConfig{BaseURL: ts.URL, BearerToken: "tok"})
	_, err := c.GetMapRotation(context.Background())
	require.Error(t, err)
	te, ok := command.AsTransportError(err)
	require.True(t, ok)
	assert.Equal(t, command.KindProtocol, te.Kind)
}
