package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexander-datskov/chat67/internal/api"
	"github.com/alexander-datskov/chat67/internal/api/middleware"
	"github.com/alexander-datskov/chat67/internal/geo"
	"github.com/alexander-datskov/chat67/internal/handlers"
	"github.com/alexander-datskov/chat67/internal/media"
	"github.com/alexander-datskov/chat67/internal/store"
)

const (
	testAdminUser = "adminof67"
	testAdminPass = "test-password"
)

type testEnv struct {
	srv   *httptest.Server
	state *store.State
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	geoStub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","country":"Testland","city":"Testville","isp":"Test ISP"}`))
	}))
	t.Cleanup(geoStub.Close)

	state := store.New()
	sessions := middleware.NewSessions("test-secret")
	h := handlers.NewHandler(state, sessions, geo.New(geoStub.URL, zerolog.Nop()), media.NewValidator(), zerolog.Nop(), testAdminUser, testAdminPass)

	srv := httptest.NewServer(api.NewRouter(zerolog.Nop(), state, sessions, h))
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, state: state}
}

// client is one browser-like caller: its own cookie jar and its own
// apparent source IP.
type client struct {
	t    *testing.T
	base string
	http *http.Client
	ip   string
}

func (e *testEnv) client(t *testing.T, ip string) *client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &client{t: t, base: e.srv.URL, http: &http.Client{Jar: jar}, ip: ip}
}

func (c *client) do(method, path string, body any) (*http.Response, map[string]any) {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", c.ip)

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func (c *client) post(path string, body any) (*http.Response, map[string]any) {
	return c.do(http.MethodPost, path, body)
}

func (c *client) get(path string) (*http.Response, map[string]any) {
	return c.do(http.MethodGet, path, nil)
}

func (c *client) login(username string) {
	c.t.Helper()
	resp, _ := c.post("/set-username", map[string]string{"username": username})
	require.Equal(c.t, http.StatusOK, resp.StatusCode)
}

func (c *client) loginAdmin() {
	c.t.Helper()
	resp, _ := c.post("/admin/login", map[string]string{"username": testAdminUser, "password": testAdminPass})
	require.Equal(c.t, http.StatusOK, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t, "100.0.0.1")

	resp, body := c.get("/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(1), body["rooms"]) // general is seeded
}

func TestSendAndPollFlow(t *testing.T) {
	env := newTestEnv(t)
	alice := env.client(t, "100.0.0.1")
	alice.login("alice")

	resp, body := alice.post("/send", map[string]string{"text": "hi <b>there</b>", "room": "general"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["message_id"])

	resp, body = alice.get("/messages?room=general&after=0")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	msgs := body["messages"].([]any)
	require.Len(t, msgs, 1)
	first := msgs[0].(map[string]any)
	assert.Equal(t, "alice", first["user"])
	// Stored HTML-escaped.
	assert.Equal(t, "hi &lt;b&gt;there&lt;/b&gt;", first["text"])
	assert.Equal(t, float64(1), body["last_index"])

	// Polling from the returned cursor yields nothing new.
	_, body = alice.get("/messages?room=general&after=1")
	assert.Empty(t, body["messages"])
	assert.Equal(t, float64(1), body["last_index"])
}

func TestSendRequiresSession(t *testing.T) {
	env := newTestEnv(t)
	anon := env.client(t, "100.0.0.9")

	resp, _ := anon.post("/send", map[string]string{"text": "hi", "room": "general"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSendToUnknownRoom(t *testing.T) {
	env := newTestEnv(t)
	alice := env.client(t, "100.0.0.1")
	alice.login("alice")

	resp, _ := alice.post("/send", map[string]string{"text": "hi", "room": "no-such-room"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestModerationFlow(t *testing.T) {
	env := newTestEnv(t)
	alice := env.client(t, "100.0.0.1")
	bob := env.client(t, "100.0.0.2")
	admin := env.client(t, "100.0.0.100")

	alice.login("alice")
	bob.login("bob")
	admin.loginAdmin()

	// Nothing active yet.
	resp, body := alice.post("/check-effects", map[string]string{"username": "alice"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["banned"])
	assert.Nil(t, body["effect"])

	// Ban alice's IP; her next poll reports it and her sends are refused.
	resp, _ = admin.post("/admin/ban", map[string]string{"type": "ip", "identifier": "100.0.0.1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body = alice.post("/check-effects", map[string]string{"username": "alice"})
	assert.Equal(t, true, body["banned"])

	resp, _ = alice.post("/send", map[string]string{"text": "still here?", "room": "general"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Bob is untouched by alice's ban.
	_, body = bob.post("/check-effects", map[string]string{"username": "bob"})
	assert.Equal(t, false, body["banned"])

	// A 10 second invert on bob shows up on his poll with a countdown.
	resp, _ = admin.post("/admin/screen-effect", map[string]any{
		"type": "user", "identifier": "bob", "action": "invert", "duration": 10,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body = bob.post("/check-effects", map[string]string{"username": "bob"})
	assert.Equal(t, false, body["banned"])
	assert.Equal(t, "invert", body["effect"])
	assert.LessOrEqual(t, body["duration"].(float64), float64(10))

	// Banning bob clears his pending effect.
	admin.post("/admin/ban", map[string]string{"type": "user", "identifier": "bob"})
	admin.post("/admin/ban", map[string]any{"type": "user", "identifier": "bob", "ban": false})

	_, body = bob.post("/check-effects", map[string]string{"username": "bob"})
	assert.Equal(t, false, body["banned"])
	assert.Nil(t, body["effect"])
}

func TestEffectOnBannedTargetIsSkipped(t *testing.T) {
	env := newTestEnv(t)
	admin := env.client(t, "100.0.0.100")
	admin.loginAdmin()

	admin.post("/admin/ban", map[string]string{"type": "user", "identifier": "carol"})

	resp, body := admin.post("/admin/screen-effect", map[string]any{
		"type": "user", "identifier": "carol", "action": "black", "duration": 0,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "skipped", body["status"])
}

func TestBannedUsernameCannotRegister(t *testing.T) {
	env := newTestEnv(t)
	admin := env.client(t, "100.0.0.100")
	admin.loginAdmin()
	admin.post("/admin/ban", map[string]string{"type": "user", "identifier": "mallory"})

	mallory := env.client(t, "100.0.0.5")
	resp, _ := mallory.post("/set-username", map[string]string{"username": "mallory"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	env := newTestEnv(t)
	alice := env.client(t, "100.0.0.1")
	alice.login("alice")

	resp, _ := alice.get("/admin/debug-info")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = alice.post("/admin/ban", map[string]string{"type": "user", "identifier": "bob"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdminLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t, "100.0.0.1")

	resp, _ := c.post("/admin/login", map[string]string{"username": testAdminUser, "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestDeleteMessageOwnership(t *testing.T) {
	env := newTestEnv(t)
	alice := env.client(t, "100.0.0.1")
	bob := env.client(t, "100.0.0.2")
	alice.login("alice")
	bob.login("bob")

	_, body := alice.post("/send", map[string]string{"text": "mine", "room": "general"})
	msgID := body["message_id"].(string)

	resp, _ := bob.post("/delete-message", map[string]string{"message_id": msgID, "room": "general"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = alice.post("/delete-message", map[string]string{"message_id": msgID, "room": "general"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body = alice.get("/messages?room=general")
	msgs := body["messages"].([]any)
	require.Len(t, msgs, 1)
	deleted := msgs[0].(map[string]any)
	assert.Equal(t, "[Message deleted]", deleted["text"])
	assert.Equal(t, true, deleted["deleted"])
}

func TestCreateRoomAndList(t *testing.T) {
	env := newTestEnv(t)
	admin := env.client(t, "100.0.0.100")
	admin.loginAdmin()

	resp, body := admin.post("/admin/create-room", map[string]string{"name": "Dev Talk", "privacy": "public"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "dev-talk", body["room_id"])

	_, body = admin.get("/rooms")
	rooms := body["rooms"].([]any)
	require.Len(t, rooms, 2)
	assert.Equal(t, "general", rooms[0].(map[string]any)["id"])
	assert.Equal(t, "dev-talk", rooms[1].(map[string]any)["id"])
}

func TestTypingAndOnlineUsers(t *testing.T) {
	env := newTestEnv(t)
	alice := env.client(t, "100.0.0.1")
	alice.login("alice")

	resp, _ := alice.post("/typing", map[string]any{"room": "general", "typing": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body := alice.get("/typing-status?room=general")
	assert.Equal(t, []any{"alice"}, body["typing"])

	_, body = alice.get("/online-users?room=general")
	users := body["users"].([]any)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].(map[string]any)["username"])

	alice.post("/typing", map[string]any{"room": "general", "typing": false})
	_, body = alice.get("/typing-status?room=general")
	assert.Empty(t, body["typing"])
}

func TestHeartbeatAndLogout(t *testing.T) {
	env := newTestEnv(t)
	alice := env.client(t, "100.0.0.1")
	alice.login("alice")

	resp, _ := alice.post("/update-active", map[string]string{"room": "general"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.state.Presence.Has("alice"))

	resp, _ = alice.post("/logout", map[string]string{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, env.state.Presence.Has("alice"))

	// Session cookie is gone; user-scoped calls fail again.
	resp, _ = alice.post("/send", map[string]string{"text": "hi", "room": "general"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSendGifFlow(t *testing.T) {
	env := newTestEnv(t)

	gifSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/gif")
	}))
	defer gifSrv.Close()

	alice := env.client(t, "100.0.0.1")
	alice.login("alice")

	resp, _ := alice.post("/send-gif", map[string]string{"url": gifSrv.URL + "/cat.gif", "room": "general"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body := alice.get("/messages?room=general")
	msgs := body["messages"].([]any)
	require.Len(t, msgs, 1)
	msg := msgs[0].(map[string]any)
	assert.Equal(t, "[GIF shared by alice]", msg["text"])
	assert.Equal(t, gifSrv.URL+"/cat.gif", msg["gif_url"])

	// A URL that serves no GIF is a client error.
	resp, _ = alice.post("/send-gif", map[string]string{"url": "http://127.0.0.1:1/x.png", "room": "general"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGlobalMessageReachesEveryRoom(t *testing.T) {
	env := newTestEnv(t)
	admin := env.client(t, "100.0.0.100")
	admin.loginAdmin()

	_, body := admin.post("/admin/create-room", map[string]string{"name": "Games"})
	require.Equal(t, "games", body["room_id"])

	resp, _ := admin.post("/admin/global-message", map[string]string{"message": "maintenance at noon"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, room := range []string{"general", "games"} {
		_, body := admin.get(fmt.Sprintf("/messages?room=%s", room))
		msgs := body["messages"].([]any)
		require.Len(t, msgs, 1, "room %s", room)
		msg := msgs[0].(map[string]any)
		assert.Equal(t, "SYSTEM", msg["user"])
		assert.Contains(t, msg["text"], "maintenance at noon")
	}
}
