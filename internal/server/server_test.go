package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"townsquare/internal/config"
	"townsquare/internal/middleware"
	"townsquare/internal/models"
	"townsquare/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:           "0",
		Env:            "test",
		JWTSecret:      "test-secret-that-is-long-enough-000",
		JWTIssuer:      "townsquare-id",
		JWTAudience:    "townsquare-api",
		AllowedOrigins: "http://localhost:5173",
	}
}

type testEnv struct {
	srv *Server
	db  *gorm.DB
	app *fiber.App
}

func newTestEnv(t *testing.T, rdb *redis.Client) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)
	srv, err := NewServerWithDeps(testConfig(), db, rdb)
	require.NoError(t, err)
	return &testEnv{srv: srv, db: db, app: srv.NewApp()}
}

func (e *testEnv) token(t *testing.T, userID uint) string {
	t.Helper()
	tok, err := middleware.IssueToken(e.srv.config, userID, time.Hour)
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(t *testing.T, method, path string, userID uint, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if userID != 0 {
		req.Header.Set("Authorization", "Bearer "+e.token(t, userID))
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.do(t, http.MethodGet, "/health/live", 0, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/health/ready", 0, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "healthy", body.Checks["database"])
	assert.Equal(t, "disabled", body.Checks["redis"])
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, path := range []string{"/api/communities", "/api/cart", "/api/users/me", "/api/products/mine"} {
		resp := env.do(t, http.MethodGet, path, 0, nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestCreateUser_Public(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.do(t, http.MethodPost, "/api/users", 0, map[string]any{
		"username": "new_member",
		"email":    "New@Example.com",
		"age":      25,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var user models.User
	decodeBody(t, resp, &user)
	assert.Equal(t, "new@example.com", user.Email)
	assert.True(t, user.Active)

	resp = env.do(t, http.MethodPost, "/api/users", 0, map[string]any{
		"username": "new_member",
		"email":    "other@example.com",
		"age":      25,
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestCommunityLifecycle_HTTP(t *testing.T) {
	env := newTestEnv(t, nil)
	owner := testutil.CreateUser(t, env.db, "owner", 40)
	member := testutil.CreateUser(t, env.db, "member", 30)
	outsider := testutil.CreateUser(t, env.db, "outsider", 30)

	resp := env.do(t, http.MethodPost, "/api/communities", owner.ID, map[string]any{"name": "Makers"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var community models.Community
	decodeBody(t, resp, &community)
	base := fmt.Sprintf("/api/communities/%d", community.ID)

	resp = env.do(t, http.MethodPost, base+"/marketplaces", owner.ID, map[string]any{"name": "Swap"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp = env.do(t, http.MethodPost, base+"/chatrooms", owner.ID, map[string]any{"name": "General"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	t.Run("outsider is denied", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, base, outsider.ID, nil)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("member can join and view", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, base+"/join", member.ID, nil)
		require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

		resp = env.do(t, http.MethodGet, base, member.ID, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var got struct {
			Name         string               `json:"name"`
			IsMember     bool                 `json:"is_member"`
			Marketplaces []models.Marketplace `json:"marketplaces"`
			Chatrooms    []models.Chatroom    `json:"chatrooms"`
		}
		decodeBody(t, resp, &got)
		assert.True(t, got.IsMember)
		assert.Len(t, got.Marketplaces, 1)
		assert.Len(t, got.Chatrooms, 1)
	})

	t.Run("member cannot delete", func(t *testing.T) {
		resp := env.do(t, http.MethodDelete, base, member.ID, nil)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("creator delete cascades", func(t *testing.T) {
		resp := env.do(t, http.MethodDelete, base, owner.ID, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var cascade CascadeResponse
		decodeBody(t, resp, &cascade)
		assert.False(t, cascade.Active)
		assert.Equal(t, int64(1), cascade.Marketplaces)
		assert.Equal(t, int64(1), cascade.Chatrooms)

		resp = env.do(t, http.MethodGet, base, member.ID, nil)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

		resp = env.do(t, http.MethodGet, "/api/communities/manage", owner.ID, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var managed []models.Community
		decodeBody(t, resp, &managed)
		require.Len(t, managed, 1)
		assert.False(t, managed[0].Active)
	})

	t.Run("creator restore reverses cascade", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, base+"/restore", owner.ID, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var cascade CascadeResponse
		decodeBody(t, resp, &cascade)
		assert.True(t, cascade.Active)
		assert.Equal(t, int64(1), cascade.Marketplaces)
		assert.Equal(t, int64(1), cascade.Chatrooms)
	})

	t.Run("creator cannot leave", func(t *testing.T) {
		resp := env.do(t, http.MethodDelete, base+"/members/me", owner.ID, nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid id", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/api/communities/abc", owner.ID, nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestAccessDenied_BrowserRedirect(t *testing.T) {
	env := newTestEnv(t, nil)
	owner := testutil.CreateUser(t, env.db, "owner", 40)
	outsider := testutil.CreateUser(t, env.db, "outsider", 30)
	community := testutil.CreateCommunity(t, env.db, owner, "Private")

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/communities/%d", community.ID), nil)
	req.Header.Set("Accept", "text/html")
	req.Header.Set("Authorization", "Bearer "+env.token(t, outsider.ID))
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/access-denied", resp.Header.Get("Location"))

	page := httptest.NewRequest(http.MethodGet, "/access-denied", nil)
	page.Header.Set("Accept", "text/html")
	resp, err = env.app.Test(page, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestMarketplaceBuyAndPay_HTTP(t *testing.T) {
	env := newTestEnv(t, nil)
	seller := testutil.CreateUser(t, env.db, "seller", 40)
	buyer := testutil.CreateUser(t, env.db, "buyer", 30)
	rival := testutil.CreateUser(t, env.db, "rival", 30)
	community := testutil.CreateCommunity(t, env.db, seller, "Market Town")
	testutil.AddCommunityMember(t, env.db, community.ID, buyer.ID)
	testutil.AddCommunityMember(t, env.db, community.ID, rival.ID)
	mp := testutil.CreateMarketplace(t, env.db, community.ID, "Stalls")

	resp := env.do(t, http.MethodPost, fmt.Sprintf("/api/marketplaces/%d/products", mp.ID), seller.ID, map[string]any{
		"name":  "Lamp",
		"price": "12.50",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var product models.Product
	decodeBody(t, resp, &product)

	resp = env.do(t, http.MethodPost, fmt.Sprintf("/api/marketplaces/%d/products", mp.ID), seller.ID, map[string]any{
		"name":  "Bad price",
		"price": "1.999",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	buyPath := fmt.Sprintf("/api/products/%d/buy", product.ID)

	resp = env.do(t, http.MethodPost, buyPath, seller.ID, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "seller cannot buy own product")

	resp = env.do(t, http.MethodPost, buyPath, buyer.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodPost, buyPath, rival.ID, nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, fmt.Sprintf("/api/cart/%d", product.ID), rival.ID, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/cart", buyer.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var cart struct {
		Count int    `json:"count"`
		Total string `json:"total"`
	}
	decodeBody(t, resp, &cart)
	assert.Equal(t, 1, cart.Count)
	assert.Equal(t, "12.5", cart.Total)

	resp = env.do(t, http.MethodPost, "/api/cart/pay", buyer.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var receipt struct {
		Count int `json:"count"`
	}
	decodeBody(t, resp, &receipt)
	assert.Equal(t, 1, receipt.Count)

	resp = env.do(t, http.MethodPost, "/api/cart/pay", buyer.ID, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "empty cart")
}

func TestChatroomMessages_HTTP(t *testing.T) {
	env := newTestEnv(t, nil)
	owner := testutil.CreateUser(t, env.db, "owner", 40)
	member := testutil.CreateUser(t, env.db, "member", 30)
	community := testutil.CreateCommunity(t, env.db, owner, "Chatty")
	testutil.AddCommunityMember(t, env.db, community.ID, member.ID)
	room := testutil.CreateChatroom(t, env.db, community.ID, "General")
	roomPath := fmt.Sprintf("/api/chatrooms/%d", room.ID)

	resp := env.do(t, http.MethodPost, roomPath+"/messages", member.ID, PostMessageRequest{Content: "hi"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode, "must join the chatroom first")

	resp = env.do(t, http.MethodPost, roomPath+"/join", member.ID, nil)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodPost, roomPath+"/messages", member.ID, PostMessageRequest{Content: "  hello  "})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var msg models.Message
	decodeBody(t, resp, &msg)
	assert.Equal(t, "hello", msg.Content)

	resp = env.do(t, http.MethodPost, roomPath+"/messages", member.ID, PostMessageRequest{Content: "   "})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodGet, roomPath, member.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var detail struct {
		Messages []models.Message `json:"messages"`
	}
	decodeBody(t, resp, &detail)
	require.Len(t, detail.Messages, 1)
	assert.Equal(t, "hello", detail.Messages[0].Content)
}

func TestChatroomHistoryPaging_HTTP(t *testing.T) {
	env := newTestEnv(t, nil)
	owner := testutil.CreateUser(t, env.db, "owner", 40)
	community := testutil.CreateCommunity(t, env.db, owner, "Archive")
	room := testutil.CreateChatroom(t, env.db, community.ID, "General")
	testutil.AddChatroomMember(t, env.db, room.ID, owner.ID)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 120; i++ {
		require.NoError(t, env.db.Create(&models.Message{
			Content:    fmt.Sprintf("m%d", i),
			SentAt:     base.Add(time.Duration(i) * time.Second),
			SenderID:   owner.ID,
			ChatroomID: room.ID,
		}).Error)
	}

	type page struct {
		Messages []models.Message `json:"messages"`
		HasMore  bool             `json:"has_more"`
	}
	var contents []string
	path := fmt.Sprintf("/api/chatrooms/%d/messages", room.ID)
	for {
		resp := env.do(t, http.MethodGet, path, owner.ID, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var p page
		decodeBody(t, resp, &p)
		batch := make([]string, 0, len(p.Messages))
		for _, m := range p.Messages {
			batch = append(batch, m.Content)
		}
		contents = append(batch, contents...)
		if !p.HasMore {
			break
		}
		path = fmt.Sprintf("/api/chatrooms/%d/messages?before=%d", room.ID, p.Messages[0].ID)
	}

	require.Len(t, contents, 120)
	assert.Equal(t, "m0", contents[0])
	assert.Equal(t, "m119", contents[119])

	resp := env.do(t, http.MethodGet, fmt.Sprintf("/api/chatrooms/%d/messages?limit=10", room.ID), owner.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var latest page
	decodeBody(t, resp, &latest)
	require.Len(t, latest.Messages, 10)
	assert.Equal(t, "m110", latest.Messages[0].Content)
	assert.True(t, latest.HasMore)
}

func TestWSTicket_SingleUse(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	env := newTestEnv(t, rdb)
	user := testutil.CreateUser(t, env.db, "socket", 30)

	resp := env.do(t, http.MethodPost, "/api/ws/ticket", user.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var ticket WSTicketResponse
	decodeBody(t, resp, &ticket)
	require.NotEmpty(t, ticket.Ticket)
	assert.Equal(t, 30, ticket.ExpiresIn)
	assert.True(t, mr.Exists("ws_ticket:"+ticket.Ticket))

	redeem := func() int {
		req := httptest.NewRequest(http.MethodGet, "/api/users/me?ticket="+ticket.Ticket, nil)
		resp, err := env.app.Test(req, -1)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		return resp.StatusCode
	}
	assert.Equal(t, fiber.StatusOK, redeem())
	assert.Equal(t, fiber.StatusUnauthorized, redeem(), "tickets are single use")
}

func TestWSTicket_ExpiresAfterTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	env := newTestEnv(t, rdb)
	user := testutil.CreateUser(t, env.db, "late", 30)

	resp := env.do(t, http.MethodPost, "/api/ws/ticket", user.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var ticket WSTicketResponse
	decodeBody(t, resp, &ticket)

	mr.FastForward(31 * time.Second)

	req := httptest.NewRequest(http.MethodGet, "/api/users/me?ticket="+ticket.Ticket, nil)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestWSTicket_RequiresRedis(t *testing.T) {
	env := newTestEnv(t, nil)
	user := testutil.CreateUser(t, env.db, "nocache", 30)

	resp := env.do(t, http.MethodPost, "/api/ws/ticket", user.ID, nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestRevokedToken(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	env := newTestEnv(t, rdb)
	user := testutil.CreateUser(t, env.db, "revoked", 30)

	tok := env.token(t, user.ID)
	_, claims, err := middleware.ParseToken(env.srv.config, tok)
	require.NoError(t, err)
	require.NoError(t, mr.Set("blacklist:"+claims.ID, "1"))

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocketChat_RequiresUpgrade(t *testing.T) {
	env := newTestEnv(t, nil)
	user := testutil.CreateUser(t, env.db, "plainhttp", 30)

	resp := env.do(t, http.MethodGet, "/api/ws/chat", user.ID, nil)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

func TestSetupMiddleware_RateLimitedResponseIncludesCORSHeaders(t *testing.T) {
	srv := &Server{
		config: &config.Config{
			AllowedOrigins: "http://localhost:5173",
		},
	}

	app := fiber.New()
	srv.SetupMiddleware(app)
	app.Get("/limited", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 100; i++ {
		req := httptest.NewRequest(http.MethodGet, "/limited", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	}

	req := httptest.NewRequest(http.MethodGet, "/limited", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}
