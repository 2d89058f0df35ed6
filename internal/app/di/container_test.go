package di

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"split_backend/internal/api"
	"split_backend/internal/platform/cache"
	"split_backend/internal/platform/config"
	"split_backend/internal/platform/db"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func testConfig() config.Config {
	return config.Config{
		JWTSecret:     "integration-secret",
		JWTExpiration: time.Hour,
		GroupCacheTTL: time.Minute,
	}
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Migrate(context.Background(), gdb, db.DriverSQLite, Models()...))
	return gdb
}

type client struct {
	t      *testing.T
	engine *gin.Engine
	token  string
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.engine.ServeHTTP(w, req)
	return w
}

func (c *client) as(token string) *client {
	return &client{t: c.t, engine: c.engine, token: token}
}

func signupAndLogin(t *testing.T, c *client, username string) (uint, string) {
	t.Helper()
	email := username + "@example.com"

	w := c.do(http.MethodPost, "/signup", gin.H{"username": username, "email": email, "password": "password123"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var user api.UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))

	w = c.do(http.MethodPost, "/login", gin.H{"email": email, "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var tok api.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tok))
	return user.ID, tok.Token
}

func memberIDs(t *testing.T, w *httptest.ResponseRecorder) []uint {
	t.Helper()
	var g api.GroupResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &g))
	ids := make([]uint, 0, len(g.Members))
	for _, m := range g.Members {
		ids = append(ids, m.ID)
	}
	return ids
}

// TestEngine_TripToGoa drives the membership scenario through HTTP on SQLite.
func TestEngine_TripToGoa(t *testing.T) {
	gdb := setupDB(t)
	anon := &client{t: t, engine: NewEngine(gdb, nil, testConfig())}

	aliceID, aliceToken := signupAndLogin(t, anon, "alice")
	bobID, bobToken := signupAndLogin(t, anon, "bob")
	alice, bob := anon.as(aliceToken), anon.as(bobToken)

	// Unauthenticated requests never reach the handlers.
	assert.Equal(t, http.StatusUnauthorized, anon.do(http.MethodPost, "/groups", gin.H{"name": "Trip to Goa"}).Code)

	w := alice.do(http.MethodPost, "/groups", gin.H{"name": "  Trip to Goa  "})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created api.GroupResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Trip to Goa", created.Name)
	assert.Equal(t, []uint{aliceID}, memberIDs(t, w))
	groupPath := fmt.Sprintf("/groups/%d", created.ID)

	// A non-member cannot add people.
	w = bob.do(http.MethodPost, groupPath+"/members", gin.H{"user_id": bobID})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = alice.do(http.MethodPost, groupPath+"/members", gin.H{"user_id": bobID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []uint{aliceID, bobID}, memberIDs(t, w))

	w = alice.do(http.MethodPost, groupPath+"/members", gin.H{"user_id": bobID})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = alice.do(http.MethodPost, groupPath+"/members", gin.H{"user_id": 999})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = bob.do(http.MethodGet, "/me/groups", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []api.GroupResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, created.ID, mine[0].ID)

	// The creator may leave while someone else remains.
	w = alice.do(http.MethodDelete, fmt.Sprintf("%s/members/%d", groupPath, aliceID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []uint{bobID}, memberIDs(t, w))

	// The last member can never be removed.
	w = bob.do(http.MethodDelete, fmt.Sprintf("%s/members/%d", groupPath, bobID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = bob.do(http.MethodGet, groupPath+"/members", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var members []api.UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &members))
	require.Len(t, members, 1)
	assert.Equal(t, "bob", members[0].Username)
	assert.NotContains(t, w.Body.String(), "password")

	// Rename and delete stay with the creator even after they left.
	assert.Equal(t, http.StatusForbidden, bob.do(http.MethodPatch, groupPath, gin.H{"name": "Bob's trip"}).Code)
	w = alice.do(http.MethodPatch, groupPath, gin.H{"name": "Goa 2026"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = alice.do(http.MethodGet, "/groups/search?name=Goa%202026", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = alice.do(http.MethodGet, fmt.Sprintf("/users/%d/created-groups", aliceID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var createdByAlice []api.GroupResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &createdByAlice))
	assert.Len(t, createdByAlice, 1)

	assert.Equal(t, http.StatusForbidden, bob.do(http.MethodDelete, groupPath, nil).Code)
	assert.Equal(t, http.StatusNoContent, alice.do(http.MethodDelete, groupPath, nil).Code)
	assert.Equal(t, http.StatusNotFound, alice.do(http.MethodGet, groupPath, nil).Code)
	assert.Equal(t, http.StatusNotFound, alice.do(http.MethodDelete, groupPath, nil).Code)
}

func TestEngine_CreateValidation(t *testing.T) {
	gdb := setupDB(t)
	anon := &client{t: t, engine: NewEngine(gdb, nil, testConfig())}
	_, token := signupAndLogin(t, anon, "carol")

	w := anon.as(token).do(http.MethodPost, "/groups", gin.H{"name": "A"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	require.NoError(t, gdb.Table("app_groups").Count(&count).Error)
	assert.Zero(t, count, "no group is persisted on validation failure")
}

func TestEngine_Health(t *testing.T) {
	gdb := setupDB(t)
	c := &client{t: t, engine: NewEngine(gdb, nil, testConfig())}

	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/healthz", nil).Code)
	w := c.do(http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"db":"ok"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestNewGroupStore(t *testing.T) {
	gdb := setupDB(t)

	repo, tx := NewGroupStore(gdb, nil, testConfig())
	_, isCache := repo.(*cache.CachingGroupRepository)
	assert.False(t, isCache, "no Redis means no decorator")
	_, isTx := tx.(*db.Transactor)
	assert.True(t, isTx)

	rdb, _ := redismock.NewClientMock()
	repo, tx = NewGroupStore(gdb, rdb, testConfig())
	cached, isCache := repo.(*cache.CachingGroupRepository)
	require.True(t, isCache)
	assert.Same(t, cached, tx, "the decorator is also the transactor")
}
