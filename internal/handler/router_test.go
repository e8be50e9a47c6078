package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"pokeinfo/statehub/internal/config"
	"pokeinfo/statehub/internal/fetchstate"
	"pokeinfo/statehub/internal/model"
	"pokeinfo/statehub/internal/pokeapi"
	"pokeinfo/statehub/internal/repository"
	"pokeinfo/statehub/internal/service"
	jwtpkg "pokeinfo/statehub/pkg/jwt"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testApp struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func newTestApp(t *testing.T) *testApp {
	gin.SetMode(gin.TestMode)
	logger := zaptest.NewLogger(t)

	cfg := config.Default()
	cfg.Session.SigningKey = "test-secret"
	store := repository.NewMemoryStateStore()

	source := fetchstate.SourceFunc[model.Pokemon](func(ctx context.Context, name string) (model.Pokemon, error) {
		if name == "Unknown" {
			return model.Pokemon{}, pokeapi.ErrNotFound
		}
		return model.Pokemon{Name: name, Number: "025"}, nil
	})

	greetingService := service.NewGreetingService(store, "test", "", logger)
	pokemonService := service.NewPokemonService(context.Background(), source, logger)
	sessionService := service.NewSessionService(store,
		jwtpkg.NewManager(cfg.Session.SigningKey, cfg.Session.Issuer, time.Hour),
		"test", time.Hour, logger, greetingService.Unmount, pokemonService.Unmount)

	router := SetupRouter(cfg, logger, sessionService,
		NewSessionHandler(sessionService),
		NewGreetingHandler(greetingService),
		NewPokemonHandler(pokemonService),
	)
	app := &testApp{t: t, router: router}

	var tok service.SessionToken
	app.do(http.MethodPost, "/api/v1/session", nil, http.StatusCreated, &tok)
	app.token = tok.Token
	return app
}

func (a *testApp) do(method, path string, body any, wantStatus int, out any) envelope {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	require.Equal(a.t, wantStatus, w.Code, w.Body.String())

	var env envelope
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env))
	if out != nil {
		require.NoError(a.t, json.Unmarshal(env.Data, out))
	}
	return env
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t)
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSessionRequired(t *testing.T) {
	app := newTestApp(t)
	app.token = ""
	app.do(http.MethodGet, "/api/v1/pokemon", nil, http.StatusUnauthorized, nil)

	app.token = "not-a-token"
	app.do(http.MethodGet, "/api/v1/greeting", nil, http.StatusUnauthorized, nil)
}

func TestGreetingFlow(t *testing.T) {
	app := newTestApp(t)

	var g service.Greeting
	app.do(http.MethodGet, "/api/v1/greeting", nil, http.StatusOK, &g)
	assert.Equal(t, "Please type your name", g.View.Text)

	app.do(http.MethodPut, "/api/v1/greeting", map[string]string{"name": "Ash"}, http.StatusOK, &g)
	assert.Equal(t, "Hello Ash", g.View.Text)

	app.do(http.MethodPut, "/api/v1/greeting/key", map[string]string{"key_name": "trainer"}, http.StatusOK, &g)
	assert.Equal(t, "trainer", g.KeyName)
	assert.Equal(t, "Ash", g.Name)

	app.do(http.MethodPut, "/api/v1/greeting/key", map[string]string{"key_name": "no spaces"}, http.StatusBadRequest, nil)
	app.do(http.MethodPut, "/api/v1/greeting", map[string]string{}, http.StatusBadRequest, nil)
}

func TestPokemonFlow_Resolved(t *testing.T) {
	app := newTestApp(t)

	var info service.PokemonInfo
	app.do(http.MethodGet, "/api/v1/pokemon", nil, http.StatusOK, &info)
	assert.Equal(t, fetchstate.StatusIdle, info.Status)
	assert.Equal(t, "Submit a Pokemon", info.View.Text)

	app.do(http.MethodPost, "/api/v1/pokemon", map[string]string{"name": "Pikachu"}, http.StatusOK, &info)
	assert.Equal(t, "Pikachu", info.PokemonName)

	app.do(http.MethodGet, "/api/v1/pokemon?wait=true", nil, http.StatusOK, &info)
	assert.Equal(t, fetchstate.StatusResolved, info.Status)
	require.NotNil(t, info.View.Pokemon)
	assert.Equal(t, "Pikachu", info.View.Pokemon.Name)
}

func TestPokemonFlow_FallbackAndRetry(t *testing.T) {
	app := newTestApp(t)

	var info service.PokemonInfo
	app.do(http.MethodPost, "/api/v1/pokemon", map[string]string{"name": "Unknown"}, http.StatusOK, &info)
	app.do(http.MethodGet, "/api/v1/pokemon?wait=true", nil, http.StatusOK, &info)
	assert.Equal(t, "fallback", string(info.View.Kind))
	assert.Contains(t, info.View.Error, "not found")
	require.Len(t, info.View.Actions, 1)

	retry := info.View.Actions[0]
	app.do(retry.Method, retry.Path, nil, http.StatusOK, &info)
	assert.Equal(t, fetchstate.StatusIdle, info.Status)
	assert.Equal(t, "", info.PokemonName)
}

func TestEndSession(t *testing.T) {
	app := newTestApp(t)
	app.do(http.MethodDelete, "/api/v1/session", nil, http.StatusOK, nil)
	app.do(http.MethodGet, "/api/v1/pokemon", nil, http.StatusUnauthorized, nil)
}

func TestSessionIDFromContext(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, err := getSessionIDFromContext(c)
	assert.ErrorIs(t, err, ErrNoSession)

	id := uuid.New()
	c.Set("session_id", id)
	got, err := getSessionIDFromContext(c)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}
