package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/taskmanager/taskmanager-api/internal/auth"
	"github.com/taskmanager/taskmanager-api/internal/constants"
	"github.com/taskmanager/taskmanager-api/internal/dto"
	"github.com/taskmanager/taskmanager-api/internal/logging"
	"github.com/taskmanager/taskmanager-api/internal/mailer"
	"github.com/taskmanager/taskmanager-api/internal/models"
	"github.com/taskmanager/taskmanager-api/internal/repository"
	"github.com/taskmanager/taskmanager-api/internal/services"
	"github.com/taskmanager/taskmanager-api/internal/testutil"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recordingMailer struct {
	mu     sync.Mutex
	tokens []string
}

func (m *recordingMailer) SendConfirmation(_ context.Context, msg mailer.AccountEmail) error {
	m.record(msg.Token)
	return nil
}

func (m *recordingMailer) SendPasswordReset(_ context.Context, msg mailer.AccountEmail) error {
	m.record(msg.Token)
	return nil
}

func (m *recordingMailer) record(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = append(m.tokens, token)
}

func (m *recordingMailer) last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[len(m.tokens)-1]
}

type authTestEnv struct {
	db          *gorm.DB
	router      *gin.Engine
	authService *services.AuthService
	mailer      *recordingMailer
}

func setupAuthTestEnv(t *testing.T) authTestEnv {
	t.Helper()

	db := testutil.NewDB(t)
	m := &recordingMailer{}
	authService := services.NewAuthService(
		repository.NewUserRepository(db),
		m,
		auth.NewTokenIssuer("test-secret", time.Hour),
		logging.Discard(),
	)
	handler := NewAuthHandler(authService)

	r := gin.New()
	users := r.Group("/api/users")
	users.POST("/signup", handler.Signup)
	users.POST("/login", handler.Login)
	users.GET("/confirm-account/:token", handler.ConfirmAccount)
	users.POST("/password-reset", handler.RequestPasswordReset)
	users.GET("/password-reset/:token", handler.ValidateResetToken)
	users.POST("/password-reset/:token", handler.ResetPassword)

	return authTestEnv{
		db:          db,
		router:      r,
		authService: authService,
		mailer:      m,
	}
}

// withUser simulates RequireAuth for handler tests
func withUser(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyUser, *user)
		c.Next()
	}
}

func doJSON(r http.Handler, method, url string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Reader
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Signup(t *testing.T) {
	env := setupAuthTestEnv(t)

	payload := map[string]string{
		"name":     "Ana",
		"email":    "ana@example.com",
		"password": "supersecret",
	}

	w := doJSON(env.router, http.MethodPost, "/api/users/signup", payload)
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.MessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotEmpty(t, response.Message)

	w = doJSON(env.router, http.MethodPost, "/api/users/signup", payload)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "already registered")

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Count(&count).Error)
	require.EqualValues(t, 1, count)

	env.authService.Wait()
}

func TestAuthHandler_SignupValidation(t *testing.T) {
	env := setupAuthTestEnv(t)

	cases := []map[string]string{
		{"email": "ana@example.com", "password": "supersecret"},
		{"name": "Ana", "email": "not-an-email", "password": "supersecret"},
		{"name": "Ana", "email": "ana@example.com", "password": "short"},
	}
	for _, payload := range cases {
		w := doJSON(env.router, http.MethodPost, "/api/users/signup", payload)
		require.Equal(t, http.StatusBadRequest, w.Code, payload)
	}

	w := doJSON(env.router, http.MethodPost, "/api/users/signup", cases[1])
	var body struct {
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, map[string]string{"email": "email"}, body.Details)
}

func TestAuthHandler_ConfirmAndLogin(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.authService.Signup(services.SignupInput{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)
	env.authService.Wait()

	login := map[string]string{"email": "ana@example.com", "password": "supersecret"}

	w := doJSON(env.router, http.MethodPost, "/api/users/login", login)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "NOT_CONFIRMED")

	w = doJSON(env.router, http.MethodGet, "/api/users/confirm-account/"+env.mailer.last(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(env.router, http.MethodGet, "/api/users/confirm-account/"+env.mailer.last(), nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(env.router, http.MethodPost, "/api/users/login", map[string]string{"email": "ana@example.com", "password": "wrong-one"})
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "INVALID_CREDENTIALS")

	w = doJSON(env.router, http.MethodPost, "/api/users/login", map[string]string{"email": "nobody@example.com", "password": "supersecret"})
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(env.router, http.MethodPost, "/api/users/login", login)
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "Ana", response.Name)
	require.Equal(t, "ana@example.com", response.Email)
	require.NotEmpty(t, response.SessionToken)
	require.NotContains(t, w.Body.String(), "password")
}

func TestAuthHandler_PasswordReset(t *testing.T) {
	env := setupAuthTestEnv(t)
	testutil.CreateUser(t, env.db, "Ana", "ana@example.com", "supersecret")

	w := doJSON(env.router, http.MethodPost, "/api/users/password-reset", map[string]string{"email": "nobody@example.com"})
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(env.router, http.MethodPost, "/api/users/password-reset", map[string]string{"email": "ana@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	env.authService.Wait()
	token := env.mailer.last()

	w = doJSON(env.router, http.MethodGet, "/api/users/password-reset/"+token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(env.router, http.MethodGet, "/api/users/password-reset/unknown", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(env.router, http.MethodPost, "/api/users/password-reset/"+token, map[string]string{"password": "brand-new-secret"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(env.router, http.MethodPost, "/api/users/password-reset/"+token, map[string]string{"password": "brand-new-secret"})
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(env.router, http.MethodPost, "/api/users/login", map[string]string{"email": "ana@example.com", "password": "brand-new-secret"})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandler_GetCurrentUser(t *testing.T) {
	env := setupAuthTestEnv(t)
	user := testutil.CreateUser(t, env.db, "Ana", "ana@example.com", "supersecret")
	handler := NewAuthHandler(env.authService)

	r := gin.New()
	r.GET("/api/users/profile", withUser(user), handler.GetCurrentUser)
	r.GET("/anonymous", handler.GetCurrentUser)

	w := doJSON(r, http.MethodGet, "/api/users/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, user.ID, response.ID)
	require.Equal(t, "ana@example.com", response.Email)

	w = doJSON(r, http.MethodGet, "/anonymous", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
