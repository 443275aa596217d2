package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-user-registration/internal/application"
	"github.com/oksasatya/go-ddd-user-registration/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-registration/internal/domain/repository"
	"github.com/oksasatya/go-ddd-user-registration/internal/infrastructure/memory"
	"github.com/oksasatya/go-ddd-user-registration/pkg/helpers"
	"github.com/oksasatya/go-ddd-user-registration/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func newRouter(repo repository.UserRepository, listeners ...application.RegistrationListener) *gin.Engine {
	logger, _ := logtest.NewNullLogger()
	uc := application.NewRegisterUseCase(repo, helpers.NewBcryptHasher(helpers.MinPasswordCost), logger, listeners...)
	h := NewRegisterHandler(uc, logger)

	r := gin.New()
	r.POST("/api/register", h.Register)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

const johnDoe = `{"name":"John Doe","email":"johndoe@example.com","password":"123456"}`

func TestRegister_Created(t *testing.T) {
	users := memory.NewUserRepository()
	r := newRouter(users)

	w, env := postJSON(t, r, johnDoe)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)

	var data map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.NotEmpty(t, data["id"])
	assert.Equal(t, "johndoe@example.com", data["email"])
	assert.Equal(t, "John Doe", data["name"])
	assert.NotContains(t, data, "password_hash")
	assert.NotContains(t, w.Body.String(), "$2a$")
	assert.NotContains(t, w.Body.String(), "123456")

	stored, err := users.FindByEmail(context.Background(), "johndoe@example.com")
	require.NoError(t, err)
	assert.True(t, helpers.CompareHashAndPassword(stored.PasswordHash, "123456"))
}

func TestRegister_Duplicate(t *testing.T) {
	users := memory.NewUserRepository()
	r := newRouter(users)

	w, _ := postJSON(t, r, johnDoe)
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := postJSON(t, r, `{"name":"Other","email":"JohnDoe@example.com","password":"abcdef"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "email already registered", env.Message)
	assert.JSONEq(t, `{"email":"johndoe@example.com"}`, string(env.Error))
	assert.Equal(t, 1, users.Count())
}

func TestRegister_InvalidPayload(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing name", `{"email":"a@example.com","password":"123456"}`, "name"},
		{"bad email", `{"name":"A","email":"nope","password":"123456"}`, "email"},
		{"short password", `{"name":"A","email":"a@example.com","password":"123"}`, "password"},
		{"broken json", `{"name":`, "payload"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := memory.NewUserRepository()
			w, env := postJSON(t, newRouter(users), tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var details map[string]string
			require.NoError(t, json.Unmarshal(env.Error, &details))
			assert.Contains(t, details, tt.field)
			assert.Equal(t, 0, users.Count())
		})
	}
}

func TestRegister_PasswordOverBcryptLimit(t *testing.T) {
	users := memory.NewUserRepository()

	// 40 runes, 80 bytes
	body := `{"name":"A","email":"a@example.com","password":"` + strings.Repeat("é", 40) + `"}`
	w, env := postJSON(t, newRouter(users), body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var details map[string]string
	require.NoError(t, json.Unmarshal(env.Error, &details))
	assert.Equal(t, "must be at most 72 bytes long", details["password"])
	assert.Equal(t, 0, users.Count())

	body = `{"name":"A","email":"a@example.com","password":"` + strings.Repeat("é", 36) + `"}`
	w, _ = postJSON(t, newRouter(users), body)
	assert.Equal(t, http.StatusCreated, w.Code)
}

type tooLongHasher struct{}

func (tooLongHasher) Hash(string) (string, error) { return "", helpers.ErrPasswordTooLong }
func (tooLongHasher) Compare(string, string) bool { return false }

func TestRegister_HasherRejectsLength(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	uc := application.NewRegisterUseCase(memory.NewUserRepository(), tooLongHasher{}, logger)
	r := gin.New()
	r.POST("/api/register", NewRegisterHandler(uc, logger).Register)

	w, env := postJSON(t, r, johnDoe)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid payload", env.Message)
}

type brokenRepo struct{}

func (brokenRepo) FindByEmail(context.Context, string) (*entity.User, error) {
	return nil, errors.New("connection refused")
}

func (brokenRepo) Create(context.Context, repository.CreateUserParams) (*entity.User, error) {
	return nil, errors.New("connection refused")
}

func TestRegister_StorageFailure(t *testing.T) {
	w, env := postJSON(t, newRouter(brokenRepo{}), johnDoe)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "registration failed", env.Message)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

type metaListener struct{ meta helpers.ClientMeta }

func (l *metaListener) UserRegistered(ctx context.Context, _ *entity.User) error {
	l.meta, _ = helpers.ClientMetaFrom(ctx)
	return nil
}

func TestRegister_PassesClientMeta(t *testing.T) {
	l := &metaListener{}
	r := newRouter(memory.NewUserRepository(), l)

	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(johnDoe))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "curl/8.0")
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "192.0.2.1", l.meta.IP)
	assert.Equal(t, "curl/8.0", l.meta.UserAgent)
}
