package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fluss/internal/cache"
	"fluss/internal/config"
	"fluss/internal/models"
	"fluss/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock of the UserRepository interface.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func testServerConfig() *config.Config {
	return &config.Config{JWTSecret: "test-secret-at-least-32-characters-long"}
}

func withHandlerRedis(t *testing.T) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })
}

type authResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func TestSignupHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, nil).Once()
		mockRepo.On("GetByUsername", mock.Anything, "alice").Return(nil, nil).Once()
		mockRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			args.Get(1).(*models.User).ID = 42
		}).Return(nil).Once()

		s := &Server{config: testServerConfig()}
		s.userService = service.NewUserService(mockRepo, nil, nil)
		app := fiber.New()
		app.Post("/signup", s.Signup)

		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/signup", map[string]string{
			"username": "alice",
			"email":    "alice@example.com",
			"password": "hunter2hunter2",
		}))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var body authResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, uint(42), body.User.ID)
		assert.Equal(t, "alice@example.com", body.User.Email, "own signup shows email")

		claims, err := s.parseToken(body.Token)
		require.NoError(t, err)
		assert.Equal(t, "42", claims["sub"])
		assert.Equal(t, "alice", claims["username"])
		mockRepo.AssertExpectations(t)
	})

	t.Run("rejects weak password", func(t *testing.T) {
		s := &Server{config: testServerConfig()}
		s.userService = service.NewUserService(new(MockUserRepository), nil, nil)
		app := fiber.New()
		app.Post("/signup", s.Signup)

		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/signup", map[string]string{
			"username": "alice",
			"email":    "alice@example.com",
			"password": "short",
		}))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("rejects taken email", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("GetByEmail", mock.Anything, "alice@example.com").
			Return(&models.User{ID: 1}, nil).Once()

		s := &Server{config: testServerConfig()}
		s.userService = service.NewUserService(mockRepo, nil, nil)
		app := fiber.New()
		app.Post("/signup", s.Signup)

		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/signup", map[string]string{
			"username": "alice2",
			"email":    "alice@example.com",
			"password": "hunter2hunter2",
		}))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestLoginHandler(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := &models.User{ID: 7, Username: "alice", Email: "alice@example.com", Password: string(hash)}

	t.Run("by email", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("GetByEmail", mock.Anything, "alice@example.com").Return(stored, nil).Once()

		s := &Server{config: testServerConfig()}
		s.userService = service.NewUserService(mockRepo, nil, nil)
		app := fiber.New()
		app.Post("/login", s.Login)

		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/login", map[string]string{
			"username_or_email": "alice@example.com",
			"password":          "hunter2hunter2",
		}))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body authResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.NotEmpty(t, body.Token)
		assert.Equal(t, uint(7), body.User.ID)
	})

	t.Run("by username", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("GetByUsername", mock.Anything, "alice").Return(stored, nil).Once()

		s := &Server{config: testServerConfig()}
		s.userService = service.NewUserService(mockRepo, nil, nil)
		app := fiber.New()
		app.Post("/login", s.Login)

		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/login", map[string]string{
			"username_or_email": "alice",
			"password":          "hunter2hunter2",
		}))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("wrong password", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("GetByEmail", mock.Anything, "alice@example.com").Return(stored, nil).Once()

		s := &Server{config: testServerConfig()}
		s.userService = service.NewUserService(mockRepo, nil, nil)
		app := fiber.New()
		app.Post("/login", s.Login)

		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/login", map[string]string{
			"username_or_email": "alice@example.com",
			"password":          "wrong-password",
		}))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("GetByUsername", mock.Anything, "nobody").Return(nil, nil).Once()

		s := &Server{config: testServerConfig()}
		s.userService = service.NewUserService(mockRepo, nil, nil)
		app := fiber.New()
		app.Post("/login", s.Login)

		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/login", map[string]string{
			"username_or_email": "nobody",
			"password":          "hunter2hunter2",
		}))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAuthRequired(t *testing.T) {
	s := &Server{config: testServerConfig()}
	app := fiber.New()
	app.Get("/protected", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": c.Locals("userID")})
	})

	token, err := s.generateToken(9, "alice")
	require.NoError(t, err)

	t.Run("valid token passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]uint
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, uint(9), body["user_id"])
	})

	t.Run("missing header is 401", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/protected", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("token signed with another secret is 401", func(t *testing.T) {
		other := &Server{config: &config.Config{JWTSecret: "a-completely-different-secret-key!!"}}
		badToken, err := other.generateToken(9, "alice")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+badToken)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("wrong issuer is 401", func(t *testing.T) {
		claims := jwt.MapClaims{
			"sub": "9",
			"iss": "someone-else",
			"aud": jwtAudience,
			"exp": time.Now().Add(time.Hour).Unix(),
		}
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
			SignedString([]byte(s.config.JWTSecret))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+forged)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("revoked token is 401", func(t *testing.T) {
		withHandlerRedis(t)

		revoked, err := s.generateToken(9, "alice")
		require.NoError(t, err)
		claims, err := s.parseToken(revoked)
		require.NoError(t, err)
		require.NoError(t, cache.RevokeJTI(context.Background(), claims["jti"].(string), time.Hour))

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+revoked)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestLogoutRevokesToken(t *testing.T) {
	withHandlerRedis(t)

	s := &Server{config: testServerConfig()}
	app := fiber.New()
	app.Post("/logout", s.AuthRequired(), s.Logout)
	app.Get("/protected", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	token, err := s.generateToken(3, "bob")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The same token must not work anymore.
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
