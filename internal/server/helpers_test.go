package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"ripple/internal/config"
	"ripple/internal/database"
	"ripple/internal/models"
	"ripple/internal/repository"
	"ripple/internal/service"
	"ripple/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "Sup3r$ecretPass!"

// newTestServer wires a Server against an in-memory sqlite database with the
// routes registered on a bare Fiber app. The Prometheus middleware is left
// out; it registers collectors in the global registry and cannot be set up
// once per test.
func newTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	cfg := &config.Config{
		JWTSecret:   "test-secret-key",
		Port:        "0",
		Env:         "test",
		BlobDir:     t.TempDir(),
		BlobBaseURL: "/media",
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	blobs, err := storage.NewLocalStore(cfg)
	require.NoError(t, err)

	s := &Server{
		config:           cfg,
		db:               db,
		blobs:            blobs,
		userRepo:         repository.NewUserRepository(db),
		profileRepo:      repository.NewProfileRepository(db),
		postRepo:         repository.NewPostRepository(db),
		commentRepo:      repository.NewCommentRepository(db),
		likeRepo:         repository.NewLikeRepository(db),
		followRepo:       repository.NewFollowRepository(db),
		blockRepo:        repository.NewBlockRepository(db),
		reportRepo:       repository.NewReportRepository(db),
		notificationRepo: repository.NewNotificationRepository(db),
		messageRepo:      repository.NewMessageRepository(db),
		activityRepo:     repository.NewActivityRepository(db),
	}
	s.notificationService = service.NewNotificationService(s.notificationRepo, s.activityRepo)
	s.userService = service.NewUserService(s.userRepo, s.profileRepo)
	s.socialService = service.NewSocialService(db, s.userRepo, s.profileRepo,
		s.followRepo, s.blockRepo, s.notificationService)
	s.postService = service.NewPostService(db, s.postRepo, s.commentRepo, s.likeRepo,
		s.userRepo, s.notificationService, s.notificationService,
		s.socialService.IsVisible, s.isAdminByUserID)
	s.moderationService = service.NewModerationService(s.reportRepo, s.postRepo,
		s.commentRepo, s.userRepo, s.isAdminByUserID)
	s.messageService = service.NewMessageService(db, s.messageRepo, s.userRepo,
		s.blockRepo, s.notificationService)

	app := fiber.New()
	s.SetupRoutes(app)
	return s, app
}

// jsonRequest performs a request with an optional bearer token and JSON body.
func jsonRequest(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// signupUser registers a user through the API and returns their token and ID.
func signupUser(t *testing.T, app *fiber.App, username string) (string, uint) {
	t.Helper()

	resp := jsonRequest(t, app, "POST", "/api/auth/signup", "", map[string]string{
		"username":         username,
		"email":            username + "@example.com",
		"password":         testPassword,
		"confirm_password": testPassword,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	decodeBody(t, resp, &body)
	require.NotEmpty(t, body.Token)
	require.NotZero(t, body.User.ID)
	return body.Token, body.User.ID
}

// promoteToAdmin grants the admin role directly in the database.
func promoteToAdmin(t *testing.T, s *Server, userID uint) {
	t.Helper()
	var profile models.Profile
	require.NoError(t, s.db.Where(models.Profile{UserID: userID}).
		Attrs(models.Profile{Role: models.RoleUser}).
		FirstOrCreate(&profile).Error)
	require.NoError(t, s.db.Model(&profile).Update("role", models.RoleAdmin).Error)
}
