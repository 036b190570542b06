package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/iheartbourbon/bourbon/internal/middleware"
	"github.com/iheartbourbon/bourbon/internal/models"
	"github.com/iheartbourbon/bourbon/internal/testutil"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestEngine mirrors the production routes on a fresh database.
func newTestEngine(t *testing.T, opts Options) (*gin.Engine, *gorm.DB) {
	t.Helper()

	conn := testutil.SetupTestDB(t)

	Configure(opts)
	t.Cleanup(func() { Configure(Options{}) })

	r := gin.New()

	r.GET("/auth/:provider", OAuthLogin)
	r.GET("/auth/:provider/callback", OAuthCallback)
	r.POST("/auth/:provider/callback", OAuthCallback)

	api := r.Group("/api")
	api.GET("/health", HealthCheck)
	api.POST("/auth/register", CreateUser)
	api.POST("/auth/login", LoginUser)
	api.POST("/auth/logout", LogoutUser)

	authed := api.Group("", middleware.AuthMiddleware())
	authed.GET("/auth/me", Me)
	authed.GET("/ws/feed", FeedSocket)
	authed.PUT("/users/me/profile", UpdateProfile)
	authed.PUT("/users/me/password", ChangePassword)
	authed.GET("/users/me/entries", MyEntries)
	authed.GET("/bourbons", ListBourbons)
	authed.POST("/bourbons", CreateBourbon)
	authed.GET("/bourbons/:id", GetBourbon)
	authed.PUT("/bourbons/:id", UpdateBourbon)
	authed.DELETE("/bourbons/:id", DeleteBourbon)
	authed.GET("/bourbons/:id/entries", GetBourbonEntries)
	authed.POST("/bourbons/:id/image", UploadBourbonImage)
	authed.POST("/entries", CreateEntry)
	authed.PUT("/entries/:id", UpdateEntry)
	authed.DELETE("/entries/:id", DeleteEntry)
	authed.GET("/feed", GetFeed)
	authed.GET("/groups", ListGroups)
	authed.POST("/groups", CreateGroup)
	authed.POST("/groups/join", JoinGroup)
	authed.GET("/groups/slug/:slug", GetGroupBySlug)
	authed.GET("/groups/:id", GetGroup)

	return r, conn
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func do(t *testing.T, r *gin.Engine, method, path string, body any, user *models.User) *httptest.ResponseRecorder {
	t.Helper()
	return serve(r, testutil.NewRequest(t, method, path, body, user))
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()

	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body %s", rec.Code, want, rec.Body.String())
	}
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, message string) {
	t.Helper()

	expectStatus(t, rec, status)

	var body struct {
		Error string `json:"error"`
	}
	testutil.DecodeJSON(t, rec, &body)

	if body.Error != message {
		t.Errorf("error = %q, want %q", body.Error, message)
	}
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}

	return nil
}

type putCall struct {
	key         string
	contentType string
	body        []byte
}

type fakeImageStore struct {
	mu    sync.Mutex
	calls []putCall
}

func (s *fakeImageStore) PutImage(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)

	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.calls = append(s.calls, putCall{key: key, contentType: contentType, body: data})
	s.mu.Unlock()

	return "https://images.example.com/" + key, nil
}
