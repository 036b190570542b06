package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/iheartbourbon/bourbon/internal/auth"
	"github.com/iheartbourbon/bourbon/internal/testutil"
	"github.com/iheartbourbon/bourbon/internal/types"
)

func newAuthEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/private", AuthMiddleware(), func(ctx *gin.Context) {
		user := ctx.MustGet(types.ContextUserKey).(AuthenticatedUser)
		ctx.JSON(http.StatusOK, gin.H{"id": user.ID, "email": user.Email})
	})

	return r
}

func TestAuthMiddleware(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	alice := testutil.CreateUser(t, conn, "Alice", "alice@example.com")
	r := newAuthEngine()

	token, err := auth.GenerateJWT(alice.ID, alice.Email)
	if err != nil {
		t.Fatal(err)
	}

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": alice.ID, "exp": 1})
	expiredToken, err := expired.SignedString([]byte(testutil.JWTSecret))
	if err != nil {
		t.Fatal(err)
	}

	ghost, err := auth.GenerateJWT("8d3e2f8e-0000-4000-8000-000000000000", "ghost@example.com")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		setup  func(*http.Request)
		status int
		error  string
	}{
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: types.SessionCookieName, Value: token}) }, http.StatusOK, ""},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK, ""},
		{"lowercase bearer", func(r *http.Request) { r.Header.Set("Authorization", "bearer "+token) }, http.StatusOK, ""},
		{"missing", func(*http.Request) {}, http.StatusUnauthorized, "Authentication required"},
		{"wrong scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic "+token) }, http.StatusUnauthorized, "Authentication required"},
		{"garbage", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized, "Invalid or expired token"},
		{"expired", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+expiredToken) }, http.StatusUnauthorized, "Invalid or expired token"},
		{"deleted user", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+ghost) }, http.StatusUnauthorized, "User not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			tt.setup(req)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d; body %s", rec.Code, tt.status, rec.Body.String())
			}

			var body map[string]string
			testutil.DecodeJSON(t, rec, &body)

			if tt.error != "" && body["error"] != tt.error {
				t.Errorf("error = %q, want %q", body["error"], tt.error)
			}
			if tt.status == http.StatusOK && body["id"] != alice.ID {
				t.Errorf("id = %q, want %q", body["id"], alice.ID)
			}
		})
	}
}
