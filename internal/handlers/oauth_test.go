package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/iheartbourbon/bourbon/internal/models"
	"github.com/iheartbourbon/bourbon/internal/oauth"
	"github.com/iheartbourbon/bourbon/internal/types"
)

type fakeProvider struct {
	name     string
	identity oauth.Identity
	err      error
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://provider.test/authorize?state=" + url.QueryEscape(state)
}

func (p *fakeProvider) Identity(ctx context.Context, r *http.Request) (oauth.Identity, error) {
	if r.FormValue("code") == "" {
		return oauth.Identity{}, errors.New("no authorization code")
	}

	return p.identity, p.err
}

func oauthOptions(p oauth.Provider) Options {
	registry := oauth.Registry{}
	registry.Add(p)

	return Options{
		Providers:  registry,
		StateStore: NewStateStore([]byte("0123456789abcdef0123456789abcdef"), false),
	}
}

// startLogin runs the login redirect and returns the state and cookie the
// browser would carry back to the callback.
func startLogin(t *testing.T, r http.Handler, provider string) (string, *http.Cookie) {
	t.Helper()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/"+provider, nil))

	if rec.Code != http.StatusFound {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}

	location, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatal(err)
	}

	state := location.Query().Get("state")
	if state == "" {
		t.Fatalf("no state in %s", location)
	}

	cookie := findCookie(rec, oauthSessionName)
	if cookie == nil || cookie.Path != "/auth" || !cookie.HttpOnly {
		t.Fatalf("state cookie = %+v", cookie)
	}

	return state, cookie
}

func TestOAuthLoginCreatesUser(t *testing.T) {
	provider := &fakeProvider{name: models.ProviderGoogle, identity: oauth.Identity{
		Email:      "taster@example.com",
		ProviderID: "google-42",
		Name:       "Taster",
	}}
	r, conn := newTestEngine(t, oauthOptions(provider))

	state, cookie := startLogin(t, r, "google")

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=abc&state="+url.QueryEscape(state), nil)
	req.AddCookie(cookie)
	rec := serve(r, req)

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("callback = %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if findCookie(rec, types.SessionCookieName) == nil {
		t.Error("no session cookie after callback")
	}

	var user models.User
	if err := conn.Where("email = ?", "taster@example.com").First(&user).Error; err != nil {
		t.Fatalf("user not created: %v", err)
	}
	if user.GoogleID == nil || *user.GoogleID != "google-42" {
		t.Errorf("google id = %v", user.GoogleID)
	}
}

func TestOAuthCallbackFormPost(t *testing.T) {
	provider := &fakeProvider{name: models.ProviderApple, identity: oauth.Identity{
		Email:      "relay@privaterelay.appleid.com",
		ProviderID: "apple-1",
	}}
	opts := oauthOptions(provider)
	opts.ClientURL = "https://app.example.com"
	r, _ := newTestEngine(t, opts)

	state, cookie := startLogin(t, r, "apple")

	form := url.Values{"code": {"abc"}, "state": {state}}
	req := httptest.NewRequest(http.MethodPost, "/auth/apple/callback", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	rec := serve(r, req)

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "https://app.example.com/" {
		t.Fatalf("callback = %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestOAuthCallbackRejections(t *testing.T) {
	provider := &fakeProvider{name: models.ProviderGoogle, identity: oauth.Identity{ProviderID: "google-1"}}
	r, conn := newTestEngine(t, oauthOptions(provider))

	tests := []struct {
		name   string
		query  func(state string) string
		cookie bool
		want   string
	}{
		{"state mismatch", func(string) string { return "code=abc&state=forged" }, true, "/?error=google"},
		{"missing cookie", func(s string) string { return "code=abc&state=" + url.QueryEscape(s) }, false, "/?error=google"},
		{"provider error", func(s string) string { return "error=access_denied&state=" + url.QueryEscape(s) }, true, "/?error=google"},
		{"no email", func(s string) string { return "code=abc&state=" + url.QueryEscape(s) }, true, "/?error=google_no_email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, cookie := startLogin(t, r, "google")

			req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?"+tt.query(state), nil)
			if tt.cookie {
				req.AddCookie(cookie)
			}
			rec := serve(r, req)

			if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != tt.want {
				t.Errorf("callback = %d %q, want %q", rec.Code, rec.Header().Get("Location"), tt.want)
			}
			if findCookie(rec, types.SessionCookieName) != nil {
				t.Error("session issued on a rejected callback")
			}
		})
	}

	var users int64
	conn.Model(&models.User{}).Count(&users)
	if users != 0 {
		t.Errorf("users = %d, want 0", users)
	}
}

func TestOAuthStateIsSingleUse(t *testing.T) {
	provider := &fakeProvider{name: models.ProviderGoogle, identity: oauth.Identity{Email: "a@example.com", ProviderID: "g"}}
	r, _ := newTestEngine(t, oauthOptions(provider))

	state, cookie := startLogin(t, r, "google")
	callback := "/auth/google/callback?code=abc&state=" + url.QueryEscape(state)

	first := httptest.NewRequest(http.MethodGet, callback, nil)
	first.AddCookie(cookie)
	rec := serve(r, first)

	cleared := findCookie(rec, oauthSessionName)
	if cleared == nil || cleared.MaxAge >= 0 {
		t.Fatalf("state cookie not cleared: %+v", cleared)
	}
}

func TestOAuthUnknownAndUnconfigured(t *testing.T) {
	r, _ := newTestEngine(t, oauthOptions(&fakeProvider{name: models.ProviderGoogle}))

	unknown := serve(r, httptest.NewRequest(http.MethodGet, "/auth/myspace", nil))
	expectError(t, unknown, http.StatusNotFound, "Unknown provider")

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/auth/facebook", nil))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/?error=facebook_not_configured" {
		t.Errorf("unconfigured = %d %q", rec.Code, rec.Header().Get("Location"))
	}
}
