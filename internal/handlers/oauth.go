package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/iheartbourbon/bourbon/db"
	"github.com/iheartbourbon/bourbon/internal/models"
	"github.com/iheartbourbon/bourbon/internal/oauth"
	"github.com/iheartbourbon/bourbon/internal/services"
	"go.uber.org/zap"
)

const (
	oauthSessionName = "oauth_state"
	oauthStateTTL    = 10 * 60
)

// NewStateStore keeps the OAuth state in a signed cookie scoped to the
// /auth routes. Apple posts its callback cross-site, which only carries
// SameSite=None cookies, so secure deployments use that mode.
func NewStateStore(key []byte, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/auth",
		MaxAge:   oauthStateTTL,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	if secure {
		store.Options.SameSite = http.SameSiteNoneMode
	}

	return store
}

// OAuthLogin sends the browser to the provider with a fresh state value
// remembered in a signed cookie.
func OAuthLogin(ctx *gin.Context) {
	name := ctx.Param("provider")

	if _, known := models.ProviderColumn(name); !known {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Unknown provider"})
		return
	}

	provider, ok := providers.Get(name)

	if !ok || stateStore == nil {
		redirectWithError(ctx, name+"_not_configured")
		return
	}

	state, err := oauth.GenerateState()

	if err != nil {
		zap.L().Error("generate oauth state", zap.Error(err))
		redirectWithError(ctx, name)
		return
	}

	// A tampered or stale cookie fails to decode; a fresh session is fine.
	sess, _ := stateStore.Get(ctx.Request, oauthSessionName)
	sess.Values["state"] = state
	sess.Values["provider"] = name

	if err := sess.Save(ctx.Request, ctx.Writer); err != nil {
		zap.L().Error("save oauth state", zap.Error(err))
		redirectWithError(ctx, name)
		return
	}

	ctx.Redirect(http.StatusFound, provider.AuthCodeURL(state))
}

// OAuthCallback handles both GET callbacks and Apple's form_post.
func OAuthCallback(ctx *gin.Context) {
	name := ctx.Param("provider")

	if _, known := models.ProviderColumn(name); !known {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Unknown provider"})
		return
	}

	provider, ok := providers.Get(name)

	if !ok || stateStore == nil {
		redirectWithError(ctx, name+"_not_configured")
		return
	}

	sess, err := stateStore.Get(ctx.Request, oauthSessionName)

	if err != nil {
		var cookieErr securecookie.Error

		if errors.As(err, &cookieErr) && cookieErr.IsDecode() {
			zap.L().Warn("oauth state cookie rejected", zap.String("provider", name), zap.Error(err))
		}
	}

	expectedState, _ := sess.Values["state"].(string)
	expectedProvider, _ := sess.Values["provider"].(string)

	// The state is single use.
	sess.Options.MaxAge = -1
	if err := sess.Save(ctx.Request, ctx.Writer); err != nil {
		zap.L().Warn("clear oauth state", zap.Error(err))
	}

	if providerErr := ctx.Request.FormValue("error"); providerErr != "" {
		zap.L().Info("oauth login declined", zap.String("provider", name), zap.String("error", providerErr))
		redirectWithError(ctx, name)
		return
	}

	state := ctx.Request.FormValue("state")

	if expectedState == "" || expectedProvider != name || subtle.ConstantTimeCompare([]byte(state), []byte(expectedState)) != 1 {
		zap.L().Warn("oauth state mismatch", zap.String("provider", name))
		redirectWithError(ctx, name)
		return
	}

	identity, err := provider.Identity(ctx.Request.Context(), ctx.Request)

	if err != nil {
		zap.L().Error("resolve oauth identity", zap.String("provider", name), zap.Error(err))
		redirectWithError(ctx, name)
		return
	}

	user, created, err := services.ReconcileIdentity(ctx.Request.Context(), db.DB, name, identity)

	if err != nil {
		if errors.Is(err, services.ErrMissingEmail) {
			redirectWithError(ctx, name+"_no_email")
			return
		}

		zap.L().Error("reconcile oauth identity", zap.String("provider", name), zap.Error(err))
		redirectWithError(ctx, name)
		return
	}

	if err := issueSession(ctx, user); err != nil {
		zap.L().Error("issue session", zap.Error(err))
		redirectWithError(ctx, name)
		return
	}

	zap.L().Info("oauth login", zap.String("provider", name), zap.String("user_id", user.ID), zap.Bool("created", created))

	ctx.Redirect(http.StatusSeeOther, clientURL+"/")
}

func redirectWithError(ctx *gin.Context, code string) {
	ctx.Redirect(http.StatusSeeOther, clientURL+"/?error="+code)
}
