package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iheartbourbon/bourbon/internal/auth"
	"github.com/iheartbourbon/bourbon/internal/models"
	"github.com/iheartbourbon/bourbon/internal/types"
)

func issueSession(ctx *gin.Context, user *models.User) error {
	token, err := auth.GenerateJWT(user.ID, user.Email)

	if err != nil {
		return err
	}

	setSessionCookie(ctx, token, int(auth.SessionTTL.Seconds()))

	return nil
}

func clearSession(ctx *gin.Context) {
	setSessionCookie(ctx, "", -1)
}

// Cross-site cookies need SameSite=None, which browsers only accept on
// secure cookies; plain HTTP development falls back to Lax.
func setSessionCookie(ctx *gin.Context, value string, maxAge int) {
	sameSite := http.SameSiteLaxMode

	if cookieSecure {
		sameSite = http.SameSiteNoneMode
	}

	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     types.SessionCookieName,
		Value:    value,
		Path:     "/",
		Domain:   cookieDomain,
		MaxAge:   maxAge,
		Secure:   cookieSecure,
		HttpOnly: true,
		SameSite: sameSite,
	})
}
