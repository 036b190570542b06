package handlers

import (
	"github.com/gorilla/sessions"
	"github.com/iheartbourbon/bourbon/internal/oauth"
	"github.com/iheartbourbon/bourbon/internal/storage"
)

// Options carries what handlers need beyond the database.
type Options struct {
	CookieDomain string
	CookieSecure bool
	// ClientURL prefixes OAuth redirects when the web client is served from
	// another origin. Empty means the API's own root.
	ClientURL  string
	Providers  oauth.Registry
	StateStore sessions.Store
	Images     storage.ImageStore
}

var (
	cookieDomain string
	cookieSecure bool
	clientURL    string
	providers    = oauth.Registry{}
	stateStore   sessions.Store
	images       storage.ImageStore
)

func Configure(opts Options) {
	cookieDomain = opts.CookieDomain
	cookieSecure = opts.CookieSecure
	clientURL = opts.ClientURL
	providers = opts.Providers
	stateStore = opts.StateStore
	images = opts.Images

	if providers == nil {
		providers = oauth.Registry{}
	}
}
