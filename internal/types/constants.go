package types

const (
	ContextUserKey    = "user"
	SessionCookieName = "token"
)

// AllowedOrigins is shared by CORS and the websocket origin check. main
// replaces it with the configured list.
var AllowedOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}
