package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/iheartbourbon/bourbon/internal/types"
	"github.com/iheartbourbon/bourbon/internal/utils"
	"go.uber.org/zap"
)

// feedClients holds every open feed socket per user. A user may have
// several tabs open.
var (
	feedClients   = make(map[string]map[*feedClient]bool)
	feedClientsMu sync.RWMutex
)

// feedClient serializes writes; gorilla allows one concurrent writer.
type feedClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *feedClient) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return c.conn.WriteJSON(v)
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		for _, allowed := range types.AllowedOrigins {
			if origin == allowed {
				return true
			}
		}

		return false
	},
}

// BroadcastRefresh asks each user's open feeds to reload. It carries no
// entry data; clients refetch through the authenticated feed endpoint.
func BroadcastRefresh(userIDs []string) {
	var clients []*feedClient

	feedClientsMu.RLock()
	for _, userID := range userIDs {
		for client := range feedClients[userID] {
			clients = append(clients, client)
		}
	}
	feedClientsMu.RUnlock()

	for _, client := range clients {
		if err := client.send(map[string]string{"type": "refresh"}); err != nil {
			zap.L().Debug("feed refresh failed", zap.Error(err))
			dropFeedClient(client)
		}
	}
}

func registerFeedClient(userID string, client *feedClient) {
	feedClientsMu.Lock()
	defer feedClientsMu.Unlock()

	if feedClients[userID] == nil {
		feedClients[userID] = make(map[*feedClient]bool)
	}

	feedClients[userID][client] = true
}

// dropFeedClient unregisters the client and closes its connection. It
// reports false when the client was already gone, leaving the connection to
// whoever removed it.
func dropFeedClient(client *feedClient) bool {
	removed := false

	feedClientsMu.Lock()
	for userID, clients := range feedClients {
		if clients[client] {
			delete(clients, client)
			removed = true

			if len(clients) == 0 {
				delete(feedClients, userID)
			}
		}
	}
	feedClientsMu.Unlock()

	if !removed {
		return false
	}

	client.conn.Close()

	return true
}

func feedClientCount(userID string) int {
	feedClientsMu.RLock()
	defer feedClientsMu.RUnlock()

	return len(feedClients[userID])
}

func FeedSocket(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)

	if err != nil {
		zap.L().Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	conn.SetReadLimit(maxMessageSize)

	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		conn.Close()
		return
	}

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	client := &feedClient{conn: conn}
	registerFeedClient(userID, client)
	defer dropFeedClient(client)

	if err := client.send(map[string]string{"type": "connected"}); err != nil {
		return
	}

	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return
				}
			}
		}
	}()

	// Clients never send data; reading only services pongs and close frames.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Debug("feed socket closed", zap.String("user_id", userID), zap.Error(err))
			}
			return
		}
	}
}
