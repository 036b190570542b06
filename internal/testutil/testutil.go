package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/iheartbourbon/bourbon/db"
	"github.com/iheartbourbon/bourbon/internal/auth"
	"github.com/iheartbourbon/bourbon/internal/models"
	"github.com/iheartbourbon/bourbon/internal/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	JWTSecret = "test-jwt-secret"
	Password  = "password123"
)

// SetupTestDB opens a private in-memory SQLite database, migrates it and
// installs it as db.DB for the duration of the test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	if err := auth.InitJWTSecret(JWTSecret); err != nil {
		t.Fatalf("Failed to init JWT secret: %v", err)
	}

	name := strings.ReplaceAll(uuid.NewString(), "-", "")
	dsn := fmt.Sprintf("file:test_%s?mode=memory&cache=shared&_foreign_keys=1", name)

	conn, err := db.Open("sqlite", dsn)

	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.Migrate(conn); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	previous := db.DB
	db.DB = conn

	t.Cleanup(func() {
		db.DB = previous

		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return conn
}

func CreateUser(t *testing.T, conn *gorm.DB, name, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)

	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	passwordHash := string(hash)
	user := &models.User{Name: name, Email: email, PasswordHash: &passwordHash}

	if err := conn.Omit(clause.Associations).Create(user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	return user
}

func CreateBourbon(t *testing.T, conn *gorm.DB, creatorID, name string) *models.Bourbon {
	t.Helper()

	bourbon := &models.Bourbon{Name: name, CreatedByUserID: creatorID}

	if err := conn.Omit(clause.Associations).Create(bourbon).Error; err != nil {
		t.Fatalf("Failed to create bourbon: %v", err)
	}

	return bourbon
}

// CreateGroup inserts a group with its creator enrolled as admin.
func CreateGroup(t *testing.T, conn *gorm.DB, creatorID, name string) *models.Group {
	t.Helper()

	group := &models.Group{
		Name:      name,
		Slug:      strings.ToLower(strings.ReplaceAll(name, " ", "-")) + "-" + uuid.NewString()[:6],
		CreatorID: creatorID,
	}

	if err := conn.Omit(clause.Associations).Create(group).Error; err != nil {
		t.Fatalf("Failed to create group: %v", err)
	}

	AddMember(t, conn, group.ID, creatorID, models.RoleAdmin)

	return group
}

func AddMember(t *testing.T, conn *gorm.DB, groupID, userID, role string) {
	t.Helper()

	membership := &models.GroupMembership{GroupID: groupID, UserID: userID, Role: role}

	if err := conn.Omit(clause.Associations).Create(membership).Error; err != nil {
		t.Fatalf("Failed to add member: %v", err)
	}
}

// CreateEntry writes an entry and its group links directly, bypassing the
// membership check, so tests can build any state they need.
func CreateEntry(t *testing.T, conn *gorm.DB, userID, bourbonID string, rating int, createdAt time.Time, groupIDs ...string) *models.Entry {
	t.Helper()

	entry := &models.Entry{UserID: userID, BourbonID: bourbonID, Rating: rating}
	entry.CreatedAt = createdAt
	entry.UpdatedAt = createdAt

	if err := conn.Omit(clause.Associations).Create(entry).Error; err != nil {
		t.Fatalf("Failed to create entry: %v", err)
	}

	for _, groupID := range groupIDs {
		link := &models.GroupEntry{EntryID: entry.ID, GroupID: groupID, CreatedAt: createdAt}

		if err := conn.Omit(clause.Associations).Create(link).Error; err != nil {
			t.Fatalf("Failed to link entry: %v", err)
		}
	}

	return entry
}

// LinkedGroupIDs returns the groups an entry is linked to, sorted.
func LinkedGroupIDs(t *testing.T, conn *gorm.DB, entryID string) []string {
	t.Helper()

	var ids []string

	if err := conn.Model(&models.GroupEntry{}).Where("entry_id = ?", entryID).Order("group_id").Pluck("group_id", &ids).Error; err != nil {
		t.Fatalf("Failed to load links: %v", err)
	}

	return ids
}

func SessionCookie(t *testing.T, user *models.User) *http.Cookie {
	t.Helper()

	token, err := auth.GenerateJWT(user.ID, user.Email)

	if err != nil {
		t.Fatalf("Failed to generate JWT: %v", err)
	}

	return &http.Cookie{Name: types.SessionCookieName, Value: token}
}

// NewRequest builds a JSON request, authenticated as user when non-nil.
func NewRequest(t *testing.T, method, path string, body any, user *models.User) *http.Request {
	t.Helper()

	var reader io.Reader

	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		buf, err := json.Marshal(b)

		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}

		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)

	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if user != nil {
		req.AddCookie(SessionCookie(t, user))
	}

	return req
}

func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()

	if err := json.Unmarshal(rec.Body.Bytes(), dest); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
	}
}
