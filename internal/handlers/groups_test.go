package handlers

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/iheartbourbon/bourbon/internal/models"
	"github.com/iheartbourbon/bourbon/internal/testutil"
	"github.com/iheartbourbon/bourbon/internal/types"
)

func TestCreateAndJoinGroup(t *testing.T) {
	r, conn := newTestEngine(t, Options{})
	alice := testutil.CreateUser(t, conn, "Alice", "alice@example.com")
	bob := testutil.CreateUser(t, conn, "Bob", "bob@example.com")

	rec := do(t, r, http.MethodPost, "/api/groups", map[string]string{"name": "Friday Flights"}, alice)
	expectStatus(t, rec, http.StatusCreated)

	var created struct {
		Group types.GroupResponse `json:"group"`
	}
	testutil.DecodeJSON(t, rec, &created)

	if !strings.HasPrefix(created.Group.Slug, "friday-flights-") {
		t.Errorf("slug = %q", created.Group.Slug)
	}

	join := do(t, r, http.MethodPost, "/api/groups/join", map[string]string{"slug": " " + strings.ToUpper(created.Group.Slug) + " "}, bob)
	expectStatus(t, join, http.StatusCreated)

	again := do(t, r, http.MethodPost, "/api/groups/join", map[string]string{"slug": created.Group.Slug}, bob)
	expectStatus(t, again, http.StatusOK)

	var joined struct {
		Message       string `json:"message"`
		AlreadyMember bool   `json:"alreadyMember"`
	}
	testutil.DecodeJSON(t, again, &joined)

	if !joined.AlreadyMember || joined.Message != "Already a member" {
		t.Errorf("second join = %+v", joined)
	}

	unknown := do(t, r, http.MethodPost, "/api/groups/join", map[string]string{"slug": "nope"}, bob)
	expectError(t, unknown, http.StatusNotFound, "Group not found")

	blank := do(t, r, http.MethodPost, "/api/groups/join", map[string]string{"slug": "   "}, bob)
	expectError(t, blank, http.StatusBadRequest, "Group code is required")

	list := do(t, r, http.MethodGet, "/api/groups", nil, bob)
	expectStatus(t, list, http.StatusOK)

	var groups struct {
		Groups []types.UserGroupResponse `json:"groups"`
	}
	testutil.DecodeJSON(t, list, &groups)

	if len(groups.Groups) != 1 || groups.Groups[0].Role != models.RoleMember || groups.Groups[0].MemberCount != 2 {
		t.Errorf("groups = %+v", groups.Groups)
	}
}

func TestGetGroupBySlug(t *testing.T) {
	r, conn := newTestEngine(t, Options{})
	alice := testutil.CreateUser(t, conn, "Alice", "alice@example.com")
	outsider := testutil.CreateUser(t, conn, "Outsider", "outsider@example.com")
	group := testutil.CreateGroup(t, conn, alice.ID, "Preview Me")
	bourbon := testutil.CreateBourbon(t, conn, alice.ID, "Maker's 46")
	testutil.CreateEntry(t, conn, alice.ID, bourbon.ID, 5, time.Now(), group.ID)

	rec := do(t, r, http.MethodGet, "/api/groups/slug/"+group.Slug, nil, outsider)
	expectStatus(t, rec, http.StatusOK)

	var body struct {
		Group types.GroupResponse      `json:"group"`
		Stats types.GroupStatsResponse `json:"stats"`
	}
	testutil.DecodeJSON(t, rec, &body)

	if body.Group.ID != group.ID || body.Stats.MemberCount != 1 || body.Stats.EntryCount != 1 {
		t.Errorf("preview = %+v", body)
	}
	if body.Stats.AverageRating != 0 {
		t.Errorf("preview exposed the average rating: %v", body.Stats.AverageRating)
	}
	if body.Group.Creator == nil || body.Group.Creator.Name != "Alice" {
		t.Errorf("creator = %+v", body.Group.Creator)
	}
}

func TestGetGroupDetail(t *testing.T) {
	r, conn := newTestEngine(t, Options{})
	alice := testutil.CreateUser(t, conn, "Alice", "alice@example.com")
	bob := testutil.CreateUser(t, conn, "Bob", "bob@example.com")
	outsider := testutil.CreateUser(t, conn, "Outsider", "outsider@example.com")
	group := testutil.CreateGroup(t, conn, alice.ID, "Club")
	testutil.AddMember(t, conn, group.ID, bob.ID, models.RoleMember)
	bourbon := testutil.CreateBourbon(t, conn, alice.ID, "Wild Turkey Rare Breed")
	testutil.CreateEntry(t, conn, alice.ID, bourbon.ID, 3, time.Now(), group.ID)
	testutil.CreateEntry(t, conn, bob.ID, bourbon.ID, 5, time.Now(), group.ID)
	testutil.CreateEntry(t, conn, bob.ID, bourbon.ID, 4, time.Now(), group.ID)
	path := "/api/groups/" + group.ID

	rec := do(t, r, http.MethodGet, path, nil, bob)
	expectStatus(t, rec, http.StatusOK)

	var body struct {
		Group types.GroupDetailResponse `json:"group"`
	}
	testutil.DecodeJSON(t, rec, &body)

	if len(body.Group.Members) != 2 || len(body.Group.Entries) != 3 {
		t.Errorf("members=%d entries=%d", len(body.Group.Members), len(body.Group.Entries))
	}
	if body.Group.Stats.AverageRating != 4 || body.Group.Stats.EntryCount != 3 {
		t.Errorf("stats = %+v", body.Group.Stats)
	}

	forbidden := do(t, r, http.MethodGet, path, nil, outsider)
	expectError(t, forbidden, http.StatusForbidden, "You are not authorized to view this group")

	invalid := do(t, r, http.MethodGet, "/api/groups/not-a-uuid", nil, bob)
	expectError(t, invalid, http.StatusBadRequest, "Invalid Group ID")
}

func TestCreateGroupMarkupOnlyName(t *testing.T) {
	r, conn := newTestEngine(t, Options{})
	alice := testutil.CreateUser(t, conn, "Alice", "alice@example.com")

	for _, name := range []string{"<b></b>", "&lt;b&gt;&lt;/b&gt;", "  <script>x</script> "} {
		rec := do(t, r, http.MethodPost, "/api/groups", map[string]string{"name": name}, alice)
		expectError(t, rec, http.StatusBadRequest, "Name is required")
	}

	var count int64
	conn.Model(&models.Group{}).Count(&count)
	if count != 0 {
		t.Errorf("groups = %d, want 0", count)
	}
}
