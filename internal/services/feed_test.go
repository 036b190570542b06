package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/iheartbourbon/bourbon/internal/models"
	"github.com/iheartbourbon/bourbon/internal/testutil"
)

func TestFeedVisibility(t *testing.T) {
	ctx := context.Background()
	conn := testutil.SetupTestDB(t)
	viewer := testutil.CreateUser(t, conn, "Viewer", "viewer@example.com")
	friend := testutil.CreateUser(t, conn, "Friend", "friend@example.com")
	stranger := testutil.CreateUser(t, conn, "Stranger", "stranger@example.com")

	shared := testutil.CreateGroup(t, conn, friend.ID, "Zebra Club")
	alsoShared := testutil.CreateGroup(t, conn, friend.ID, "Alpha Club")
	private := testutil.CreateGroup(t, conn, friend.ID, "Friend Only")
	other := testutil.CreateGroup(t, conn, stranger.ID, "Elsewhere")
	testutil.AddMember(t, conn, shared.ID, viewer.ID, models.RoleMember)
	testutil.AddMember(t, conn, alsoShared.ID, viewer.ID, models.RoleMember)

	bourbon := testutil.CreateBourbon(t, conn, friend.ID, "Blanton's")
	now := time.Now()

	visible := testutil.CreateEntry(t, conn, friend.ID, bourbon.ID, 5, now.Add(-time.Minute), shared.ID, alsoShared.ID, private.ID)
	testutil.CreateEntry(t, conn, friend.ID, bourbon.ID, 2, now, private.ID)
	testutil.CreateEntry(t, conn, friend.ID, bourbon.ID, 3, now)
	testutil.CreateEntry(t, conn, stranger.ID, bourbon.ID, 4, now, other.ID)
	testutil.CreateEntry(t, conn, viewer.ID, bourbon.ID, 4, now, shared.ID)

	items, err := Feed(ctx, conn, viewer.ID)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}

	if len(items) != 1 {
		t.Fatalf("feed has %d items, want 1", len(items))
	}

	item := items[0]
	if item.Entry.ID != visible.ID {
		t.Errorf("entry = %s, want %s", item.Entry.ID, visible.ID)
	}
	if item.Entry.User.Name != "Friend" || item.Entry.Bourbon.Name != "Blanton's" {
		t.Errorf("entry relations not loaded: %+v", item.Entry)
	}

	if len(item.Groups) != 2 || item.Groups[0].Name != "Alpha Club" || item.Groups[1].Name != "Zebra Club" {
		t.Errorf("groups = %+v, want Alpha Club and Zebra Club only", item.Groups)
	}
}

func TestFeedOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	conn := testutil.SetupTestDB(t)
	viewer := testutil.CreateUser(t, conn, "Viewer", "viewer@example.com")
	friend := testutil.CreateUser(t, conn, "Friend", "friend@example.com")
	group := testutil.CreateGroup(t, conn, friend.ID, "Club")
	testutil.AddMember(t, conn, group.ID, viewer.ID, models.RoleMember)
	bourbon := testutil.CreateBourbon(t, conn, friend.ID, "Eagle Rare")

	base := time.Now().Add(-time.Hour)

	for i := 0; i < FeedPageSize+5; i++ {
		testutil.CreateEntry(t, conn, friend.ID, bourbon.ID, 1+i%5, base.Add(time.Duration(i)*time.Minute), group.ID)
	}

	items, err := Feed(ctx, conn, viewer.ID)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}

	if len(items) != FeedPageSize {
		t.Fatalf("feed has %d items, want %d", len(items), FeedPageSize)
	}

	for i := 1; i < len(items); i++ {
		if items[i].Entry.CreatedAt.After(items[i-1].Entry.CreatedAt) {
			t.Fatalf("item %d is newer than item %d", i, i-1)
		}
	}

	newest := base.Add(time.Duration(FeedPageSize+4) * time.Minute)
	if !items[0].Entry.CreatedAt.Equal(newest) {
		t.Errorf("first item created %v, want %v", items[0].Entry.CreatedAt, newest)
	}
}

func TestFeedWithoutGroups(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	loner := testutil.CreateUser(t, conn, "Loner", "loner@example.com")

	items, err := Feed(context.Background(), conn, loner.ID)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}

	if items == nil || len(items) != 0 {
		t.Errorf("items = %v, want empty non-nil slice", items)
	}
}

func TestFeedDeduplicatesAcrossGroups(t *testing.T) {
	ctx := context.Background()
	conn := testutil.SetupTestDB(t)
	viewer := testutil.CreateUser(t, conn, "Viewer", "viewer@example.com")
	friend := testutil.CreateUser(t, conn, "Friend", "friend@example.com")
	bourbon := testutil.CreateBourbon(t, conn, friend.ID, "Four Roses")

	var groupIDs []string

	for i := 0; i < 3; i++ {
		group := testutil.CreateGroup(t, conn, friend.ID, fmt.Sprintf("Group %d", i))
		testutil.AddMember(t, conn, group.ID, viewer.ID, models.RoleMember)
		groupIDs = append(groupIDs, group.ID)
	}

	testutil.CreateEntry(t, conn, friend.ID, bourbon.ID, 4, time.Now(), groupIDs...)

	items, err := Feed(ctx, conn, viewer.ID)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}

	if len(items) != 1 || len(items[0].Groups) != 3 {
		t.Errorf("items = %+v, want one entry with three groups", items)
	}
}
