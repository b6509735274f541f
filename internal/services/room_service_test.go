package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

// Athens city centre; the satellite points sit a few km out.
const (
	baseLat = 37.9838
	baseLng = 23.7275
)

func newRoomSvc(t *testing.T) *RoomService {
	t.Helper()
	return NewRoomService(newTestDB(t), 3*time.Hour, 15.0)
}

func TestCreateRoom(t *testing.T) {
	svc := newRoomSvc(t)
	ctx := context.Background()

	before := time.Now().UTC()
	r, err := svc.Create(ctx, "creator-1", "  late night walk  ", "outdoors", baseLat, baseLng)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.Title != "late night walk" {
		t.Fatalf("title = %q, want trimmed", r.Title)
	}
	if !r.IsActive {
		t.Fatal("new room is not active")
	}
	ttl := r.ExpiresAt.Sub(before)
	if ttl < 2*time.Hour+59*time.Minute || ttl > 3*time.Hour+time.Minute {
		t.Fatalf("expiry %v after creation, want ~3h", ttl)
	}
}

func TestCreateRoomValidation(t *testing.T) {
	svc := newRoomSvc(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "c", "", "tag", baseLat, baseLng); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("empty title: got %v, want ErrMissingFields", err)
	}
	if _, err := svc.Create(ctx, "c", "title", "tag", 91, baseLng); !errors.Is(err, ErrInvalidLocation) {
		t.Fatalf("bad latitude: got %v, want ErrInvalidLocation", err)
	}
}

func TestCreateRoomOnePerCreator(t *testing.T) {
	svc := newRoomSvc(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "creator-1", "first", "tag", baseLat, baseLng); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.Create(ctx, "creator-1", "second", "tag", baseLat, baseLng); !errors.Is(err, ErrActiveRoomExists) {
		t.Fatalf("second create: got %v, want ErrActiveRoomExists", err)
	}
	// A different creator is unaffected.
	if _, err := svc.Create(ctx, "creator-2", "theirs", "tag", baseLat, baseLng); err != nil {
		t.Fatalf("other creator: %v", err)
	}
}

func TestNearbyFiltersAndSorts(t *testing.T) {
	svc := newRoomSvc(t)
	ctx := context.Background()

	// ~0km, ~11km north, and ~110km north of the query point.
	at := seedOpenRoom(t, svc.DB, "c1", baseLat, baseLng)
	near := seedOpenRoom(t, svc.DB, "c2", baseLat+0.1, baseLng)
	seedOpenRoom(t, svc.DB, "c3", baseLat+1.0, baseLng)
	seedExpiredRoom(t, svc.DB, "c4", baseLat, baseLng)

	got, err := svc.Nearby(ctx, baseLat, baseLng)
	if err != nil {
		t.Fatalf("Nearby: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Nearby returned %d rooms, want 2", len(got))
	}
	if got[0].ID != at.ID || got[1].ID != near.ID {
		t.Fatalf("order = [%s %s], want closest first", got[0].ID, got[1].ID)
	}
	if got[0].DistanceKm > got[1].DistanceKm {
		t.Fatal("distances not ascending")
	}
	if got[1].DistanceKm < 10 || got[1].DistanceKm > 12 {
		t.Fatalf("second room distance = %.2fkm, want ~11km", got[1].DistanceKm)
	}
}

func TestNearbyRejectsInvalidPosition(t *testing.T) {
	svc := newRoomSvc(t)
	if _, err := svc.Nearby(context.Background(), baseLat, 181); !errors.Is(err, ErrInvalidLocation) {
		t.Fatalf("got %v, want ErrInvalidLocation", err)
	}
}

func TestMyActive(t *testing.T) {
	svc := newRoomSvc(t)
	ctx := context.Background()

	if _, err := svc.MyActive(ctx, "creator-1"); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("no room yet: got %v, want ErrRoomNotFound", err)
	}

	created, err := svc.Create(ctx, "creator-1", "mine", "tag", baseLat, baseLng)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := svc.MyActive(ctx, "creator-1")
	if err != nil {
		t.Fatalf("MyActive: %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("MyActive = %s, want %s", got.ID, created.ID)
	}
}

func TestDeleteRoom(t *testing.T) {
	svc := newRoomSvc(t)
	ctx := context.Background()

	r, err := svc.Create(ctx, "creator-1", "mine", "tag", baseLat, baseLng)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, "someone-else", r.ID); !errors.Is(err, ErrNotRoomCreator) {
		t.Fatalf("foreign delete: got %v, want ErrNotRoomCreator", err)
	}
	if err := svc.Delete(ctx, "creator-1", "no-such-room"); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("unknown room: got %v, want ErrRoomNotFound", err)
	}

	if err := svc.Delete(ctx, "creator-1", r.ID); err != nil {
		t.Fatalf("creator delete: %v", err)
	}

	// Soft delete: the row survives but the room is closed everywhere.
	open, err := svc.Exists(ctx, r.ID)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if open {
		t.Fatal("deleted room still reported open")
	}
	if _, err := svc.MyActive(ctx, "creator-1"); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("MyActive after delete: got %v, want ErrRoomNotFound", err)
	}
	// The creator may open a new room now.
	if _, err := svc.Create(ctx, "creator-1", "again", "tag", baseLat, baseLng); err != nil {
		t.Fatalf("create after delete: %v", err)
	}
}

func TestExists(t *testing.T) {
	svc := newRoomSvc(t)
	ctx := context.Background()

	open, err := svc.Exists(ctx, "no-such-room")
	if err != nil {
		t.Fatalf("Exists unknown: %v", err)
	}
	if open {
		t.Fatal("unknown room reported open")
	}

	expired := seedExpiredRoom(t, svc.DB, "c1", baseLat, baseLng)
	open, err = svc.Exists(ctx, expired.ID)
	if err != nil {
		t.Fatalf("Exists expired: %v", err)
	}
	if open {
		t.Fatal("expired room reported open")
	}

	live := seedOpenRoom(t, svc.DB, "c2", baseLat, baseLng)
	open, err = svc.Exists(ctx, live.ID)
	if err != nil {
		t.Fatalf("Exists open: %v", err)
	}
	if !open {
		t.Fatal("open room reported closed")
	}
}
