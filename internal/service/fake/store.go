// Package fake provides in-memory repositories, storage and face service
// doubles for service and handler tests.
package fake

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/presensi-app/attendance-backend-go/internal/domain/attendance"
	"github.com/presensi-app/attendance-backend-go/internal/domain/media"
	"github.com/presensi-app/attendance-backend-go/internal/domain/user"
)

type txKey struct{}

// DB is a shared in-memory dataset. Transactions snapshot it and restore the
// snapshot when the callback fails.
type DB struct {
	mu          sync.Mutex
	seq         int
	clock       time.Time
	Users       map[string]user.User
	Attendances map[string]attendance.Attendance
	Media       map[string]media.Media
	Tokens      map[string]Token

	// Commits counts successful outermost transactions.
	Commits int
	// Rollbacks counts failed outermost transactions.
	Rollbacks int
}

type Token struct {
	UserID    string
	ExpiresAt time.Time
	Revoked   bool
	RevokedAt time.Time
}

func NewDB() *DB {
	return &DB{
		clock:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Users:       map[string]user.User{},
		Attendances: map[string]attendance.Attendance{},
		Media:       map[string]media.Media{},
		Tokens:      map[string]Token{},
	}
}

// nextID returns a unique UUIDv7-shaped id and a strictly increasing
// timestamp. Callers hold mu.
func (db *DB) nextID() (string, time.Time) {
	db.seq++
	return fmt.Sprintf("0195a0c4-0000-7000-8000-%012d", db.seq), db.clock.Add(time.Duration(db.seq) * time.Second)
}

// WithinTransaction implements postgresql.TxManager.
func (db *DB) WithinTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	db.mu.Lock()
	users := maps.Clone(db.Users)
	attendances := maps.Clone(db.Attendances)
	files := maps.Clone(db.Media)
	tokens := maps.Clone(db.Tokens)
	db.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		db.mu.Lock()
		db.Users, db.Attendances, db.Media, db.Tokens = users, attendances, files, tokens
		db.Rollbacks++
		db.mu.Unlock()
		return err
	}

	db.mu.Lock()
	db.Commits++
	db.mu.Unlock()
	return nil
}

// AddUser inserts u directly, filling ID and timestamps when empty.
func (db *DB) AddUser(u user.User) user.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	id, at := db.nextID()
	if u.ID == "" {
		u.ID = id
	}
	u.CreatedAt, u.UpdatedAt = at, at
	db.Users[u.ID] = u
	return u
}

// AddMedia inserts m directly, filling ID and timestamps when empty.
func (db *DB) AddMedia(m media.Media) media.Media {
	db.mu.Lock()
	defer db.mu.Unlock()
	id, at := db.nextID()
	if m.ID == "" {
		m.ID = id
	}
	m.CreatedAt = at
	db.Media[m.ID] = m
	return m
}

// AddAttendance inserts a directly, filling ID and timestamps when empty.
func (db *DB) AddAttendance(a attendance.Attendance) attendance.Attendance {
	db.mu.Lock()
	defer db.mu.Unlock()
	id, at := db.nextID()
	if a.ID == "" {
		a.ID = id
	}
	a.CreatedAt, a.UpdatedAt = at, at
	db.Attendances[a.ID] = a
	return a
}

// GetAttendance returns the stored record with id.
func (db *DB) GetAttendance(id string) (attendance.Attendance, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	a, ok := db.Attendances[id]
	return a, ok
}

// MediaOf returns the stored rows of owner in one collection ordered by position.
func (db *DB) MediaOf(ownerType media.OwnerType, ownerID string, collection media.Collection) []media.Media {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.mediaOf(ownerType, ownerID, collection)
}

func (db *DB) mediaOf(ownerType media.OwnerType, ownerID string, collection media.Collection) []media.Media {
	var items []media.Media
	for _, m := range db.Media {
		if m.OwnerType == ownerType && m.OwnerID == ownerID && m.Collection == collection {
			items = append(items, m)
		}
	}
	sortMedia(items)
	return items
}

func (db *DB) CountAttendances() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.Attendances)
}
