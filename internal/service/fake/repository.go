package fake

import (
	"context"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/presensi-app/attendance-backend-go/internal/domain/attendance"
	"github.com/presensi-app/attendance-backend-go/internal/domain/auth"
	"github.com/presensi-app/attendance-backend-go/internal/domain/media"
	"github.com/presensi-app/attendance-backend-go/internal/domain/user"
)

func sortMedia(items []media.Media) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Position != items[j].Position {
			return items[i].Position < items[j].Position
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}

func page(total, pageNum, limit int) (int, int) {
	if limit <= 0 {
		limit = 15
	}
	start := (pageNum - 1) * limit
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := min(start+limit, total)
	return start, end
}

// ==================== USERS ====================

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.Users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (user.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.Users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r *UserRepository) List(ctx context.Context, filter user.UserFilter) ([]user.User, int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	roles := filter.Kind.Roles()
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var matched []user.User
	for _, u := range r.db.Users {
		if !slices.Contains(roles, u.Role) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(u.Name), search) && !strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}
		matched = append(matched, u)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	start, end := page(len(matched), filter.Page, filter.Limit)
	return matched[start:end], int64(len(matched)), nil
}

func (r *UserRepository) Create(ctx context.Context, newUser user.User) (user.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.Users {
		if strings.EqualFold(u.Email, newUser.Email) {
			return user.User{}, user.ErrUserEmailExists
		}
	}
	id, at := r.db.nextID()
	if newUser.ID == "" {
		newUser.ID = id
	}
	newUser.Email = strings.ToLower(strings.TrimSpace(newUser.Email))
	newUser.CreatedAt, newUser.UpdatedAt = at, at
	r.db.Users[newUser.ID] = newUser
	return newUser, nil
}

func (r *UserRepository) Update(ctx context.Context, u user.User) (user.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, ok := r.db.Users[u.ID]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	for _, other := range r.db.Users {
		if other.ID != u.ID && strings.EqualFold(other.Email, u.Email) {
			return user.User{}, user.ErrUserEmailExists
		}
	}
	_, at := r.db.nextID()
	existing.Name = u.Name
	existing.Email = strings.ToLower(strings.TrimSpace(u.Email))
	existing.Role = u.Role
	existing.UpdatedAt = at
	r.db.Users[u.ID] = existing
	return existing, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.Users[userID]
	if !ok {
		return user.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	r.db.Users[userID] = u
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.Users[id]; !ok {
		return user.ErrUserNotFound
	}
	delete(r.db.Users, id)
	for attID, a := range r.db.Attendances {
		if a.UserID == id {
			delete(r.db.Attendances, attID)
		}
	}
	return nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.Users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// ==================== ATTENDANCES ====================

type AttendanceRepository struct {
	db *DB
}

func NewAttendanceRepository(db *DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) withUser(a attendance.Attendance) attendance.Attendance {
	if u, ok := r.db.Users[a.UserID]; ok {
		name, email := u.Name, u.Email
		a.UserName, a.UserEmail = &name, &email
	}
	return a
}

func (r *AttendanceRepository) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if a.CheckOut == nil {
		for _, existing := range r.db.Attendances {
			if existing.UserID == a.UserID && existing.CheckOut == nil {
				return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
			}
		}
	}
	id, at := r.db.nextID()
	if a.ID == "" {
		a.ID = id
	}
	a.CreatedAt, a.UpdatedAt = at, at
	r.db.Attendances[a.ID] = a
	return a, nil
}

func (r *AttendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.Attendances[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return r.withUser(a), nil
}

func (r *AttendanceRepository) GetOpenByUserID(ctx context.Context, userID string) (*attendance.Attendance, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, a := range r.db.Attendances {
		if a.UserID == userID && a.CheckOut == nil {
			return &a, nil
		}
	}
	return nil, nil
}

func (r *AttendanceRepository) Close(ctx context.Context, id string, userID string, checkOut time.Time) (attendance.Attendance, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.Attendances[id]
	if !ok || a.UserID != userID {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	if a.CheckOut != nil {
		return attendance.Attendance{}, attendance.ErrAlreadyCheckedOut
	}
	_, at := r.db.nextID()
	a.CheckOut = &checkOut
	a.UpdatedAt = at
	r.db.Attendances[id] = a
	return a, nil
}

func (r *AttendanceRepository) UpdateDistances(ctx context.Context, id string, checkIn *float64, checkOut *float64) (attendance.Attendance, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.Attendances[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	if checkIn != nil {
		a.CheckInPhotoDistance = checkIn
	}
	if checkOut != nil {
		a.CheckOutPhotoDistance = checkOut
	}
	_, at := r.db.nextID()
	a.UpdatedAt = at
	r.db.Attendances[id] = a
	return a, nil
}

func (r *AttendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var matched []attendance.Attendance
	for _, a := range r.db.Attendances {
		if filter.UserID != nil && *filter.UserID != "" && a.UserID != *filter.UserID {
			continue
		}
		if filter.SinceTime != nil && (a.CheckIn == nil || a.CheckIn.Before(*filter.SinceTime)) {
			continue
		}
		if filter.UntilTime != nil && (a.CheckIn == nil || a.CheckIn.After(*filter.UntilTime)) {
			continue
		}
		matched = append(matched, r.withUser(a))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	start, end := page(len(matched), filter.Page, filter.Limit)
	return matched[start:end], int64(len(matched)), nil
}

// ==================== MEDIA ====================

type MediaRepository struct {
	db *DB

	// CreateErr, when set, fails every Create.
	CreateErr error
}

func NewMediaRepository(db *DB) *MediaRepository {
	return &MediaRepository{db: db}
}

func (r *MediaRepository) ListByOwner(ctx context.Context, ownerType media.OwnerType, ownerID string, collection media.Collection) ([]media.Media, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.mediaOf(ownerType, ownerID, collection), nil
}

func (r *MediaRepository) ListByOwners(ctx context.Context, ownerType media.OwnerType, ownerIDs []string) ([]media.Media, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var items []media.Media
	for _, m := range r.db.Media {
		if m.OwnerType == ownerType && slices.Contains(ownerIDs, m.OwnerID) {
			items = append(items, m)
		}
	}
	sortMedia(items)
	return items, nil
}

func (r *MediaRepository) CountByOwner(ctx context.Context, ownerType media.OwnerType, ownerID string, collection media.Collection) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return len(r.db.mediaOf(ownerType, ownerID, collection)), nil
}

func (r *MediaRepository) Create(ctx context.Context, m media.Media) (media.Media, error) {
	if r.CreateErr != nil {
		return media.Media{}, r.CreateErr
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	id, at := r.db.nextID()
	if m.ID == "" {
		m.ID = id
	}
	m.CreatedAt = at
	r.db.Media[m.ID] = m
	return m, nil
}

func (r *MediaRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, id := range ids {
		delete(r.db.Media, id)
	}
	return nil
}

func (r *MediaRepository) DeleteByOwner(ctx context.Context, ownerType media.OwnerType, ownerID string) ([]media.Media, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var deleted []media.Media
	for id, m := range r.db.Media {
		owned := m.OwnerType == ownerType && m.OwnerID == ownerID
		if !owned && ownerType == media.OwnerUser && m.OwnerType == media.OwnerAttendance {
			a, ok := r.db.Attendances[m.OwnerID]
			owned = ok && a.UserID == ownerID
		}
		if owned {
			deleted = append(deleted, m)
			delete(r.db.Media, id)
		}
	}
	return deleted, nil
}

// ==================== REFRESH TOKENS ====================

type RefreshTokenRepository struct {
	db *DB
}

func NewRefreshTokenRepository(db *DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) CreateRefreshToken(ctx context.Context, userID string, token string, expiresAt int64, sessionReq auth.SessionTrackingRequest) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.Tokens[token] = Token{UserID: userID, ExpiresAt: time.Unix(expiresAt, 0)}
	return nil
}

func (r *RefreshTokenRepository) IsRefreshTokenRevoked(ctx context.Context, token string) (string, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.Tokens[token]
	if !ok {
		return "", true, nil
	}
	return t.UserID, t.Revoked || !t.ExpiresAt.After(time.Now()), nil
}

func (r *RefreshTokenRepository) RevokeRefreshToken(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if t, ok := r.db.Tokens[token]; ok && !t.Revoked {
		t.Revoked = true
		t.RevokedAt = time.Now()
		r.db.Tokens[token] = t
	}
	return nil
}

func (r *RefreshTokenRepository) DeleteStaleRefreshTokens(ctx context.Context, before time.Time) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var deleted int64
	for token, t := range r.db.Tokens {
		if t.ExpiresAt.Before(before) || (t.Revoked && !t.RevokedAt.IsZero() && t.RevokedAt.Before(before)) {
			delete(r.db.Tokens, token)
			deleted++
		}
	}
	return deleted, nil
}
