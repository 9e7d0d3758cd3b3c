package media

import "time"

type OwnerType string

const (
	OwnerUser       OwnerType = "user"
	OwnerAttendance OwnerType = "attendance"
)

type Collection string

const (
	CollectionFaceReference Collection = "face-reference"
	CollectionCheckInPhoto  Collection = "check-in-photo"
	CollectionCheckOutPhoto Collection = "check-out-photo"
)

// Media is a stored file attached to an owner. Rows are immutable: replacing
// a collection inserts new rows and deletes the old ones.
type Media struct {
	ID          string
	OwnerType   OwnerType
	OwnerID     string
	Collection  Collection
	Path        string
	FileName    string
	ContentType string
	Size        int64
	Position    int
	CreatedAt   time.Time
}

// Upload is an in-memory file received from a client.
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// IsEventPhoto reports whether c holds a single photo owned by an attendance.
func (c Collection) IsEventPhoto() bool {
	return c == CollectionCheckInPhoto || c == CollectionCheckOutPhoto
}
