package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var _ Model = (*VideoRecord)(nil)

// VideoRecord is the metadata for one video copied into the library directory.
//
// Fields are unexported so a record can't change after [NewVideoRecord] builds it.
type VideoRecord struct {
	id        string
	name      string
	size      int64
	path      string
	createdAt time.Time
}

// videoRecordJSON is the persisted shape of a [VideoRecord].
type videoRecordJSON struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewVideoRecord creates a record for a file imported at createdAt, deriving its ID with [RecordID].
func NewVideoRecord(name string, size int64, path string, createdAt time.Time) *VideoRecord {
	return &VideoRecord{
		id:        RecordID(name, createdAt),
		name:      name,
		size:      size,
		path:      path,
		createdAt: createdAt,
	}
}

// RecordID derives a record identifier from the import timestamp and the sanitized file name.
func RecordID(name string, createdAt time.Time) string {
	return fmt.Sprintf("video_%d_%s", createdAt.UnixMilli(), SanitizeName(name))
}

// SanitizeName replaces every character outside [A-Za-z0-9._-] with an underscore.
func SanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	if b.Len() == 0 {
		return "video"
	}
	return b.String()
}

func (v *VideoRecord) ID() string           { return v.id }
func (v *VideoRecord) Name() string         { return v.name }
func (v *VideoRecord) Size() int64          { return v.size }
func (v *VideoRecord) Path() string         { return v.path }
func (v *VideoRecord) CreatedAt() time.Time { return v.createdAt }

// Validate checks that the record has the fields a stored video needs.
func (v *VideoRecord) Validate() error {
	var errs []error
	if v.id == "" {
		errs = append(errs, errors.New("id is required"))
	}
	if strings.TrimSpace(v.name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if v.size < 0 {
		errs = append(errs, fmt.Errorf("size must not be negative, got %d", v.size))
	}
	if v.path == "" {
		errs = append(errs, errors.New("path is required"))
	}
	if v.createdAt.IsZero() {
		errs = append(errs, errors.New("created at is required"))
	}
	return errors.Join(errs...)
}

// MarshalJSON implements [json.Marshaler].
func (v *VideoRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(videoRecordJSON{
		ID:        v.id,
		Name:      v.name,
		Size:      v.size,
		Path:      v.path,
		CreatedAt: v.createdAt,
	})
}

// UnmarshalJSON implements [json.Unmarshaler].
func (v *VideoRecord) UnmarshalJSON(data []byte) error {
	var dto videoRecordJSON
	if err := json.Unmarshal(data, &dto); err != nil {
		return err
	}

	*v = VideoRecord{
		id:        dto.ID,
		name:      dto.Name,
		size:      dto.Size,
		path:      dto.Path,
		createdAt: dto.CreatedAt,
	}
	return nil
}

// ImportBatch summarizes one run of the import loop.
type ImportBatch struct {
	ID         string    `json:"id"`
	Total      int       `json:"total"`
	Imported   int       `json:"imported"`
	Failed     int       `json:"failed"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Duration is the wall time the batch took.
func (b *ImportBatch) Duration() time.Duration {
	return b.FinishedAt.Sub(b.StartedAt)
}
