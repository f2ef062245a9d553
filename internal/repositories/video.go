package repositories

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/desertthunder/vidshelf/internal/models"
	"github.com/desertthunder/vidshelf/internal/shared"
)

// VideosKey is the fixed key the video list is stored under.
const VideosKey = "@vidshelf/videos"

var _ models.VideoStore = (*VideoRepository)(nil)

// ItemStore is the key-value surface [VideoRepository] persists through.
type ItemStore interface {
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

// VideoRepository implements [models.VideoStore] as a JSON array written under [VideosKey].
//
// Every mutation reads the whole array, changes it and writes it back.
type VideoRepository struct {
	mu    sync.Mutex
	items ItemStore
}

// NewVideoRepository creates a new VideoRepository on top of the given [ItemStore]
func NewVideoRepository(items ItemStore) *VideoRepository {
	return &VideoRepository{items: items}
}

// List returns every record in import order. A missing key is an empty library.
func (r *VideoRepository) List() ([]*models.VideoRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

// Get retrieves a record by ID
func (r *VideoRepository) Get(id string) (*models.VideoRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return nil, err
	}

	for _, record := range records {
		if record.ID() == id {
			return record, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrVideoNotFound, id)
}

// Add validates record and appends it to the end of the list
func (r *VideoRepository) Add(record *models.VideoRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return err
	}

	for _, existing := range records {
		if existing.ID() == record.ID() {
			return fmt.Errorf("%w: %s", shared.ErrDuplicateID, record.ID())
		}
	}

	return r.save(append(records, record))
}

// Remove deletes the record with the given ID and returns it
func (r *VideoRepository) Remove(id string) (*models.VideoRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return nil, err
	}

	for i, record := range records {
		if record.ID() != id {
			continue
		}

		kept := make([]*models.VideoRecord, 0, len(records)-1)
		kept = append(kept, records[:i]...)
		kept = append(kept, records[i+1:]...)
		if err := r.save(kept); err != nil {
			return nil, err
		}
		return record, nil
	}

	return nil, fmt.Errorf("%w: %s", shared.ErrVideoNotFound, id)
}

// Replace overwrites the stored list. An empty list removes the key.
func (r *VideoRepository) Replace(records []*models.VideoRecord) error {
	for _, record := range records {
		if err := record.Validate(); err != nil {
			return fmt.Errorf("validation failed for %s: %w", record.ID(), err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(records)
}

func (r *VideoRepository) load() ([]*models.VideoRecord, error) {
	raw, ok, err := r.items.GetItem(VideosKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStore, err)
	}
	if !ok || raw == "" {
		return []*models.VideoRecord{}, nil
	}

	var records []*models.VideoRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrCorruptStore, err)
	}
	if records == nil {
		records = []*models.VideoRecord{}
	}
	return records, nil
}

func (r *VideoRepository) save(records []*models.VideoRecord) error {
	if len(records) == 0 {
		if err := r.items.RemoveItem(VideosKey); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrStore, err)
		}
		return nil
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode video list: %w", err)
	}

	if err := r.items.SetItem(VideosKey, string(data)); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStore, err)
	}
	return nil
}
