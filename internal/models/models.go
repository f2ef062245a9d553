// package models defines the data model for the video library
package models

import (
	"time"
)

// Model defines the base interface for all persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// VideoStore defines ordered persistence for [VideoRecord] values.
//
// List returns records in import order.
type VideoStore interface {
	List() ([]*VideoRecord, error)          // List returns every record in import order
	Get(id string) (*VideoRecord, error)    // Get retrieves a record by its ID
	Add(record *VideoRecord) error          // Add appends a record to the collection
	Remove(id string) (*VideoRecord, error) // Remove deletes a record by ID and returns it
	Replace(records []*VideoRecord) error   // Replace overwrites the whole collection
}

// BatchStore records the outcome of import runs.
type BatchStore interface {
	Record(batch *ImportBatch) error
	Recent(limit int) ([]*ImportBatch, error)
}
