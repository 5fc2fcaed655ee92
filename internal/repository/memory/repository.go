package memory

import (
	"sync"
	"time"

	"github.com/omarshaarawi/squashbot/internal/models"
)

// Repository keeps the last successfully fetched document. Documents are
// replaced, never modified.
type Repository struct {
	document  *models.Document
	fetchedAt time.Time
	mu        sync.RWMutex
}

func NewRepository() *Repository {
	return &Repository{}
}

func (r *Repository) SaveDocument(doc *models.Document, fetchedAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.document = doc
	r.fetchedAt = fetchedAt
}

func (r *Repository) GetDocument() (*models.Document, time.Time) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.document, r.fetchedAt
}
