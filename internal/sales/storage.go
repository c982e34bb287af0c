package sales

import (
	"errors"
	"sync"
)

// ErrNotFound is returned when a sale with the given ID is not found.
var ErrNotFound = errors.New("sale not found")

// ErrEmptyID is returned when trying to store a sale without an ID.
var ErrEmptyID = errors.New("empty sale ID")

// Storage is the persistence interface behind the backend stub.
type Storage interface {
	Set(detail *Detail) error
	Read(id int64) (*Detail, error)
	GetAll() ([]*Detail, error)
	Delete(id int64) error
}

// LocalStorage provides an in-memory implementation for storing sales.
type LocalStorage struct {
	mu sync.RWMutex
	m  map[int64]*Detail
}

// NewLocalStorage instantiates a new LocalStorage with an empty map.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{
		m: map[int64]*Detail{},
	}
}

// Set stores a sale with its dependents, replacing any previous version.
// Returns ErrEmptyID if the sale has no ID.
func (l *LocalStorage) Set(detail *Detail) error {
	if detail.Sale.ID == 0 {
		return ErrEmptyID
	}
	l.mu.Lock()
	l.m[detail.Sale.ID] = detail
	l.mu.Unlock()
	return nil
}

// Read retrieves a sale by ID.
// Returns ErrNotFound if the sale is not found.
func (l *LocalStorage) Read(id int64) (*Detail, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	d, ok := l.m[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

// GetAll retrieves every stored sale in no particular order.
func (l *LocalStorage) GetAll() ([]*Detail, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	all := make([]*Detail, 0, len(l.m))
	for _, d := range l.m {
		all = append(all, d)
	}
	return all, nil
}

// Delete removes a sale. Returns ErrNotFound if it does not exist.
func (l *LocalStorage) Delete(id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.m[id]; !ok {
		return ErrNotFound
	}
	delete(l.m, id)
	return nil
}
