package service

import (
	"context"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/slugster/slugster/internal/app/repository"
)

const (
	// Sized for ten million slugs at a 0.1% false-positive rate. A false
	// positive falls through to the database, so overflow only costs
	// lookups, never correctness.
	filterCapacity = 10_000_000
	filterFPRate   = 0.001
)

// SlugFilter fronts slug lookups with a bloom filter so visits to slugs
// that were never issued are rejected without a database round trip.
// The filter only ever grows; deleted slugs stay in it as false positives.
type SlugFilter struct {
	mu     sync.RWMutex
	filter *bloom.BloomFilter
}

// NewSlugFilter returns an empty filter.
func NewSlugFilter() *SlugFilter {
	return &SlugFilter{
		filter: bloom.NewWithEstimates(filterCapacity, filterFPRate),
	}
}

// Seed loads every existing slug from the link store.
func (f *SlugFilter) Seed(ctx context.Context, links repository.LinkRepository) error {
	slugs, err := links.ListSlugs(ctx)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range slugs {
		f.filter.AddString(s)
	}
	return nil
}

// Add records a freshly issued slug.
func (f *SlugFilter) Add(slug string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter.AddString(slug)
}

// MayExist reports whether slug could have been issued. False means
// definitely unknown; true requires a store lookup to confirm.
func (f *SlugFilter) MayExist(slug string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.filter.TestString(slug)
}
