// Package memory provides in-process implementations of the facility and practitioner repositories.
package memory

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/medilink/backend/internal/domain/entities"
)

// Dataset is the JSON seed format shared by the memory store and the seed command
type Dataset struct {
	Facilities    []*entities.Facility     `json:"facilities"`
	Practitioners []*entities.Practitioner `json:"practitioners"`
}

// ReadDataset decodes a dataset from r
func ReadDataset(r io.Reader) (*Dataset, error) {
	var ds Dataset
	if err := json.NewDecoder(r).Decode(&ds); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}
	return &ds, nil
}

// ReadDatasetFile decodes a dataset from the file at path
func ReadDatasetFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()
	return ReadDataset(f)
}

// Store holds facilities and practitioners in memory. It is safe for concurrent use.
type Store struct {
	mu            sync.RWMutex
	facilities    map[string]entities.Facility
	practitioners map[string]entities.Practitioner
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		facilities:    make(map[string]entities.Facility),
		practitioners: make(map[string]entities.Practitioner),
	}
}

// NewStoreFromDataset creates a store holding copies of the dataset's records
func NewStoreFromDataset(ds *Dataset) *Store {
	s := NewStore()
	for _, f := range ds.Facilities {
		s.putFacility(f)
	}
	for _, p := range ds.Practitioners {
		s.putPractitioner(p)
	}
	return s
}

func (s *Store) putFacility(f *entities.Facility) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.facilities[f.ID] = *f
}

func (s *Store) putPractitioner(p *entities.Practitioner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.practitioners[p.ID] = p.Clone()
}

// snapshotFacilities returns copies of every stored facility ordered by id
func (s *Store) snapshotFacilities() []*entities.Facility {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entities.Facility, 0, len(s.facilities))
	for _, f := range s.facilities {
		out = append(out, &f)
	}
	slices.SortFunc(out, func(a, b *entities.Facility) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// snapshotPractitioners returns copies of every stored practitioner ordered by id
func (s *Store) snapshotPractitioners() []*entities.Practitioner {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entities.Practitioner, 0, len(s.practitioners))
	for _, p := range s.practitioners {
		c := p.Clone()
		out = append(out, &c)
	}
	slices.SortFunc(out, func(a, b *entities.Practitioner) int { return strings.Compare(a.ID, b.ID) })
	return out
}
