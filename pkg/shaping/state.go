package shaping

import (
	"sync"

	"lanekit/shaperd/pkg/policy"
)

// Status is the activation state of an interface's shaping record.
type Status string

const (
	// StatusInactive means no policy is applied.
	StatusInactive Status = "inactive"

	// StatusActive means the named policy is fully applied.
	StatusActive Status = "active"
)

// Record is the active-policy record for one interface. It is replaced
// wholesale on every transition, never mutated field by field, so readers
// never observe a half-updated record.
type Record struct {
	Name   string             `json:"name"`
	Status Status             `json:"status"`
	Config *policy.Descriptor `json:"config,omitempty"`
}

// inactiveRecord is the initial and post-clear state.
var inactiveRecord = Record{Name: "none", Status: StatusInactive}

// Store holds the active-policy record for each interface along with the
// per-interface lock that serializes apply and clear runs. Interfaces are
// independent: operations on distinct interfaces may run concurrently.
//
// Only the controller's apply and clear paths call the mutators; everything
// else reads through Current.
type Store struct {
	mu      sync.RWMutex
	records map[string]Record
	locks   map[string]*sync.Mutex
}

// NewStore creates an empty store. Unknown interfaces read as inactive.
func NewStore() *Store {
	return &Store{
		records: make(map[string]Record),
		locks:   make(map[string]*sync.Mutex),
	}
}

// Current returns the record for iface. Interfaces never applied to report
// the inactive record.
func (s *Store) Current(iface string) Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.records[iface]; ok {
		return rec
	}
	return inactiveRecord
}

// RecordApplied replaces iface's record after a fully successful apply.
func (s *Store) RecordApplied(iface, name string, desc *policy.Descriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[iface] = Record{Name: name, Status: StatusActive, Config: desc}
}

// RecordCleared resets iface's record to inactive.
func (s *Store) RecordCleared(iface string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[iface] = inactiveRecord
}

// lockInterface acquires the per-interface mutation lock and returns the
// unlock function. A request for a different policy on the same interface
// waits here until the current run reaches a terminal outcome.
func (s *Store) lockInterface(iface string) func() {
	s.mu.Lock()
	l, ok := s.locks[iface]
	if !ok {
		l = &sync.Mutex{}
		s.locks[iface] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}
