package service

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/surylokesh1432/AI-Regulatory-Compliance-Checker-for-Contracts/model"
)

// utcTimestamp returns the compact UTC timestamp used to version
// artifact filenames.
func utcTimestamp() string {
	return time.Now().UTC().Format("20060102150405")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// readManifest loads a whole-file JSON manifest into dst. A missing or
// unparsable file yields an empty manifest rather than an error: the
// store favors availability over surfacing corruption.
func readManifest(path string, dst any) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	if err := json.Unmarshal(data, dst); err != nil {
		slog.Warn("manifest unreadable, treating as empty", "path", path, "error", err)
	}
}

// writeManifest overwrites the manifest atomically: the JSON document is
// written to a temp file in the same directory and renamed over the
// target, so a crash mid-write never truncates the store.
func writeManifest(path string, src any) error {
	data, err := json.MarshalIndent(src, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".manifest-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

// ContractStore persists contract records as a whole-file JSON manifest
// keyed by contract id. Every mutation rewrites the entire document.
type ContractStore struct {
	path string
	mu   sync.Mutex

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

func NewContractStore(path string) *ContractStore {
	return &ContractStore{
		path:  path,
		locks: make(map[string]*sync.Mutex),
	}
}

// Load returns the full manifest. Missing or corrupt files yield an
// empty map.
func (s *ContractStore) Load() map[string]*model.ContractRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *ContractStore) loadLocked() map[string]*model.ContractRecord {
	records := make(map[string]*model.ContractRecord)
	readManifest(s.path, &records)
	return records
}

// Save overwrites the full manifest.
func (s *ContractStore) Save(records map[string]*model.ContractRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeManifest(s.path, records)
}

// Get returns one record by id.
func (s *ContractStore) Get(id string) (*model.ContractRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.loadLocked()[id]
	return rec, ok
}

// Put inserts or replaces one record, rewriting the manifest.
func (s *ContractStore) Put(rec *model.ContractRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.loadLocked()
	records[rec.ID] = rec
	return writeManifest(s.path, records)
}

// Lock acquires the per-contract mutex and returns its release func.
// The orchestrator holds it across its whole load-mutate-save sequence
// so two passes against the same id cannot race on the pointer swap or
// delete each other's input file.
func (s *ContractStore) Lock(id string) func() {
	s.lockMu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.lockMu.Unlock()

	l.Lock()
	return l.Unlock
}

// RegulationStore persists regulation records as a whole-file JSON
// manifest keyed by regulation id. Records are replaced wholesale on
// each fetch cycle; there is no deletion path.
type RegulationStore struct {
	path string
	mu   sync.Mutex
}

func NewRegulationStore(path string) *RegulationStore {
	return &RegulationStore{path: path}
}

func (s *RegulationStore) Load() map[string]*model.RegulationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := make(map[string]*model.RegulationRecord)
	readManifest(s.path, &records)
	return records
}

func (s *RegulationStore) Save(records map[string]*model.RegulationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeManifest(s.path, records)
}
