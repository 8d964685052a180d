package service

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/surylokesh1432/AI-Regulatory-Compliance-Checker-for-Contracts/model"
)

// Registrar copies uploaded contracts into managed storage and creates
// their manifest records.
type Registrar struct {
	store        *ContractStore
	contractsDir string
}

func NewRegistrar(store *ContractStore, contractsDir string) *Registrar {
	return &Registrar{store: store, contractsDir: contractsDir}
}

// Register writes the uploaded bytes into the contracts directory and
// creates the initial record with current_version_path == path. A file
// name that already exists on disk is disambiguated with a timestamp
// suffix (plus a counter when several uploads land in the same second)
// so a previous upload is never clobbered; an id that already exists in
// the manifest is disambiguated the same way so a record with history
// is never silently replaced.
func (r *Registrar) Register(data []byte, name string) (*model.ContractRecord, error) {
	name = filepath.Base(name)
	if name == "" || name == "." {
		return nil, fmt.Errorf("invalid upload name %q", name)
	}

	if err := os.MkdirAll(r.contractsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create contracts dir: %w", err)
	}

	dest, err := r.writeUpload(name, data)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(dest)
	if err != nil {
		abs = dest
	}

	id := r.freeID(strings.TrimSuffix(filepath.Base(dest), filepath.Ext(dest)))

	rec := &model.ContractRecord{
		ID:                 id,
		Path:               abs,
		CurrentVersionPath: abs,
		RegisteredAt:       time.Now().UTC(),
	}
	if err := r.store.Put(rec); err != nil {
		return nil, fmt.Errorf("failed to persist contract record: %w", err)
	}

	slog.Info("contract registered", "contract_id", id, "path", abs)
	return rec, nil
}

// writeUpload creates the upload file with O_EXCL so an existing file
// is never overwritten, retrying candidate names until creation
// succeeds: the plain name, then a timestamp suffix, then timestamp
// plus counter for uploads landing in the same second.
func (r *Registrar) writeUpload(name string, data []byte) (string, error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	ts := utcTimestamp()

	for i := 0; ; i++ {
		var candidate string
		switch {
		case i == 0:
			candidate = name
		case i == 1:
			candidate = fmt.Sprintf("%s_%s%s", base, ts, ext)
		default:
			candidate = fmt.Sprintf("%s_%s_%d%s", base, ts, i, ext)
		}

		dest := filepath.Join(r.contractsDir, candidate)
		f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to write upload: %w", err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			os.Remove(dest)
			return "", fmt.Errorf("failed to write upload: %w", err)
		}
		if err := f.Close(); err != nil {
			os.Remove(dest)
			return "", fmt.Errorf("failed to write upload: %w", err)
		}
		return dest, nil
	}
}

// freeID returns stem when no record uses it, otherwise the first
// timestamped (and, within the same second, counter-suffixed) id not
// yet in the manifest.
func (r *Registrar) freeID(stem string) string {
	if _, exists := r.store.Get(stem); !exists {
		return stem
	}
	ts := utcTimestamp()
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%s", stem, ts)
		if i > 1 {
			candidate = fmt.Sprintf("%s_%s_%d", stem, ts, i)
		}
		if _, exists := r.store.Get(candidate); !exists {
			return candidate
		}
	}
}
