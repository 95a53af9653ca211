package state

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"duckdnsd/log"
)

// Record is the last known-true update state for one domain. The scheduler
// loop for that domain is the only writer.
type Record struct {
	LastIP      string     `json:"last_ip,omitempty"`
	LastUpdate  *time.Time `json:"last_update,omitempty"`
	LastAttempt time.Time  `json:"last_attempt"`
	Failures    int        `json:"failures"`
}

// Store keeps one record file per domain under dir.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed creating state dir: %w", err)
	}

	return &Store{dir: dir}, nil
}

func (s *Store) recordPath(domain string) string {
	return filepath.Join(s.dir, domain+".json")
}

// Load returns the persisted record for domain. A missing or unreadable
// file is treated as "no prior state" and yields a zero record; the daemon
// must come up either way.
func (s *Store) Load(ctx context.Context, domain string) Record {
	ctx = log.SWith(ctx, log.Stage("state:load"), log.Domain(domain))

	var rec Record
	data, err := os.ReadFile(s.recordPath(domain))
	if err != nil {
		if !os.IsNotExist(err) {
			log.S(ctx).Warnw("cannot read state file, starting fresh", zap.Error(err))
		}
		return Record{}
	}

	if err := json.Unmarshal(data, &rec); err != nil {
		log.S(ctx).Warnw("corrupt state file, starting fresh", zap.Error(err))
		return Record{}
	}

	if rec.Failures < 0 {
		rec.Failures = 0
	}

	return rec
}

func (s *Store) Save(ctx context.Context, domain string, rec Record) error {
	ctx = log.SWith(ctx, log.Stage("state:save"), log.Domain(domain))

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed encoding record: %w", err)
	}

	if err := s.writeAtomic(s.recordPath(domain), data); err != nil {
		log.S(ctx).Warnw("failed writing state file", zap.Error(err))
		return err
	}

	return nil
}

// writeAtomic writes to a temp file in the same directory, syncs, then
// renames over the target. A crash mid-write never leaves a torn file.
func (s *Store) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed creating temp file: %w", err)
	}

	name := tmp.Name()
	defer os.Remove(name)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed writing temp file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed syncing temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed closing temp file: %w", err)
	}

	if err := os.Chmod(name, 0o644); err != nil {
		return fmt.Errorf("failed setting mode: %w", err)
	}

	if err := os.Rename(name, path); err != nil {
		return fmt.Errorf("failed replacing state file: %w", err)
	}

	return nil
}
