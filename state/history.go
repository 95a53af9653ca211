package state

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"duckdnsd/common"
)

// maxHistoryEntries bounds the attempt log per domain.
const maxHistoryEntries = 1000

type HistoryEntry struct {
	Time    time.Time      `json:"time"`
	Outcome common.Outcome `json:"outcome"`
	IP      string         `json:"ip,omitempty"`
	Message string         `json:"message,omitempty"`
}

func (s *Store) historyPath(domain string) string {
	return filepath.Join(s.dir, domain+".history.json")
}

// AppendHistory records one attempt. History is best effort; callers log
// failures and move on.
func (s *Store) AppendHistory(domain string, entry HistoryEntry) error {
	var entries []HistoryEntry

	data, err := os.ReadFile(s.historyPath(domain))
	if err == nil {
		// A corrupt history file is discarded, not fatal.
		_ = json.Unmarshal(data, &entries)
	}

	entries = append(entries, entry)
	if len(entries) > maxHistoryEntries {
		entries = entries[len(entries)-maxHistoryEntries:]
	}

	out, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed encoding history: %w", err)
	}

	return s.writeAtomic(s.historyPath(domain), out)
}

// History returns the recorded attempts for domain, oldest first.
func (s *Store) History(domain string) []HistoryEntry {
	var entries []HistoryEntry

	data, err := os.ReadFile(s.historyPath(domain))
	if err != nil {
		return nil
	}

	if err := json.Unmarshal(data, &entries); err != nil {
		return nil
	}

	return entries
}
