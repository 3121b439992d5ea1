// Package versions tracks semantic versions per budget sheet across
// processing runs, persisted as a JSON file next to the audit output.
package versions

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Entry is the tracked state for one file-sheet pair.
type Entry struct {
	Major         int       `json:"major"`
	Minor         int       `json:"minor"`
	Patch         int       `json:"patch"`
	FirstSeen     time.Time `json:"first_seen"`
	LastUpdated   time.Time `json:"last_updated"`
	LastDataHash  string    `json:"last_data_hash"`
	SpreadsheetID string    `json:"spreadsheet_id"`
	SheetGID      string    `json:"sheet_gid"`
}

// Version is the outcome of one Resolve call.
type Version struct {
	Major    int
	Minor    int
	Patch    int
	Key      string
	UploadID string
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Store assigns versions: a new sheet starts a new major line, changed
// content bumps the minor, and an unchanged re-run bumps the patch.
type Store struct {
	path string

	mu      sync.Mutex
	entries map[string]*Entry
	loaded  bool
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Hash fingerprints extracted budget content for change detection.
func Hash(data any) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to hash budget data: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// Resolve advances the version for the given file and sheet and persists
// the updated tracking state before returning.
func (s *Store) Resolve(fileName, sheetName, spreadsheetID, sheetGID, dataHash string, now time.Time) (Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return Version{}, err
	}

	cleanFile := cleanName(fileName)
	cleanSheet := cleanName(sheetName)
	key := cleanFile + "-" + cleanSheet

	entry, ok := s.entries[key]
	switch {
	case !ok:
		entry = &Entry{
			Major:     s.majorForFileLocked(cleanFile) + 1,
			Minor:     0,
			Patch:     1,
			FirstSeen: now,
		}
		s.entries[key] = entry
	case entry.LastDataHash == dataHash:
		entry.Patch++
	default:
		entry.Minor++
		entry.Patch = 1
	}
	entry.LastUpdated = now
	entry.LastDataHash = dataHash
	entry.SpreadsheetID = spreadsheetID
	entry.SheetGID = sheetGID

	if err := s.saveLocked(); err != nil {
		return Version{}, err
	}

	v := Version{Major: entry.Major, Minor: entry.Minor, Patch: entry.Patch, Key: key}
	v.UploadID = fmt.Sprintf("%s-%s_%s", key, now.Format("01-02-06"), v.String())
	return v, nil
}

// Entries returns a snapshot of all tracked sheets, keyed by file-sheet
// pair. The scheduler uses this to re-sync known budgets.
func (s *Store) Entries() (map[string]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return nil, err
	}
	out := make(map[string]Entry, len(s.entries))
	for k, e := range s.entries {
		out[k] = *e
	}
	return out, nil
}

// majorForFileLocked counts how many sheets of this file already have a
// version line.
func (s *Store) majorForFileLocked(cleanFile string) int {
	n := 0
	for key := range s.entries {
		if strings.HasPrefix(key, cleanFile+"-") {
			n++
		}
	}
	return n
}

func (s *Store) loadLocked() error {
	if s.loaded {
		return nil
	}
	s.entries = make(map[string]*Entry)
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read version tracking file: %w", err)
	}
	if err := json.Unmarshal(raw, &s.entries); err != nil {
		return fmt.Errorf("failed to parse version tracking file: %w", err)
	}
	s.loaded = true
	return nil
}

// saveLocked writes through a temp file and rename so a crashed run never
// truncates the tracking history.
func (s *Store) saveLocked() error {
	raw, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode version tracking file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create tracking dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write version tracking file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace version tracking file: %w", err)
	}
	return nil
}

// cleanName reduces a display name to its word characters joined with
// underscores, so keys survive punctuation edits in file names.
func cleanName(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return ' '
		}
	}, name)
	return strings.Join(strings.Fields(mapped), "_")
}
