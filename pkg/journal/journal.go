// Package journal keeps a local record of swap-and-pay attempts. Its main
// job is reconciliation: an attempt that timed out waiting for confirmation
// or whose ledger registration failed may have moved funds, and the journal
// is where an operator finds those cases.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

const DefaultFileName = ".levsek-swap-attempts.json"

// Attempt is one recorded swap-and-pay attempt. Credentials are never part
// of an attempt record.
type Attempt struct {
	ID           string    `json:"id"`
	DebtID       string    `json:"debt_id"`
	TokenIn      string    `json:"token_in"`
	TargetAmount string    `json:"target_amount"`
	State        string    `json:"state"`
	TxHash       string    `json:"tx_hash,omitempty"`
	AmountIn     string    `json:"amount_in,omitempty"`
	AmountOut    string    `json:"amount_out,omitempty"`
	SettlementID string    `json:"settlement_id,omitempty"`
	Ambiguous    bool      `json:"ambiguous,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Journal persists attempts to a JSON file.
type Journal struct {
	filePath string
	mu       sync.Mutex
	attempts map[string]*Attempt
}

type journalFile struct {
	Attempts map[string]*Attempt `json:"attempts"`
}

// New opens the journal at filePath, defaulting to the home directory.
func New(filePath string) (*Journal, error) {
	if filePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		filePath = filepath.Join(home, DefaultFileName)
	}

	j := &Journal{
		filePath: filePath,
		attempts: make(map[string]*Attempt),
	}

	if err := j.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load journal: %w", err)
		}
	}

	return j, nil
}

func (j *Journal) load() error {
	data, err := os.ReadFile(j.filePath)
	if err != nil {
		return err
	}

	var f journalFile
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to unmarshal journal: %w", err)
	}

	j.attempts = f.Attempts
	if j.attempts == nil {
		j.attempts = make(map[string]*Attempt)
	}

	return nil
}

func (j *Journal) save() error {
	data, err := json.MarshalIndent(journalFile{Attempts: j.attempts}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal journal: %w", err)
	}

	dir := filepath.Dir(j.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Temp file then rename for atomic write.
	tempFile := j.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write journal: %w", err)
	}
	if err := os.Rename(tempFile, j.filePath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// Record stores a new attempt.
func (j *Journal) Record(a Attempt) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if a.ID == "" {
		return fmt.Errorf("attempt ID is required")
	}
	if _, exists := j.attempts[a.ID]; exists {
		return fmt.Errorf("attempt '%s' already recorded", a.ID)
	}

	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	j.attempts[a.ID] = &a

	return j.save()
}

// Update applies fn to an existing attempt and persists it.
func (j *Journal) Update(id string, fn func(*Attempt)) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	a, exists := j.attempts[id]
	if !exists {
		return fmt.Errorf("attempt '%s' not found", id)
	}

	fn(a)
	a.UpdatedAt = time.Now().UTC()

	return j.save()
}

// List returns all attempts, newest first.
func (j *Journal) List() []Attempt {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]Attempt, 0, len(j.attempts))
	for _, a := range j.attempts {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, k int) bool {
		return out[i].CreatedAt.After(out[k].CreatedAt)
	})

	return out
}

// ListAmbiguous returns attempts whose outcome needs manual reconciliation.
func (j *Journal) ListAmbiguous() []Attempt {
	all := j.List()
	out := make([]Attempt, 0)
	for _, a := range all {
		if a.Ambiguous {
			out = append(out, a)
		}
	}
	return out
}

// FilePath returns the journal file location.
func (j *Journal) FilePath() string {
	return j.filePath
}
