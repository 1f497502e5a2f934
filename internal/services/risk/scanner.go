// Package risk flags contract terms that deserve a closer look.
//
// The term list is configuration data. It starts from DefaultTerms and can be
// replaced by a YAML file that is re-read whenever it changes on disk.
package risk

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// DefaultTerms is used when no terms file is configured.
var DefaultTerms = []string{"penalty", "termination", "breach", "fine"}

// termsFile is the on-disk format:
//
//	terms:
//	  - penalty
//	  - indemnify
type termsFile struct {
	Terms []string `yaml:"terms"`
}

// Scanner finds configured terms in text. It is safe for concurrent use,
// including while the term list is being reloaded.
type Scanner struct {
	mu    sync.RWMutex
	terms []string
	path  string
}

// NewScanner creates a scanner over a fixed term list.
func NewScanner(terms []string) *Scanner {
	return &Scanner{terms: normalize(terms)}
}

// LoadScanner creates a scanner from a YAML terms file. An empty path yields
// the default terms.
func LoadScanner(path string) (*Scanner, error) {
	if path == "" {
		return NewScanner(DefaultTerms), nil
	}
	terms, err := readTerms(path)
	if err != nil {
		return nil, err
	}
	s := NewScanner(terms)
	s.path = path
	return s, nil
}

// Scan returns the configured terms that occur in text, compared
// case-insensitively as substrings, in configured order.
func (s *Scanner) Scan(text string) []string {
	lower := strings.ToLower(text)

	s.mu.RLock()
	defer s.mu.RUnlock()

	found := []string{}
	for _, term := range s.terms {
		if strings.Contains(lower, strings.ToLower(term)) {
			found = append(found, term)
		}
	}
	return found
}

// Terms returns a copy of the current term list.
func (s *Scanner) Terms() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.terms...)
}

// SetTerms replaces the term list.
func (s *Scanner) SetTerms(terms []string) {
	terms = normalize(terms)
	s.mu.Lock()
	s.terms = terms
	s.mu.Unlock()
}

// Reload re-reads the terms file. A file that fails to parse leaves the
// current list untouched.
func (s *Scanner) Reload() error {
	if s.path == "" {
		return nil
	}
	terms, err := readTerms(s.path)
	if err != nil {
		return err
	}
	s.SetTerms(terms)
	return nil
}

// Watch reloads the terms file whenever it is written, created or renamed
// into place, until ctx is cancelled. The parent directory is watched so
// editors that replace the file atomically are handled too.
func (s *Scanner) Watch(ctx context.Context) error {
	if s.path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("add watch path: %w", err)
	}

	target := filepath.Clean(s.path)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				if err := s.Reload(); err != nil {
					log.Printf("⚠️  Risky terms reload failed: %v", err)
					continue
				}
				log.Printf("🔄 Risky terms reloaded (%d terms)", len(s.Terms()))

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("⚠️  Risky terms watcher error: %v", err)
			}
		}
	}()
	return nil
}

func readTerms(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read terms file: %w", err)
	}
	var f termsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse terms file: %w", err)
	}
	terms := normalize(f.Terms)
	if len(terms) == 0 {
		return nil, fmt.Errorf("terms file %s lists no terms", path)
	}
	return terms, nil
}

// normalize trims blanks and drops empty and duplicate entries, keeping order.
func normalize(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}
