package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// ResponseCatalog holds the canned response texts the bot can reply with,
// keyed by intent, plus time-of-day greetings and fallbacks. It is loaded
// from a YAML file so support staff can edit responses without a deploy.
type ResponseCatalog struct {
	Greetings struct {
		Morning   []string `yaml:"morning"`
		Afternoon []string `yaml:"afternoon"`
		Evening   []string `yaml:"evening"`
	} `yaml:"greetings"`
	Intents   map[string][]string `yaml:"intents"`
	Fallbacks []string            `yaml:"fallbacks"`
}

// DefaultCatalog returns the built-in catalog used when no file is
// configured or the file fails to load.
func DefaultCatalog() *ResponseCatalog {
	c := &ResponseCatalog{
		Intents: map[string][]string{
			IntentOrderStatus: {
				"I can help with that. Could you share your order number so I can look it up?",
			},
			IntentBilling: {
				"Happy to help with billing. Could you tell me which charge or invoice this is about?",
			},
			IntentTechnicalIssue: {
				"Sorry you're running into trouble. Could you describe what happens when the problem occurs?",
			},
			IntentHumanHandoff: {
				"I'll connect you with a member of our support team. They'll pick up this conversation shortly.",
			},
			IntentThanks: {
				"You're welcome! Is there anything else I can help with?",
			},
			IntentFarewell: {
				"Thanks for chatting with us. Have a great day!",
			},
		},
		Fallbacks: []string{
			"I'm not sure I understood that. Could you rephrase, or ask about orders, billing, or technical issues?",
			"Sorry, I didn't quite get that. I can help with orders, billing, and technical problems.",
		},
	}
	c.Greetings.Morning = []string{"Good morning! How can I help you today?"}
	c.Greetings.Afternoon = []string{"Good afternoon! How can I help you today?"}
	c.Greetings.Evening = []string{"Good evening! How can I help you today?"}
	return c
}

// LoadCatalog reads a catalog from a YAML file.
func LoadCatalog(path string) (*ResponseCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read response catalog: %w", err)
	}

	var catalog ResponseCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse response catalog: %w", err)
	}
	if len(catalog.Fallbacks) == 0 {
		return nil, fmt.Errorf("response catalog %s has no fallbacks", path)
	}
	return &catalog, nil
}

// Responder picks greeting and canned responses from the active catalog.
// Reloads swap the whole catalog atomically under the lock, so a reply is
// always drawn from one consistent version.
type Responder struct {
	mu      sync.RWMutex
	catalog *ResponseCatalog
	path    string
}

// NewResponder creates a responder. If path is non-empty the catalog is
// loaded from it, falling back to the built-in catalog on error.
func NewResponder(path string) *Responder {
	r := &Responder{
		catalog: DefaultCatalog(),
		path:    path,
	}
	if path != "" {
		if err := r.Reload(); err != nil {
			slog.Warn("using built-in response catalog", "path", path, "error", err)
		}
	}
	return r
}

// Reload re-reads the catalog file and swaps it in.
func (r *Responder) Reload() error {
	if r.path == "" {
		return nil
	}
	catalog, err := LoadCatalog(r.path)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.catalog = catalog
	r.mu.Unlock()

	slog.Info("response catalog reloaded", "path", r.path)
	return nil
}

// Greeting returns a time-of-day appropriate greeting.
func (r *Responder) Greeting(now time.Time) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var pool []string
	switch hour := now.Hour(); {
	case hour < 12:
		pool = r.catalog.Greetings.Morning
	case hour < 18:
		pool = r.catalog.Greetings.Afternoon
	default:
		pool = r.catalog.Greetings.Evening
	}
	if len(pool) == 0 {
		pool = r.catalog.Fallbacks
	}
	return r.pick(pool)
}

// ResponseFor returns a canned response for an intent, or a fallback when
// the intent has no entry.
func (r *Responder) ResponseFor(intent string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if pool, ok := r.catalog.Intents[intent]; ok && len(pool) > 0 {
		return r.pick(pool)
	}
	return r.pick(r.catalog.Fallbacks)
}

// pick draws a random entry; the top-level rand functions are safe for
// concurrent use under the catalog read lock.
func (r *Responder) pick(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[rand.Intn(len(pool))]
}

// Watch reloads the catalog whenever its file changes, until ctx is done.
// Editors typically write via rename, so the watch is on the directory.
func (r *Responder) Watch(ctx context.Context) error {
	if r.path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create catalog watcher: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	go func() {
		defer watcher.Close()
		target := filepath.Clean(r.path)

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
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if err := r.Reload(); err != nil {
					slog.Error("catalog reload failed", "path", r.path, "error", err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Error("catalog watcher error", "error", err)
			}
		}
	}()

	return nil
}
