// internal/events/catalog.go
//
// Historical event catalog for the game.
//
// Responsibilities:
//   - Load the fallback event catalog from a configured JSON file or fall
//     back to the embedded default set.
//   - Normalize and validate entries (id, title, parseable date, difficulty).
//   - Supply lookup helpers used by the daily resolver.
//
// Initialization behavior (Init):
//   1. If a path is given, load the catalog from that file.
//   2. Otherwise use the embedded catalog.json defaults.
//
// Constraints:
//   • Dates are YYYY-MM-DD strings and must parse.
//   • Difficulty must be one of easy/medium/hard.
//   • Initialization is run once (sync.Once).

package events

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/cronoindovina/go-server/internal/datekey"
)

// Difficulty tiers an event to the guessing audience.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Event is one historical event as issued for a day. Immutable once issued;
// the engine only reads it.
type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Date        time.Time  `json:"-"`
	Category    string     `json:"category"`
	Difficulty  Difficulty `json:"difficulty"`
}

// Parts decomposes the event's calendar date for grading (month 1-12).
func (e Event) Parts() datekey.Parts { return datekey.PartsOf(e.Date) }

// DateKey returns the event's historical date as YYYY-MM-DD.
func (e Event) DateKey() string { return datekey.Key(e.Date) }

//go:embed catalog.json
var embeddedCatalog []byte

var (
	initOnce sync.Once
	catalog  []Event
	initErr  error
)

// Init loads the catalog once. An empty path selects the embedded defaults.
func Init(path string) error {
	initOnce.Do(func() {
		raw := embeddedCatalog
		if path != "" {
			b, err := os.ReadFile(path)
			if err != nil {
				initErr = fmt.Errorf("read catalog %s: %w", path, err)
				return
			}
			raw = b
		}
		catalog, initErr = parseCatalog(raw)
	})
	return initErr
}

// Catalog returns the loaded fallback events.
func Catalog() []Event { return catalog }

// catalogEntry is the JSON wire form; dates travel as YYYY-MM-DD strings.
type catalogEntry struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Category    string `json:"category"`
	Difficulty  string `json:"difficulty"`
}

func parseCatalog(raw []byte) ([]Event, error) {
	var entries []catalogEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(entries) == 0 {
		return nil, errors.New("catalog is empty")
	}
	out := make([]Event, 0, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(e.ID) == "" || strings.TrimSpace(e.Title) == "" {
			return nil, fmt.Errorf("catalog entry missing id or title: %+v", e)
		}
		d, err := datekey.Parse(e.Date)
		if err != nil {
			return nil, fmt.Errorf("catalog entry %s: bad date %q: %w", e.ID, e.Date, err)
		}
		diff := Difficulty(e.Difficulty)
		switch diff {
		case DifficultyEasy, DifficultyMedium, DifficultyHard:
		default:
			return nil, fmt.Errorf("catalog entry %s: bad difficulty %q", e.ID, e.Difficulty)
		}
		out = append(out, Event{
			ID:          e.ID,
			Title:       e.Title,
			Description: e.Description,
			Date:        d,
			Category:    e.Category,
			Difficulty:  diff,
		})
	}
	return out, nil
}
