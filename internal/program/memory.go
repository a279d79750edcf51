package program

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var builtinCatalog []byte

// Entry is a catalog record together with its identifiers, as stored on disk.
type Entry struct {
	Goal   string `yaml:"goal"`
	Level  string `yaml:"level"`
	Record `yaml:",inline"`
}

type catalogFile struct {
	Programs []Entry `yaml:"programs"`
}

// MemoryCatalog is a read-only in-memory Catalog.
type MemoryCatalog struct {
	records map[Key]Record
}

// NewMemoryCatalog builds a catalog from already decoded entries.
func NewMemoryCatalog(entries []Entry) (*MemoryCatalog, error) {
	records := make(map[Key]Record, len(entries))
	for i, e := range entries {
		key, err := e.Key()
		if err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i, err)
		}
		if _, dup := records[key]; dup {
			return nil, fmt.Errorf("catalog entry %d: duplicate %s", i, key)
		}
		records[key] = e.Record
	}
	return &MemoryCatalog{records: records}, nil
}

// Builtin returns the catalog compiled into the binary.
func Builtin() (*MemoryCatalog, error) {
	entries, err := ParseEntries(builtinCatalog)
	if err != nil {
		return nil, err
	}
	return NewMemoryCatalog(entries)
}

// LoadFile reads a YAML catalog file. An empty path yields the builtin catalog.
func LoadFile(path string) (*MemoryCatalog, error) {
	if path == "" {
		return Builtin()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	entries, err := ParseEntries(data)
	if err != nil {
		return nil, err
	}
	return NewMemoryCatalog(entries)
}

// ParseEntries decodes the YAML catalog document.
func ParseEntries(data []byte) ([]Entry, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}
	return f.Programs, nil
}

// Key resolves the entry identifiers.
func (e Entry) Key() (Key, error) {
	g, ok := GoalFromID(e.Goal)
	if !ok {
		return Key{}, fmt.Errorf("unknown goal %q", e.Goal)
	}
	l, ok := LevelFromID(e.Level)
	if !ok {
		return Key{}, fmt.Errorf("unknown level %q", e.Level)
	}
	return Key{Goal: g, Level: l}, nil
}

// Lookup implements Catalog.
func (c *MemoryCatalog) Lookup(_ context.Context, goal Goal, level Level) (Record, error) {
	key := Key{Goal: goal, Level: level}
	rec, ok := c.records[key]
	if !ok {
		return Record{}, &NotFoundError{Key: key}
	}
	return rec, nil
}

// Entries returns the catalog content in goal/level display order.
func (c *MemoryCatalog) Entries() []Entry {
	out := make([]Entry, 0, len(c.records))
	for _, g := range Goals() {
		for _, l := range Levels() {
			if rec, ok := c.records[Key{Goal: g, Level: l}]; ok {
				out = append(out, Entry{Goal: g.ID(), Level: l.ID(), Record: rec})
			}
		}
	}
	return out
}

// Len reports the number of records.
func (c *MemoryCatalog) Len() int { return len(c.records) }
