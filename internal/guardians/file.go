package guardians

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/atelier-labs/atelier-go/internal/domain"
)

type rosterFile struct {
	Guardians []guardianEntry `yaml:"guardians"`
}

type guardianEntry struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Gate     string   `yaml:"gate"`
	Element  string   `yaml:"element"`
	Keywords []string `yaml:"keywords"`
}

// Load parses a YAML roster and merges it over the builtin roster; file
// entries override builtin guardians with the same id.
func Load(r io.Reader) (Roster, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}

	var file rosterFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}

	roster := Builtin()
	for i, entry := range file.Guardians {
		guardian := domain.Guardian{
			ID:       strings.ToLower(strings.TrimSpace(entry.ID)),
			Name:     strings.TrimSpace(entry.Name),
			Gate:     strings.TrimSpace(entry.Gate),
			Element:  domain.Element(strings.ToLower(strings.TrimSpace(entry.Element))),
			Keywords: trimNonEmpty(entry.Keywords),
		}
		if err := guardian.Validate(); err != nil {
			return nil, fmt.Errorf("roster guardian[%d]: %w", i, err)
		}
		roster[guardian.ID] = guardian
	}
	return roster, nil
}

// LoadFile loads a roster file from disk. An empty path returns the builtin
// roster unchanged.
func LoadFile(path string) (Roster, error) {
	if strings.TrimSpace(path) == "" {
		return Builtin(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func trimNonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, item := range in {
		v := strings.TrimSpace(item)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
