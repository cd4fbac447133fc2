// Package replay drives recorded or synthetic matches through the momentum
// engine, either in-process or against a running server.
package replay

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/okian/momentum/internal/domain/momentum"
)

// Script is a recorded match: its kickoff configuration and its events in
// the order they happened.
type Script struct {
	MatchID string              `yaml:"match_id" json:"match_id"`
	Config  momentum.InitConfig `yaml:"config" json:"config"`
	Events  []ScriptEvent       `yaml:"events" json:"events"`
}

// ScriptEvent is one line of a script.
type ScriptEvent struct {
	ID     string `yaml:"id" json:"id"`
	Type   string `yaml:"type" json:"type"`
	Side   string `yaml:"side" json:"side"`
	Minute int    `yaml:"minute" json:"minute"`
}

// ParseScript decodes a YAML script. Config fields that are omitted keep
// their defaults. Event ids default to their 1-based position.
func ParseScript(data []byte) (*Script, error) {
	s := &Script{Config: momentum.DefaultInitConfig()}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScript, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	for i := range s.Events {
		if s.Events[i].ID == "" {
			s.Events[i].ID = fmt.Sprintf("%d", i+1)
		}
	}
	return s, nil
}

// LoadScript reads and parses the script at path.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadScript, path, err)
	}
	return ParseScript(data)
}

// Validate checks the config and every event before anything is replayed.
func (s *Script) Validate() error {
	if err := s.Config.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidScript, err)
	}
	for i, e := range s.Events {
		if _, err := momentum.NewEvent(e.Type, e.Side, e.Minute); err != nil {
			return fmt.Errorf("%w: event %d: %w", ErrInvalidScript, i+1, err)
		}
	}
	return nil
}

// WriteScript renders s as YAML that ParseScript reads back.
func WriteScript(w io.Writer, s *Script) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode script: %w", err)
	}
	return enc.Close()
}
