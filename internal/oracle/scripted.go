package oracle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/floegence/operator-agent/internal/loop"
)

// Scripted replays a fixed sequence of proposals from a YAML file. It exists
// for offline replay and loop evaluation without a model endpoint; when the
// script runs out it proposes nothing, which routes the run to terminal.
type Scripted struct {
	mu    sync.Mutex
	steps []loop.Proposal
	next  int
}

type scriptFile struct {
	Steps []scriptStep `yaml:"steps"`
}

type scriptStep struct {
	Text  string       `yaml:"text"`
	Calls []scriptCall `yaml:"calls"`
}

type scriptCall struct {
	Name string         `yaml:"name"`
	Args map[string]any `yaml:"args"`
}

func LoadScript(path string) (*Scripted, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, errors.New("missing script path")
	}
	data, err := os.ReadFile(filepath.Clean(cleanPath))
	if err != nil {
		return nil, err
	}
	var file scriptFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(file.Steps) == 0 {
		return nil, errors.New("script has no steps")
	}
	steps := make([]loop.Proposal, 0, len(file.Steps))
	for i, step := range file.Steps {
		proposal := loop.Proposal{Text: strings.TrimSpace(step.Text)}
		for j, call := range step.Calls {
			name := strings.TrimSpace(call.Name)
			if name == "" {
				return nil, fmt.Errorf("steps[%d].calls[%d]: missing name", i, j)
			}
			args := call.Args
			if args == nil {
				args = map[string]any{}
			}
			proposal.Calls = append(proposal.Calls, loop.ProposedCall{
				ID:   fmt.Sprintf("scripted_%d_%d", i+1, j+1),
				Name: name,
				Args: args,
			})
		}
		steps = append(steps, proposal)
	}
	return &Scripted{steps: steps}, nil
}

// NewScripted builds a scripted oracle directly from proposals, mainly for
// tests.
func NewScripted(steps ...loop.Proposal) *Scripted {
	return &Scripted{steps: steps}
}

func (s *Scripted) Decide(_ context.Context, _ []loop.Turn) (loop.Proposal, error) {
	if s == nil {
		return loop.Proposal{}, errors.New("nil oracle")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.steps) {
		return loop.Proposal{}, nil
	}
	proposal := s.steps[s.next]
	s.next++
	return proposal, nil
}
