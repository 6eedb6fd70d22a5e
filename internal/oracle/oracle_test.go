package oracle

import (
	"testing"

	"github.com/floegence/operator-agent/internal/tools"
)

func TestBuildToolSurfaces(t *testing.T) {
	t.Parallel()

	registry := tools.NewRegistry()
	surfaces := buildToolSurfaces(registry)
	if len(surfaces) != registry.Len() {
		t.Fatalf("expected %d surfaces, got %d", registry.Len(), len(surfaces))
	}

	byName := map[string]toolSurface{}
	for _, s := range surfaces {
		if s.Name == "" || s.Description == "" {
			t.Fatalf("incomplete surface: %+v", s)
		}
		if s.Properties == nil {
			t.Fatalf("surface %s missing properties", s.Name)
		}
		byName[s.Name] = s
	}

	readFile, ok := byName["read_file"]
	if !ok {
		t.Fatalf("read_file surface missing")
	}
	if len(readFile.Required) != 1 || readFile.Required[0] != "path" {
		t.Fatalf("unexpected required fields: %v", readFile.Required)
	}

	computer, ok := byName["computer"]
	if !ok {
		t.Fatalf("computer surface missing")
	}
	if len(computer.Required) != 1 || computer.Required[0] != "action" {
		t.Fatalf("unexpected computer required fields: %v", computer.Required)
	}

	if got := buildToolSurfaces(nil); got != nil {
		t.Fatalf("nil registry should yield nil surfaces")
	}
}
