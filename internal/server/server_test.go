package server

import (
	"errors"
	"strings"
	"testing"

	"github.com/HendryAvila/storybook/internal/projects"
	"github.com/HendryAvila/storybook/internal/tools"
	"github.com/rs/zerolog"
)

func TestNew_RequiresStore(t *testing.T) {
	if _, err := New(Config{Logger: zerolog.Nop()}); err == nil {
		t.Fatal("expected error without a store")
	}
}

func TestNew_UnknownProject(t *testing.T) {
	store, err := projects.NewFileStore(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	_, err = New(Config{Store: store, ProjectID: "missing", Logger: zerolog.Nop()})
	if !errors.Is(err, projects.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNew_BindsByPrefix(t *testing.T) {
	store, err := projects.NewFileStore(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	p, err := store.Create("Novel", nil)
	if err != nil {
		t.Fatal(err)
	}

	s, err := New(Config{Store: store, ProjectID: p.ShortID(), Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s == nil {
		t.Fatal("expected a server")
	}
}

func TestNew_Unbound(t *testing.T) {
	store, err := projects.NewFileStore(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := New(Config{Store: store, Logger: zerolog.Nop()}); err != nil {
		t.Fatalf("New: %v", err)
	}
}

func TestInstructions_NameEveryTool(t *testing.T) {
	text := serverInstructions()
	for _, name := range tools.Names {
		if !strings.Contains(text, name) {
			t.Errorf("instructions do not mention %s", name)
		}
	}
}
