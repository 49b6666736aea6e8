package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/spmgraph/pkg/manifest"
	"github.com/matzehuels/spmgraph/pkg/workspace"
)

func testProjects() []*workspace.Project {
	var out []*workspace.Project
	for _, name := range []string{"app", "net", "utils"} {
		out = append(out, &workspace.Project{Name: name, Root: "packages/" + name, Manifest: &manifest.Manifest{Name: name}})
	}
	return out
}

func press(m tea.Model, key string) tea.Model {
	var msg tea.KeyMsg
	switch key {
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, _ := m.Update(msg)
	return next
}

func TestProjectListModelSelect(t *testing.T) {
	var m tea.Model = NewProjectListModel(testProjects())
	for _, k := range []string{"down", "j", "down", "up"} {
		m = press(m, k)
	}
	m = press(m, "enter")

	got := m.(ProjectListModel)
	if got.Selected == nil || got.Selected.Name != "net" {
		t.Fatalf("Selected = %v, want net", got.Selected)
	}
}

func TestProjectListModelQuit(t *testing.T) {
	m := press(NewProjectListModel(testProjects()), "q")
	if m.(ProjectListModel).Selected != nil {
		t.Error("quit should not select")
	}
}

func TestProjectListModelScroll(t *testing.T) {
	m := NewProjectListModel(testProjects())
	m.Height = 1
	var tm tea.Model = m
	tm = press(tm, "down")
	tm = press(tm, "down")

	got := tm.(ProjectListModel)
	if got.Offset != 2 {
		t.Errorf("Offset = %d, want 2", got.Offset)
	}
	view := got.View()
	if !strings.Contains(view, "utils") || strings.Contains(view, "packages/app ") {
		t.Errorf("view should show only the last project:\n%s", view)
	}
}

func TestResolveProjectArgument(t *testing.T) {
	ws := workspace.New(t.TempDir(), workspace.Config{}, testProjects())
	p, err := resolveProject(ws, []string{"utils"})
	if err != nil {
		t.Fatal(err)
	}
	if p.Root != "packages/utils" {
		t.Errorf("Root = %q", p.Root)
	}
}
