package cli

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/matzehuels/spmgraph/pkg/errors"
	"github.com/matzehuels/spmgraph/pkg/project"
	"github.com/matzehuels/spmgraph/pkg/workspace"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ProjectListModel - Interactive project selection
// =============================================================================

// ProjectListModel is the bubbletea model for interactive project selection.
type ProjectListModel struct {
	Projects []*workspace.Project
	Cursor   int
	Selected *workspace.Project
	Height   int
	Offset   int
}

// NewProjectListModel creates a new project list model.
func NewProjectListModel(projects []*workspace.Project) ProjectListModel {
	return ProjectListModel{Projects: projects, Height: 15}
}

func (m ProjectListModel) Init() tea.Cmd {
	return nil
}

func (m ProjectListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Projects)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Projects) > 0 {
				m.Selected = m.Projects[m.Cursor]
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m ProjectListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Project"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Projects))
	for i := m.Offset; i < end; i++ {
		p := m.Projects[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%s%-24s %s", cursor, p.Name, listDimStyle.Render(p.Root+"  "+project.Kind(p.Manifest)))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Projects))))
	return b.String()
}

// interactive reports whether a picker can be shown.
func interactive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

// resolveProject looks up the project named by args[0], or asks the user to
// pick one when no argument was given and the session is interactive.
func resolveProject(ws *workspace.Workspace, args []string) (*workspace.Project, error) {
	if len(args) > 0 {
		return ws.Lookup(args[0])
	}
	if len(ws.Projects) == 0 {
		return nil, errors.New(errors.ErrCodeProjectNotFound, "no projects in workspace %s", ws.Root)
	}
	if !interactive() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "project argument required")
	}

	final, err := tea.NewProgram(NewProjectListModel(ws.Projects)).Run()
	if err != nil {
		return nil, err
	}
	fm, ok := final.(ProjectListModel)
	if !ok || fm.Selected == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no project selected")
	}
	return fm.Selected, nil
}
