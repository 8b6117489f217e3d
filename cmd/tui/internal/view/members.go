package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"libris/internal/library"
)

type membersState int

const (
	membersStateBrowse membersState = iota
	membersStateForm
)

type MembersModel struct {
	CommonModel
	libService *library.Service

	state   membersState
	table   table.Model
	members []*library.Member
	form    *huh.Form

	editing bool
	loading bool
	err     error
	status  string

	formID    string
	formName  string
	formEmail string
	formPhone string
}

func NewMembersModel(libSvc *library.Service) MembersModel {
	columns := []table.Column{
		{Title: "ID", Width: 10},
		{Title: "Name", Width: 28},
		{Title: "Email", Width: 28},
		{Title: "Phone", Width: 14},
		{Title: "Joined", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return MembersModel{
		libService: libSvc,
		table:      t,
	}
}

func (m MembersModel) Title() string { return "Members" }

func (m MembersModel) ShortHelp() string {
	if m.state == membersStateForm {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | a: add | e: edit | d: delete | r: refresh"
}

func (m MembersModel) Init() tea.Cmd {
	return m.loadMembersCmd()
}

func (m MembersModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadMembersMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.members = msg.members
		m.err = nil
		m.refreshTable()

		return m, nil

	case memberSavedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = "Saved."
		}

		m.state = membersStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadMembersCmd()

	case memberDeletedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("Deleted %s.", msg.id)
		}

		return m, m.loadMembersCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case membersStateBrowse:
		return m.updateBrowse(msg)
	case membersStateForm:
		return m.updateForm(msg)
	}

	return m, nil
}

func (m MembersModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadMembersCmd()
		case "a":
			return m.enterForm(nil)
		case "e":
			idx := m.table.Cursor()
			if idx < 0 || idx >= len(m.members) {
				return m, nil
			}

			return m.enterForm(m.members[idx])
		case "d":
			idx := m.table.Cursor()
			if idx < 0 || idx >= len(m.members) {
				return m, nil
			}

			return m, m.deleteCmd(m.members[idx].ID)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m MembersModel) enterForm(member *library.Member) (tea.Model, tea.Cmd) {
	m.editing = member != nil
	m.formID = ""
	m.formName = ""
	m.formEmail = ""
	m.formPhone = ""

	if member != nil {
		m.formID = member.ID
		m.formName = member.Name
		m.formEmail = member.Email
		m.formPhone = member.Phone
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("id").
				Title("ID").
				Placeholder("MEM-1001").
				Value(&m.formID).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("id cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("name").
				Title("Name").
				Value(&m.formName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("email").
				Title("Email").
				Placeholder("optional").
				Value(&m.formEmail),

			huh.NewInput().
				Key("phone").
				Title("Phone").
				Placeholder("optional").
				Value(&m.formPhone),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = membersStateForm
	m.table.Blur()

	return m, m.form.Init()
}

func (m MembersModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = membersStateBrowse
			m.form = nil
			m.table.Focus()

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCmd()
}

func (m MembersModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading members...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := tableView

	if m.state == membersStateForm && m.form != nil {
		heading := "Add Member"
		if m.editing {
			heading = "Edit Member"
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(fmt.Sprintf("%s\n\n%s", heading, m.form.View()))

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *MembersModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.members))
	for _, member := range m.members {
		rows = append(rows, table.Row{
			member.ID,
			member.Name,
			member.Email,
			member.Phone,
			FormatDate(member.JoinDate),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadMembersMsg struct {
	members []*library.Member
	err     error
}

func (m MembersModel) loadMembersCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		members, err := m.libService.ListMembers(ctx)

		return loadMembersMsg{members: members, err: err}
	}
}

type memberSavedMsg struct {
	err error
}

func (m MembersModel) saveCmd() tea.Cmd {
	member := &library.Member{
		ID:       strings.TrimSpace(m.formID),
		Name:     strings.TrimSpace(m.formName),
		Email:    strings.TrimSpace(m.formEmail),
		Phone:    strings.TrimSpace(m.formPhone),
		JoinDate: time.Now(),
	}

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		return memberSavedMsg{err: m.libService.UpsertMember(ctx, member)}
	}
}

type memberDeletedMsg struct {
	id  string
	err error
}

func (m MembersModel) deleteCmd(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		return memberDeletedMsg{id: id, err: m.libService.DeleteMember(ctx, id)}
	}
}
