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

type loansState int

const (
	loansStateBrowse loansState = iota
	loansStateIssue
)

type loansFilter int

const (
	loansFilterAll loansFilter = iota
	loansFilterOpen
	loansFilterReturned
	loansFilterOverdue
)

var loansFilterLabels = []string{"All", "Open", "Returned", "Overdue"}

type LoansModel struct {
	CommonModel
	libService *library.Service

	state  loansState
	table  table.Model
	loans  []*library.Transaction
	form   *huh.Form
	filter loansFilter

	loading bool
	err     error
	status  string

	formBookID   string
	formMemberID string
}

func NewLoansModel(libSvc *library.Service) LoansModel {
	columns := []table.Column{
		{Title: "ID", Width: 14},
		{Title: "Book", Width: 10},
		{Title: "Member", Width: 10},
		{Title: "Issued", Width: 12},
		{Title: "Returned", Width: 12},
		{Title: "Status", Width: 10},
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

	return LoansModel{
		libService: libSvc,
		table:      t,
	}
}

func (m LoansModel) Title() string { return "Circulation" }

func (m LoansModel) ShortHelp() string {
	if m.state == loansStateIssue {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | i: issue | x: return | f: filter | r: refresh"
}

func (m LoansModel) Init() tea.Cmd {
	return m.loadLoansCmd()
}

func (m LoansModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadLoansMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.loans = msg.loans
		m.err = nil
		m.refreshTable()

		return m, nil

	case loanChangedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = msg.status
		}

		m.state = loansStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadLoansCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case loansStateBrowse:
		return m.updateBrowse(msg)
	case loansStateIssue:
		return m.updateIssue(msg)
	}

	return m, nil
}

func (m LoansModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadLoansCmd()
		case "f":
			m.filter = (m.filter + 1) % loansFilter(len(loansFilterLabels))
			return m, m.loadLoansCmd()
		case "i":
			return m.enterIssueForm()
		case "x":
			idx := m.table.Cursor()
			if idx < 0 || idx >= len(m.loans) {
				return m, nil
			}

			loan := m.loans[idx]
			if !loan.Open() {
				m.status = fmt.Sprintf("Loan %s is already returned.", loan.ID)
				return m, nil
			}

			return m, m.returnCmd(loan.BookID)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m LoansModel) enterIssueForm() (tea.Model, tea.Cmd) {
	m.formBookID = ""
	m.formMemberID = ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("book_id").
				Title("Book ID").
				Placeholder("BK-1001").
				Value(&m.formBookID).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("book id cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("member_id").
				Title("Member ID").
				Placeholder("MEM-1001").
				Value(&m.formMemberID).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("member id cannot be empty")
					}
					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = loansStateIssue
	m.table.Blur()

	return m, m.form.Init()
}

func (m LoansModel) updateIssue(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = loansStateBrowse
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

	return m, m.issueCmd()
}

func (m LoansModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading loans...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	header := fmt.Sprintf("Filter: [f] %s",
		lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(loansFilterLabels[m.filter]))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == loansStateIssue && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(fmt.Sprintf("Issue Book\n\n%s", m.form.View()))

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *LoansModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.loans))
	for _, loan := range m.loans {
		rows = append(rows, table.Row{
			loan.ID,
			loan.BookID,
			loan.MemberID,
			FormatDate(loan.IssueDate),
			FormatOptionalDate(loan.ReturnDate),
			string(loan.Status),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadLoansMsg struct {
	loans []*library.Transaction
	err   error
}

func (m LoansModel) loadLoansCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		if filter == loansFilterOverdue {
			seq, err := m.libService.ListOverdue(ctx, time.Now(), 0)
			if err != nil {
				return loadLoansMsg{err: err}
			}

			var loans []*library.Transaction
			for loan := range seq {
				loans = append(loans, loan)
			}

			return loadLoansMsg{loans: loans}
		}

		listFilter := library.ListFilter{}

		switch filter {
		case loansFilterOpen:
			listFilter.Status = new(library.TransactionIssued)
		case loansFilterReturned:
			listFilter.Status = new(library.TransactionReturned)
		}

		loans, err := m.libService.ListTransactions(ctx, listFilter)

		return loadLoansMsg{loans: loans, err: err}
	}
}

type loanChangedMsg struct {
	status string
	err    error
}

func (m LoansModel) issueCmd() tea.Cmd {
	bookID := strings.TrimSpace(m.formBookID)
	memberID := strings.TrimSpace(m.formMemberID)

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		loan, err := m.libService.IssueBook(ctx, bookID, memberID, time.Now())
		if err != nil {
			return loanChangedMsg{err: err}
		}

		return loanChangedMsg{status: fmt.Sprintf("Issued %s to %s (%s).", bookID, memberID, loan.ID)}
	}
}

func (m LoansModel) returnCmd(bookID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		if _, err := m.libService.ReturnBook(ctx, bookID, time.Now()); err != nil {
			return loanChangedMsg{err: err}
		}

		return loanChangedMsg{status: fmt.Sprintf("Returned %s.", bookID)}
	}
}
