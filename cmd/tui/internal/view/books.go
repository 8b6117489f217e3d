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

type booksState int

const (
	booksStateBrowse booksState = iota
	booksStateForm
)

type BooksModel struct {
	CommonModel
	libService *library.Service

	state booksState
	table table.Model
	books []*library.Book
	form  *huh.Form

	editing bool
	loading bool
	err     error
	status  string

	// Form bindings
	formID     string
	formTitle  string
	formAuthor string
	formISBN   string
}

func NewBooksModel(libSvc *library.Service) BooksModel {
	columns := []table.Column{
		{Title: "ID", Width: 10},
		{Title: "Title", Width: 36},
		{Title: "Author", Width: 24},
		{Title: "ISBN", Width: 16},
		{Title: "Status", Width: 10},
		{Title: "Added", Width: 12},
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

	return BooksModel{
		libService: libSvc,
		table:      t,
	}
}

func (m BooksModel) Title() string { return "Books" }

func (m BooksModel) ShortHelp() string {
	if m.state == booksStateForm {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | a: add | e: edit | d: delete | r: refresh"
}

func (m BooksModel) Init() tea.Cmd {
	return m.loadBooksCmd()
}

func (m BooksModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadBooksMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.books = msg.books
		m.err = nil
		m.refreshTable()

		return m, nil

	case bookSavedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = "Saved."
		}

		m.state = booksStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadBooksCmd()

	case bookDeletedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("Deleted %s.", msg.id)
		}

		return m, m.loadBooksCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case booksStateBrowse:
		return m.updateBrowse(msg)
	case booksStateForm:
		return m.updateForm(msg)
	}

	return m, nil
}

func (m BooksModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadBooksCmd()
		case "a":
			return m.enterForm(nil)
		case "e":
			idx := m.table.Cursor()
			if idx < 0 || idx >= len(m.books) {
				return m, nil
			}

			return m.enterForm(m.books[idx])
		case "d":
			idx := m.table.Cursor()
			if idx < 0 || idx >= len(m.books) {
				return m, nil
			}

			return m, m.deleteCmd(m.books[idx].ID)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m BooksModel) enterForm(b *library.Book) (tea.Model, tea.Cmd) {
	m.editing = b != nil
	m.formID = ""
	m.formTitle = ""
	m.formAuthor = ""
	m.formISBN = ""

	if b != nil {
		m.formID = b.ID
		m.formTitle = b.Title
		m.formAuthor = b.Author
		m.formISBN = b.ISBN
	}

	idInput := huh.NewInput().
		Key("id").
		Title("ID").
		Placeholder("BK-1001").
		Value(&m.formID).
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("id cannot be empty")
			}
			return nil
		})

	m.form = huh.NewForm(
		huh.NewGroup(
			idInput,

			huh.NewInput().
				Key("title").
				Title("Title").
				Value(&m.formTitle).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("title cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("author").
				Title("Author").
				Value(&m.formAuthor).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("author cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("isbn").
				Title("ISBN").
				Placeholder("optional").
				Value(&m.formISBN),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = booksStateForm
	m.table.Blur()

	return m, m.form.Init()
}

func (m BooksModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = booksStateBrowse
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

func (m BooksModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading books...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := tableView

	if m.state == booksStateForm && m.form != nil {
		heading := "Add Book"
		if m.editing {
			heading = "Edit Book"
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

func (m *BooksModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.books))
	for _, b := range m.books {
		rows = append(rows, table.Row{
			b.ID,
			b.Title,
			b.Author,
			b.ISBN,
			string(b.Status),
			FormatDate(b.AddedDate),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadBooksMsg struct {
	books []*library.Book
	err   error
}

func (m BooksModel) loadBooksCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		books, err := m.libService.ListBooks(ctx)

		return loadBooksMsg{books: books, err: err}
	}
}

type bookSavedMsg struct {
	err error
}

func (m BooksModel) saveCmd() tea.Cmd {
	book := &library.Book{
		ID:        strings.TrimSpace(m.formID),
		Title:     strings.TrimSpace(m.formTitle),
		Author:    strings.TrimSpace(m.formAuthor),
		ISBN:      strings.TrimSpace(m.formISBN),
		AddedDate: time.Now(),
	}

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		return bookSavedMsg{err: m.libService.UpsertBook(ctx, book)}
	}
}

type bookDeletedMsg struct {
	id  string
	err error
}

func (m BooksModel) deleteCmd(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		return bookDeletedMsg{id: id, err: m.libService.DeleteBook(ctx, id)}
	}
}
