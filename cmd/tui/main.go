package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"libris/cmd/tui/internal/view"
	"libris/internal/config"
	"libris/internal/database"
	"libris/internal/importer"
	"libris/internal/library"
	libraryStore "libris/internal/library/store"
)

type model struct {
	libService    *library.Service
	importService *importer.Service

	currentView View

	booksView   view.BooksModel
	membersView view.MembersModel
	loansView   view.LoansModel
	importView  view.ImportModel
}

type View int

const (
	ViewMenu    View = 0
	ViewBooks   View = 1
	ViewMembers View = 2
	ViewLoans   View = 3
	ViewImport  View = 4
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.DB.Path)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	libSvc := library.NewService(libraryStore.New(db))
	impSvc := importer.NewService()

	return model{
		libService:    libSvc,
		importService: impSvc,
		currentView:   ViewMenu,
		booksView:     view.NewBooksModel(libSvc),
		membersView:   view.NewMembersModel(libSvc),
		loansView:     view.NewLoansModel(libSvc),
		importView:    view.NewImportModel(libSvc, impSvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewBooks
				m.booksView = view.NewBooksModel(m.libService)

				return m, m.booksView.Init()
			case "2":
				m.currentView = ViewMembers
				m.membersView = view.NewMembersModel(m.libService)

				return m, m.membersView.Init()
			case "3":
				m.currentView = ViewLoans
				m.loansView = view.NewLoansModel(m.libService)

				return m, m.loansView.Init()
			case "4":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.libService, m.importService)

				return m, m.importView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewBooks:
		var newModel tea.Model
		newModel, cmd = m.booksView.Update(msg)
		m.booksView = newModel.(view.BooksModel)
	case ViewMembers:
		var newModel tea.Model
		newModel, cmd = m.membersView.Update(msg)
		m.membersView = newModel.(view.MembersModel)
	case ViewLoans:
		var newModel tea.Model
		newModel, cmd = m.loansView.Update(msg)
		m.loansView = newModel.(view.LoansModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Libris TUI\n\n" +
				"1. Manage Books\n" +
				"2. Manage Members\n" +
				"3. Circulation\n" +
				"4. Import Catalog\n\n" +
				"q. Quit",
		)
	case ViewBooks:
		return m.booksView.View()
	case ViewMembers:
		return m.membersView.View()
	case ViewLoans:
		return m.loansView.View()
	case ViewImport:
		return m.importView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
