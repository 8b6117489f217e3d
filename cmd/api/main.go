package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"libris/internal/auth"
	"libris/internal/config"
	"libris/internal/database"
	"libris/internal/export"
	librisHttp "libris/internal/http"
	authHandler "libris/internal/http/authn"
	bookHandler "libris/internal/http/book"
	circulationHandler "libris/internal/http/circulation"
	exportHandler "libris/internal/http/export"
	importHandler "libris/internal/http/importcsv"
	memberHandler "libris/internal/http/member"
	"libris/internal/http/session"
	"libris/internal/importer"
	"libris/internal/library"
	libraryStore "libris/internal/library/store"
)

func main() {
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
	defer db.Close()

	sessions := auth.NewService(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	sessions.RegisterCredential(cfg.Auth.LibrarianUser, cfg.Auth.LibrarianPassword, auth.RoleLibrarian)

	var (
		libraryService = library.NewService(libraryStore.New(db))
		importService  = importer.NewService()
		exportService  = export.NewService(libraryService)
		librarianOnly  = session.RequireLibrarian(sessions)
	)

	var (
		authH        = authHandler.NewHandler(sessions)
		bookH        = bookHandler.NewHandler(libraryService, librarianOnly)
		memberH      = memberHandler.NewHandler(libraryService, librarianOnly)
		circulationH = circulationHandler.NewHandler(libraryService, librarianOnly)
		importH      = importHandler.NewHandler(importService, libraryService, librarianOnly)
		exportH      = exportHandler.NewHandler(exportService, librarianOnly)
	)

	router := librisHttp.New(authH, bookH, memberH, circulationH, importH, exportH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port, "db", cfg.DB.Path)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
