package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sadopc/commitpaint/internal/git"
	"github.com/sadopc/commitpaint/internal/logging"
	"github.com/sadopc/commitpaint/internal/store"
	"github.com/sadopc/commitpaint/internal/tui"
)

func main() {
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	s, err := store.New(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	log, err := logging.New(logging.DefaultPath(dbPath), os.Getenv("COMMITPAINT_DEBUG") != "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("starting", zap.String("db", dbPath))

	app := tui.NewApp(s, log, git.ExecRunner)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		log.Error("program exited", zap.Error(err))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
