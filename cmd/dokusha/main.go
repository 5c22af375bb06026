package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/mmcdole/dokusha/internal/config"
	"github.com/mmcdole/dokusha/internal/domain"
	"github.com/mmcdole/dokusha/internal/library"
	"github.com/mmcdole/dokusha/internal/log"
	"github.com/mmcdole/dokusha/internal/prefs"
	"github.com/mmcdole/dokusha/internal/store"
	"github.com/mmcdole/dokusha/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

type options struct {
	configDir     string
	importPath    string
	list          bool
	showCompleted bool
	query         string
	removeURL     string
}

func main() {
	var showVersion bool
	var opts options
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.StringVar(&opts.configDir, "config", "", "config directory (default ~/.config/dokusha)")
	flag.StringVar(&opts.importPath, "import", "", "import books from a JSON file")
	flag.BoolVar(&opts.list, "list", false, "print the library instead of starting the UI")
	flag.BoolVar(&opts.showCompleted, "completed", false, "show completed books")
	flag.StringVar(&opts.query, "search", "", "print books whose titles match query")
	flag.StringVar(&opts.removeURL, "remove", "", "remove the book with this URL and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("dokusha %s\n", Version)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.LoadConfig(opts.configDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting dokusha", "version", Version)

	dataDir, err := config.ExpandPath(cfg.Storage.DataDir)
	if err != nil {
		return err
	}
	books, err := store.NewLibraryStore(dataDir, logger)
	if err != nil {
		return fmt.Errorf("failed to open library: %w", err)
	}
	defer books.Close()

	settings := prefs.NewStore(opts.configDir, cfg, logger)
	defer settings.Close()

	if opts.importPath != "" {
		if err := importFile(ctx, os.Stdout, books, opts.importPath); err != nil {
			return err
		}
		if !opts.list && opts.query == "" && opts.removeURL == "" {
			return nil
		}
	}
	if opts.removeURL != "" {
		return removeBook(ctx, os.Stdout, books, opts.removeURL)
	}

	reading := library.NewPage(books, settings, false, logger)
	completed := library.NewPage(books, settings, true, logger)

	interactive := !opts.list && opts.query == "" && term.IsTerminal(int(os.Stdout.Fd()))
	if !interactive {
		page := reading
		if opts.showCompleted {
			page = completed
		}
		return printLibrary(ctx, os.Stdout, page, opts.query)
	}

	tab := tui.TabReading
	if opts.showCompleted || cfg.Library.DefaultTab == "completed" {
		tab = tui.TabCompleted
	}

	chapters := library.NewChapters(books, logger)

	return runTUI(ctx, logger, settings, reading, completed, chapters, tui.Options{
		Columns: cfg.UI.GridColumns,
		Tab:     tab,
	})
}

// runTUI runs the program alongside the goroutines feeding it. Quitting the
// UI cancels the rest.
func runTUI(ctx context.Context, logger *slog.Logger, settings *prefs.Store, reading, completed *library.Page, chapters *library.Chapters, opts tui.Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := tui.NewModel(ctx, reading, completed, chapters, opts)
	p := tea.NewProgram(model, tea.WithAltScreen())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		logger.Info("starting TUI")
		if _, err := p.Run(); err != nil {
			logger.Error("TUI error", "error", err)
			return fmt.Errorf("TUI error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		p.Quit()
		return nil
	})

	g.Go(func() error { return tui.ForwardBooks(gctx, reading, p.Send) })
	g.Go(func() error { return tui.ForwardBooks(gctx, completed, p.Send) })
	g.Go(func() error { return tui.ForwardPreferences(gctx, settings, domain.PrefLibraryFilterRead, p.Send) })
	g.Go(func() error { return tui.ForwardPreferences(gctx, settings, domain.PrefLibrarySortRead, p.Send) })

	g.Go(func() error {
		if err := settings.Watch(gctx); err != nil {
			logger.Warn("config live reload disabled", "error", err)
		}
		return nil
	})

	err := g.Wait()
	logger.Info("shutting down")
	return err
}
