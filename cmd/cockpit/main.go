package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"cockpit/internal/app"
	"cockpit/internal/config"
	"cockpit/internal/livestate"
	"cockpit/internal/logging"
	"cockpit/internal/store"
	statesync "cockpit/internal/sync"
	"cockpit/internal/types"
	"cockpit/internal/unread"
)

const usageText = `cockpit keeps coding-assistant session state in sync and surfaces
sessions that need attention.

Usage:
  cockpit <command> [flags]

Commands:
  panel      run the unread panel UI (default)
  sessions   list sessions with unread status
  config     print the effective configuration
  help       show help

Flags:
  -h, --help   show help

Examples:
  cockpit
  cockpit sessions
  cockpit sessions --all
`

func printUsage() {
	fmt.Fprint(os.Stderr, usageText)
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		exitOnErr("panel", runPanel(nil))
		return
	}

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
		return
	case "panel":
		exitOnErr("panel", runPanel(args[1:]))
	case "sessions":
		exitOnErr("sessions", runSessions(args[1:]))
	case "config":
		exitOnErr("config", runConfig(args[1:]))
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
}

func runPanel(args []string) error {
	fs := flag.NewFlagSet("panel", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(os.Stderr, logging.ParseLevel(cfg.LogLevel()))

	repo, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	failures := make(chan app.SaveFailure, 16)
	live := livestate.NewStore()
	engine := statesync.NewEngine(repo.Sessions(), live, statesync.Options{
		SaveDebounce: cfg.SaveDebounce(),
		LoadGrace:    cfg.LoadGrace(),
		Logger:       logger.With(logging.F("component", "sync")),
		Notifier: func(sessionID string, err error) {
			select {
			case failures <- app.SaveFailure{SessionID: sessionID, Err: err}:
			default:
			}
		},
	})
	// Flush the pending save even when the process is killed instead of
	// quitting through the UI.
	defer engine.Close()
	go flushOnSignal(engine, logger)

	state, err := repo.AppState().Load(context.Background())
	if err != nil {
		return err
	}

	model := app.NewModel(repo, live, engine, logger, state.ActiveProjectID, failures)
	return app.Run(model)
}

func flushOnSignal(engine *statesync.Engine, logger logging.Logger) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	sig := <-signals
	logger.Info("flushing before exit", logging.F("signal", sig.String()))
	engine.Close()
	os.Exit(130)
}

func runSessions(args []string) error {
	fs := flag.NewFlagSet("sessions", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	all := fs.Bool("all", false, "include read and archived sessions")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	repo, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	batch, err := repo.Sessions().ListAll(context.Background())
	if err != nil {
		return err
	}
	printSessions(batch, *all)
	return nil
}

func printSessions(batch []*types.ProjectSessions, all bool) {
	writer := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tPROJECT\tTITLE\tSTATUS\tUPDATED")
	for _, group := range batch {
		for _, session := range group.Sessions {
			classified := unread.Classify(session)
			if !all && !classified.Unread {
				continue
			}
			status := "read"
			if session.Archived() {
				status = "archived"
			}
			if classified.Unread {
				status = classified.Status.Label
			}
			fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n",
				session.ID,
				group.Project.Name,
				session.Title,
				status,
				types.TimestampTime(session.UpdatedAt).Format("2006-01-02 15:04"),
			)
		}
	}
	writer.Flush()
}

func runConfig(args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}
	fmt.Printf("config file:    %s\n", path)
	fmt.Printf("log level:      %s\n", cfg.LogLevel())
	fmt.Printf("backend:        %s\n", cfg.StorageBackend())
	fmt.Printf("save debounce:  %s\n", cfg.SaveDebounce())
	fmt.Printf("load grace:     %s\n", cfg.LoadGrace())
	return nil
}

func openRepository(cfg config.Config) (store.Repository, error) {
	projectsPath, err := config.ProjectsPath()
	if err != nil {
		return nil, err
	}
	sessionsPath, err := config.SessionsPath()
	if err != nil {
		return nil, err
	}
	statePath, err := config.StatePath()
	if err != nil {
		return nil, err
	}
	dbPath, err := config.DBPath()
	if err != nil {
		return nil, err
	}
	return store.OpenRepository(store.RepositoryPaths{
		ProjectsPath: projectsPath,
		SessionsPath: sessionsPath,
		AppStatePath: statePath,
		DBPath:       dbPath,
	}, cfg.StorageBackend())
}

func exitOnErr(label string, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "%s error: %v\n", label, err)
	os.Exit(1)
}
