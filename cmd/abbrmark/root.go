package main

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/abbrmark/internal/app"
	"github.com/dshills/abbrmark/internal/config"
	"github.com/dshills/abbrmark/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// state is shared by the subcommands. It is filled in before any of them
// runs.
type state struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	st := &state{}
	root := &cobra.Command{
		Use:          "abbrmark",
		Short:        "abbrmark - track, preview and expand Emmet abbreviations",
		Version:      version + " (" + commit + ", " + date + ")",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return st.load()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if st.logger != nil {
				_ = st.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&st.configPath, "config", "c", "", "Path to configuration file")
	root.PersistentFlags().StringVar(&st.logLevel, "log-level", "", "Override the log level (debug, info, warn, error)")

	root.AddCommand(
		newEditCmd(st),
		newReplayCmd(st),
		newExpandCmd(st),
		newRemoveTagCmd(st),
		newConfigCmd(st),
	)
	return root
}

func (st *state) load() error {
	cfg, err := config.Load(st.configPath)
	if err != nil {
		return err
	}
	if st.logLevel != "" {
		cfg.Log.Level = st.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	st.cfg, st.logger = cfg, logger
	return nil
}

// editor creates an editor for the loaded configuration.
func (st *state) editor(opts ...app.Option) (*app.Editor, error) {
	opts = append([]app.Option{app.WithLogger(st.logger)}, opts...)
	return app.New(st.cfg, opts...)
}

// syntaxFor guesses the syntax of a file from its extension.
func syntaxFor(path string) string {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case "css", "scss", "less", "sass", "xml":
		return ext
	case "svg", "xsl":
		return "xml"
	default:
		return "html"
	}
}

var errNotTerminal = errors.New("edit needs an interactive terminal")
