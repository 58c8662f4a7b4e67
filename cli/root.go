// Package cli implements the catalog command line
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kjk/catalog/config"
	"github.com/kjk/catalog/genre"
	"github.com/kjk/catalog/log"
	"github.com/kjk/catalog/store"
)

type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

// globalOptions are persistent flags shared by all commands
type globalOptions struct {
	configPath string
	dataDir    string
	verbose    bool
}

// env is what commands operate on, opened lazily
type env struct {
	cfg    *config.Config
	genres *genre.Registry
	store  *store.Store
}

type app struct {
	out  io.Writer
	opts globalOptions
	env  *env
}

func (a *app) open() (*env, error) {
	if a.env != nil {
		return a.env, nil
	}
	cfg, err := config.Load(a.opts.configPath)
	if err != nil {
		return nil, err
	}
	if a.opts.dataDir != "" {
		cfg.DataDir = a.opts.dataDir
	}
	if a.opts.verbose {
		cfg.Verbose = true
	}
	log.Verbose = cfg.Verbose
	if err = os.MkdirAll(cfg.Dir(), 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	log.Init(&log.Config{Dir: cfg.LogPath()})

	defaults := genre.Defaults
	if len(cfg.DefaultGenres) > 0 {
		defaults = cfg.DefaultGenres
	}
	genres, err := genre.Open(cfg.GenresPath(), defaults)
	if err != nil {
		return nil, err
	}
	st := store.Open(cfg.StorePath(), genres)
	if err = st.LoadError(); err != nil {
		log.Logf("warning: couldn't read %s, starting with an empty catalog\n", cfg.StorePath())
	}
	a.env = &env{
		cfg:    cfg,
		genres: genres,
		store:  st,
	}
	return a.env, nil
}

func (a *app) close() {
	if a.env == nil {
		return
	}
	a.env = nil
	log.Close()
}

func NewRootCommand(out io.Writer, build BuildInfo) *cobra.Command {
	cmd, _ := newRoot(out, build)
	return cmd
}

func newRoot(out io.Writer, build BuildInfo) (*cobra.Command, *app) {
	a := &app{out: out}
	cmd := &cobra.Command{
		Use:           "catalog",
		Short:         "Catalog of books, articles and magazines",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.Output = cmd.ErrOrStderr()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(out)

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.opts.configPath, "config", "", "path of YAML config file (default "+config.DefaultPath()+")")
	flags.StringVar(&a.opts.dataDir, "data-dir", "", "directory with catalog data, overrides config")
	flags.BoolVarP(&a.opts.verbose, "verbose", "v", false, "verbose logging")

	cmd.AddCommand(newVersionCommand(out, build))
	cmd.AddCommand(newAddCommand(a))
	cmd.AddCommand(newListCommand(a))
	cmd.AddCommand(newStatsCommand(a))
	cmd.AddCommand(newDeleteCommand(a))
	cmd.AddCommand(newImportCommand(a))
	cmd.AddCommand(newExportCommand(a))
	cmd.AddCommand(newGenreCommand(a))
	cmd.AddCommand(newBackupCommand(a))
	return cmd, a
}

// Execute runs the root command and returns process exit code
func Execute(args []string, out io.Writer, build BuildInfo) int {
	cmd, a := newRoot(out, build)
	defer a.close()
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(out, "error: %s\n", err)
		return 1
	}
	return 0
}

func newVersionCommand(out io.Writer, build BuildInfo) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(build)
			}
			_, err := fmt.Fprintf(out, "version=%s commit=%s build_time=%s\n", build.Version, build.Commit, build.BuildTime)
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print version as JSON")
	return cmd
}
