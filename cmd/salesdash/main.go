// Package main provides the CLI entrypoint for salesdash.
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/salesdash/internal/analytics"
	"github.com/verte-zerg/salesdash/internal/config"
	"github.com/verte-zerg/salesdash/internal/dashui"
	"github.com/verte-zerg/salesdash/internal/logging"
	"github.com/verte-zerg/salesdash/internal/model"
	"github.com/verte-zerg/salesdash/internal/records"
	"github.com/verte-zerg/salesdash/internal/store"
)

const (
	sourceCSV = "csv"
	sourceDB  = "db"

	defaultSource    = sourceCSV
	defaultPage      = string(analytics.PageTime)
	defaultAddr      = "127.0.0.1:8080"
	defaultLogLevel  = "info"
	defaultLogFormat = "text"
)

var (
	configPath string
	logLevel   string
	logFormat  string

	dataPath   string
	dataSource string
	dbPath     string
	pageName   string
	viewName   string

	fileCfg config.FileConfig
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "salesdash",
		Short:             "Terminal dashboard for sales exports",
		SilenceUsage:      true,
		SilenceErrors:     false,
		PersistentPreRunE: initConfig,
		RunE:              runDashboardCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", config.DefaultConfigPath(), "config file")
	flags.StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	flags.StringVar(&logFormat, "log-format", defaultLogFormat, "log format (text, json)")
	flags.StringVar(&dataPath, "data", config.DefaultDataPath(), "sales CSV export")
	flags.StringVar(&dataSource, "source", defaultSource, "record source (csv, db)")
	flags.StringVar(&dbPath, "db", config.DefaultDBPath(), "SQLite database")
	flags.StringVar(&pageName, "page", defaultPage, "dashboard page (time, products, metrics, state)")
	flags.StringVar(&viewName, "view", "", "apply a saved view")
	for _, ctl := range analytics.Controls {
		name := string(ctl.Dimension)
		if ctl.Multi {
			flags.StringSlice(name, nil, fmt.Sprintf("%s filter (repeatable or comma-separated)", ctl.Label))
			continue
		}
		flags.String(name, "", fmt.Sprintf("%s filter", ctl.Label))
	}

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newImportsCmd())
	rootCmd.AddCommand(newSampleCmd())
	rootCmd.AddCommand(newValuesCmd())
	rootCmd.AddCommand(newViewsCmd())

	return rootCmd
}

// initConfig loads the config file and sets up logging before any command runs.
func initConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	fileCfg = cfg

	applyStringConfig(cmd, "log-level", &logLevel, cfg.Log.Level)
	applyStringConfig(cmd, "log-format", &logFormat, cfg.Log.Format)
	if err := logging.Setup(cmd.ErrOrStderr(), logLevel, logFormat); err != nil {
		return err
	}

	applyStringConfig(cmd, "data", &dataPath, cfg.Data.Path)
	applyStringConfig(cmd, "source", &dataSource, cfg.Data.Source)
	applyStringConfig(cmd, "db", &dbPath, cfg.Data.DB)
	applyStringConfig(cmd, "page", &pageName, cfg.Dashboard.Page)
	applyStringConfig(cmd, "view", &viewName, cfg.Dashboard.View)
	return nil
}

func runDashboardCmd(cmd *cobra.Command, _ []string) error {
	sess, err := openSession(cmd, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	dash := dashui.NewModel(sess.records, dashui.Options{
		Page:     sess.page,
		Criteria: sess.criteria,
		Views:    sess.store,
	})
	program := tea.NewProgram(dash, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}

// session holds what every dashboard surface needs: records, criteria and the page.
type session struct {
	cfg      model.DashboardConfig
	page     analytics.Page
	records  []model.Record
	criteria analytics.Criteria
	// store is nil unless the database is the source, a view is applied or needStore was set.
	store *store.Store
}

func openSession(cmd *cobra.Command, needStore bool) (*session, error) {
	cfg := dashboardConfig()
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	page, err := analytics.ParsePage(cfg.Page)
	if err != nil {
		return nil, fmt.Errorf("--page: %w", err)
	}
	sess := &session{cfg: cfg, page: page}

	if needStore || cfg.Source == sourceDB || cfg.View != "" {
		st, err := store.Open(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open db: %w", err)
		}
		sess.store = st
	}

	ctx := cmd.Context()
	if sess.criteria, err = resolveCriteria(ctx, cmd, sess.store); err != nil {
		sess.Close()
		return nil, err
	}
	if sess.records, err = loadRecords(ctx, cfg, sess.store); err != nil {
		sess.Close()
		return nil, err
	}
	return sess, nil
}

func (s *session) Close() {
	if s.store == nil {
		return
	}
	if cerr := s.store.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func dashboardConfig() model.DashboardConfig {
	return model.DashboardConfig{
		Source:   dataSource,
		DataPath: dataPath,
		DBPath:   dbPath,
		Page:     pageName,
		View:     viewName,
	}
}

func validateConfig(cfg model.DashboardConfig) error {
	switch cfg.Source {
	case sourceCSV:
		if cfg.DataPath == "" {
			return fmt.Errorf("--data must not be empty")
		}
	case sourceDB:
	default:
		return fmt.Errorf("--source must be %q or %q, got %q", sourceCSV, sourceDB, cfg.Source)
	}
	if cfg.DBPath == "" {
		return fmt.Errorf("--db must not be empty")
	}
	return nil
}

func loadRecords(ctx context.Context, cfg model.DashboardConfig, st *store.Store) ([]model.Record, error) {
	if cfg.Source == sourceDB {
		recs, err := st.LoadRecords(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load records from db: %w", err)
		}
		if len(recs) == 0 {
			logErrf("Database %s has no records. Import with: salesdash import <csv>\n", cfg.DBPath)
		}
		return recs, nil
	}
	rs, err := records.Load(cfg.DataPath)
	if err != nil {
		return nil, err
	}
	return rs.View(), nil
}

// resolveCriteria layers config filters, the saved view and filter flags, each
// overriding the previous one per dimension.
func resolveCriteria(ctx context.Context, cmd *cobra.Command, st *store.Store) (analytics.Criteria, error) {
	crit, err := analytics.BuildCriteria(fileCfg.Filters.Inputs())
	if err != nil {
		return analytics.Criteria{}, fmt.Errorf("invalid [filters] in config: %w", err)
	}
	if viewName != "" {
		view, err := st.GetView(ctx, viewName)
		if err != nil {
			return analytics.Criteria{}, fmt.Errorf("failed to load view: %w", err)
		}
		preset, err := view.Criteria()
		if err != nil {
			return analytics.Criteria{}, fmt.Errorf("view %q: %w", viewName, err)
		}
		crit = analytics.Merge(crit, preset)
	}
	flagCrit, err := analytics.BuildCriteria(flagInputs(cmd))
	if err != nil {
		return analytics.Criteria{}, err
	}
	return analytics.Merge(crit, flagCrit), nil
}

// flagInputs collects the filter flags that were set explicitly.
func flagInputs(cmd *cobra.Command) map[model.Dimension][]string {
	out := make(map[model.Dimension][]string)
	for _, ctl := range analytics.Controls {
		name := string(ctl.Dimension)
		if !cmd.Flags().Changed(name) {
			continue
		}
		if ctl.Multi {
			values, err := cmd.Flags().GetStringSlice(name)
			if err != nil {
				continue
			}
			out[ctl.Dimension] = analytics.SplitValues(values...)
			continue
		}
		value, err := cmd.Flags().GetString(name)
		if err != nil {
			continue
		}
		out[ctl.Dimension] = analytics.SplitValues(value)
	}
	return out
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
