package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/salesdash/internal/analytics"
	"github.com/verte-zerg/salesdash/internal/api"
	"github.com/verte-zerg/salesdash/internal/generator"
	"github.com/verte-zerg/salesdash/internal/model"
	"github.com/verte-zerg/salesdash/internal/records"
	"github.com/verte-zerg/salesdash/internal/report"
	"github.com/verte-zerg/salesdash/internal/store"
)

const (
	formatText = "text"
	formatJSON = "json"
)

var (
	reportAll    bool
	reportChart  string
	reportFormat string
	reportWidth  int

	serveAddr string

	importReplace bool

	sampleRows    int
	sampleSeed    int64
	sampleFrom    string
	sampleTo      string
	sampleMissing float64
	sampleForce   bool
)

const (
	defaultSampleRows = 2000
	defaultSampleFrom = "2022-03-31"
	defaultSampleTo   = "2022-06-29"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := configPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# salesdash configuration
# Uncomment a value to enable it. CLI flags override config values.

[data]
# path = "sales.csv"      # CSV export to load
# source = %q           # Record source: csv or db
# db = "salesdash.db"     # SQLite database used by import, views and --source db

[filters]
# year = 2022
# month = ["April", "May"]
# quarter = "Q2"
# day = ["Saturday", "Sunday"]
# season = "Spring"
# category = ["kurta", "Set"]
# size = ["M", "L"]

[dashboard]
# page = %q             # time, products, metrics or state
# view = ""               # Saved view applied at startup

[server]
# addr = %q

[log]
# level = %q            # debug, info, warn or error
# format = %q           # text or json
`,
		defaultSource,
		defaultPage,
		defaultAddr,
		defaultLogLevel,
		defaultLogFormat,
	)
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print metrics and charts for a page",
		Args:  cobra.NoArgs,
		RunE:  runReportCmd,
	}
	cmd.Flags().BoolVar(&reportAll, "all", false, "print every page")
	cmd.Flags().StringVar(&reportChart, "chart", "", "print only the chart with this id")
	cmd.Flags().StringVar(&reportFormat, "format", formatText, "output format (text, json)")
	cmd.Flags().IntVar(&reportWidth, "width", 0, "line width (default: terminal width)")
	return cmd
}

func runReportCmd(cmd *cobra.Command, _ []string) error {
	if reportFormat != formatText && reportFormat != formatJSON {
		return fmt.Errorf("--format must be %q or %q", formatText, formatJSON)
	}
	if reportWidth < 0 {
		return fmt.Errorf("--width must be >= 0")
	}
	sess, err := openSession(cmd, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	pages := []analytics.Page{sess.page}
	if reportAll {
		pages = analytics.Pages
	}
	responses := make([]analytics.Response, 0, len(pages))
	for _, p := range pages {
		responses = append(responses, analytics.Compute(sess.records, analytics.Request{Criteria: sess.criteria, Page: p}))
	}

	out := cmd.OutOrStdout()
	if reportChart != "" {
		chart, ok := findChart(responses, reportChart)
		if !ok {
			return fmt.Errorf("no chart %q on the selected pages", reportChart)
		}
		if reportFormat == formatJSON {
			return writeJSON(cmd, report.NewChartDoc(chart))
		}
		return report.RenderChart(out, chart, reportOptions(cmd))
	}

	if reportFormat == formatJSON {
		docs := make([]report.Document, 0, len(responses))
		for _, resp := range responses {
			docs = append(docs, report.NewDocument(resp, sess.criteria))
		}
		if len(docs) == 1 {
			return writeJSON(cmd, docs[0])
		}
		return writeJSON(cmd, docs)
	}

	if _, err := fmt.Fprintf(out, "Filters: %s\n\n", sess.criteria); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	opts := reportOptions(cmd)
	for i, resp := range responses {
		if i > 0 {
			if _, err := fmt.Fprintln(out); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
		if err := report.RenderPage(out, resp, opts); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func findChart(responses []analytics.Response, id string) (analytics.Chart, bool) {
	for _, resp := range responses {
		for _, chart := range resp.Charts {
			if chart.ID == id {
				return chart, true
			}
		}
	}
	return analytics.Chart{}, false
}

func reportOptions(cmd *cobra.Command) report.Options {
	color := false
	if f, ok := cmd.OutOrStdout().(*os.File); ok && f == os.Stdout {
		color = report.ColorEnabled()
	}
	return report.Options{Width: reportWidth, Color: color}
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard as a JSON API",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "listen address")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	applyStringConfig(cmd, "addr", &serveAddr, fileCfg.Server.Addr)
	if serveAddr == "" {
		return fmt.Errorf("--addr must not be empty")
	}
	sess, err := openSession(cmd, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := api.NewServer(api.NewHandler(sess.records, sess.criteria, sess.store))
	if err := api.Serve(ctx, e, serveAddr); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <csv>",
		Short: "Import a sales CSV export into the database",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
	cmd.Flags().BoolVar(&importReplace, "replace", false, "drop previously imported records first")
	return cmd
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	path := args[0]
	rs, err := records.Load(path)
	if err != nil {
		return err
	}
	recs := rs.View()

	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	bar := progressbar.NewOptions(len(recs),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSetDescription("Importing records"),
		progressbar.OptionClearOnFinish(),
	)
	source := path
	if abs, err := filepath.Abs(path); err == nil {
		source = abs
	}
	imp, err := st.ImportRecords(cmd.Context(), source, recs, store.ImportOptions{
		Replace: importReplace,
		Progress: func(done int) {
			if perr := bar.Set(done); perr != nil {
				// Best-effort progress output.
				_ = perr
			}
		},
	})
	if ferr := bar.Finish(); ferr != nil {
		// Best-effort progress output.
		_ = ferr
	}
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", path, err)
	}

	slog.Info("import complete", "id", imp.ID, "rows", imp.Rows, "replace", importReplace)
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Imported %s records from %s into %s\n",
		report.FormatCount(int64(imp.Rows)), path, dbPath); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newImportsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "imports",
		Short: "List past imports",
		Args:  cobra.NoArgs,
		RunE:  runImportsCmd,
	}
}

func runImportsCmd(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	imports, err := st.ListImports(cmd.Context())
	if err != nil {
		return err
	}
	if len(imports) == 0 {
		logErrf("No imports yet. Import with: salesdash import <csv>\n")
		return nil
	}
	total, err := st.CountRecords(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, imp := range imports {
		if _, err := fmt.Fprintf(out, "%s  %s  %8s rows  %s\n",
			imp.ImportedAt.Local().Format("2006-01-02 15:04"), imp.ID[:8],
			report.FormatCount(int64(imp.Rows)), imp.Source); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if _, err := fmt.Fprintf(out, "%s records stored\n", report.FormatCount(int64(total))); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newValuesCmd() *cobra.Command {
	valid := make([]string, len(model.Dimensions))
	for i, d := range model.Dimensions {
		valid[i] = string(d)
	}
	return &cobra.Command{
		Use:       "values <dimension>",
		Short:     "List the distinct values of a dimension",
		Args:      cobra.ExactArgs(1),
		ValidArgs: valid,
		RunE:      runValuesCmd,
	}
}

func runValuesCmd(cmd *cobra.Command, args []string) error {
	dim, err := model.ParseDimension(args[0])
	if err != nil {
		return err
	}
	sess, err := openSession(cmd, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	for _, v := range analytics.Distinct(sess.records, dim) {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), model.FormatDimensionValue(dim, v)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newViewsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "views",
		Short: "Manage saved filter views",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "save <name>",
		Short: "Save the current filters as a view",
		Args:  cobra.ExactArgs(1),
		RunE:  runViewsSaveCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved views",
		Args:  cobra.NoArgs,
		RunE:  runViewsListCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved view",
		Args:  cobra.ExactArgs(1),
		RunE:  runViewsDeleteCmd,
	})
	return cmd
}

func withStore(fn func(st *store.Store) error) error {
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	return fn(st)
}

func runViewsSaveCmd(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(args[0])
	if name == "" {
		return fmt.Errorf("view name must not be empty")
	}
	return withStore(func(st *store.Store) error {
		crit, err := resolveCriteria(cmd.Context(), cmd, st)
		if err != nil {
			return err
		}
		if crit.Empty() {
			return fmt.Errorf("no filters to save; pass filter flags such as --year or --category")
		}
		view, err := st.SaveView(cmd.Context(), name, crit)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Saved view %q: %s\n", view.Name, crit); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	})
}

func runViewsListCmd(cmd *cobra.Command, _ []string) error {
	return withStore(func(st *store.Store) error {
		views, err := st.ListViews(cmd.Context())
		if err != nil {
			return err
		}
		if len(views) == 0 {
			logErrf("No saved views. Save one with: salesdash views save <name> --year 2022\n")
			return nil
		}
		for _, v := range views {
			crit, err := v.Criteria()
			if err != nil {
				return fmt.Errorf("view %q: %w", v.Name, err)
			}
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", v.Name, crit); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
		return nil
	})
}

func runViewsDeleteCmd(cmd *cobra.Command, args []string) error {
	return withStore(func(st *store.Store) error {
		err := st.DeleteView(cmd.Context(), args[0])
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no saved view named %q", args[0])
		}
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted view %q\n", args[0]); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	})
}

func newSampleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample [path]",
		Short: "Write a synthetic sales export",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSampleCmd,
	}
	cmd.Flags().IntVar(&sampleRows, "rows", defaultSampleRows, "number of order lines")
	cmd.Flags().Int64Var(&sampleSeed, "seed", 0, "random seed (default: time based)")
	cmd.Flags().StringVar(&sampleFrom, "from", defaultSampleFrom, "first order date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&sampleTo, "to", defaultSampleTo, "last order date (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&sampleMissing, "missing", 0.05, "probability of an empty amount (0-1)")
	cmd.Flags().BoolVar(&sampleForce, "force", false, "overwrite an existing file")
	return cmd
}

func runSampleCmd(cmd *cobra.Command, args []string) error {
	path := dataPath
	if len(args) == 1 {
		path = args[0]
	}
	if !sampleForce {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("export already exists: %s (use --force to overwrite)", path)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat export: %w", err)
		}
	}
	from, err := time.Parse(time.DateOnly, sampleFrom)
	if err != nil {
		return fmt.Errorf("invalid --from value: %w", err)
	}
	to, err := time.Parse(time.DateOnly, sampleTo)
	if err != nil {
		return fmt.Errorf("invalid --to value: %w", err)
	}

	gen := generator.New()
	if cmd.Flags().Changed("seed") {
		gen = generator.NewSeeded(sampleSeed)
	}
	recs, err := gen.Generate(generator.Options{
		Rows:             sampleRows,
		Start:            from,
		End:              to,
		MissingAmountPct: sampleMissing,
	})
	if err != nil {
		return err
	}
	if err := writeExport(path, recs); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	slog.Info("sample export written", "path", path, "records", len(recs))
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s records to %s\n", report.FormatCount(int64(len(recs))), path); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func writeExport(path string, recs []model.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create export dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "sales-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp export: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	if err := records.WriteCSV(writer, recs); err != nil {
		return err
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush export: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close export: %w", err)
	}
	return os.Rename(tmpPath, path)
}
