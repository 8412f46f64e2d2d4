package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/RishiKendai/duplink/internal/config"
	"github.com/RishiKendai/duplink/internal/configs/env"
	"github.com/RishiKendai/duplink/internal/corpus"
	"github.com/RishiKendai/duplink/internal/db"
	"github.com/RishiKendai/duplink/internal/duplink"
	"github.com/RishiKendai/duplink/internal/logger"
	"github.com/RishiKendai/duplink/internal/report"
	"github.com/RishiKendai/duplink/internal/tokenize"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// runOutputs names the files a run writes besides the record stream
type runOutputs struct {
	records string
	details string
	dbPath  string
}

var runCmd = &cobra.Command{
	Use:   "run <documents> <output>",
	Short: "Link duplicated passages across a directory of documents",
	Long: `Read every file of <documents> as one document. File names are digits with an
optional .txt extension and give the chronological order. Each passage that
reappears in a later document is linked to its earliest source and the links
are written to <output> as one record per line, grouped by duplicate cluster.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 2 {
			return fmt.Errorf("%w: expected <documents> <output>, got %d arguments", duplink.ErrConfig, len(args))
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		dc, err := detectionConfig(cmd)
		if err != nil {
			return err
		}

		level, _ := cmd.Flags().GetString("logging")
		logger.Init(level)

		details, _ := cmd.Flags().GetString("details")
		dbPath, _ := cmd.Flags().GetString("db")
		out := runOutputs{records: args[1], details: details, dbPath: dbPath}

		start := time.Now()
		res, err := runLink(cmd.Context(), dc, args[0], out)
		if err != nil {
			return err
		}
		printSummary(cmd.OutOrStdout(), res, out, time.Since(start))
		return nil
	},
}

// detectionConfig resolves detection parameters from the environment, an
// optional YAML file and the command flags, in that order of precedence
func detectionConfig(cmd *cobra.Command) (config.DetectionConfig, error) {
	_ = env.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		return config.DetectionConfig{}, err
	}
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return config.DetectionConfig{}, err
		}
	}

	dc := cfg.Detection
	flags := cmd.Flags()
	if flags.Changed("gap") {
		dc.Gap, _ = flags.GetFloat64("gap")
	}
	if flags.Changed("penalty") {
		dc.Penalty, _ = flags.GetFloat64("penalty")
	}
	if flags.Changed("minScore") {
		dc.MinScore, _ = flags.GetFloat64("minScore")
	}
	if flags.Changed("tokenized") {
		dc.Tokenized, _ = flags.GetBool("tokenized")
	}
	if flags.Changed("workers") {
		dc.Workers, _ = flags.GetInt("workers")
	}
	return dc, dc.Validate()
}

// runLink loads the corpus in dir, links it and writes the requested outputs.
// An existing records file is never overwritten.
func runLink(ctx context.Context, dc config.DetectionConfig, dir string, out runOutputs) (*duplink.Result, error) {
	if _, err := os.Stat(out.records); err == nil {
		return nil, fmt.Errorf("%w: output file %s already exists", duplink.ErrConfig, out.records)
	}

	docs, err := corpus.LoadDir(dir, tokenize.ForCorpus(dc.Tokenized))
	if err != nil {
		return nil, err
	}

	opts := dc.Options()
	opts.Observer = duplink.NewLogObserver(log.Logger)
	linker, err := duplink.New(opts)
	if err != nil {
		return nil, err
	}
	res, err := linker.Link(ctx, docs)
	if err != nil {
		return nil, err
	}

	if err := writeFile(out.records, true, func(w io.Writer) error {
		return report.WriteRecords(w, res.Clusters)
	}); err != nil {
		return nil, err
	}

	// A run either produces every requested output or leaves no records file.
	if err := writeExtras(out, opts, res); err != nil {
		if rmErr := os.Remove(out.records); rmErr != nil {
			log.Warn().Err(rmErr).Str("path", out.records).Msg("Failed to remove records file")
		}
		return nil, err
	}

	return res, nil
}

// writeExtras writes the optional details file and run database.
func writeExtras(out runOutputs, opts duplink.Options, res *duplink.Result) error {
	if out.details != "" {
		if err := writeFile(out.details, false, func(w io.Writer) error {
			return report.WriteDetails(w, res.Documents, res.Links)
		}); err != nil {
			return err
		}
	}

	if out.dbPath != "" {
		run := db.Run{ID: uuid.NewString(), CreatedAt: time.Now(), Options: opts}
		if err := db.PersistRun(out.dbPath, run, res); err != nil {
			return fmt.Errorf("persisting run: %w", err)
		}
		log.Info().Str("runId", run.ID).Str("db", out.dbPath).Msg("Run persisted")
	}
	return nil
}

func writeFile(path string, exclusive bool, write func(io.Writer) error) error {
	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if exclusive {
		flag = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

func printSummary(w io.Writer, res *duplink.Result, out runOutputs, elapsed time.Duration) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	s := res.Stats
	fmt.Fprintf(w, "\n%s\n", cyan("=== Duplicate Links ==="))
	fmt.Fprintf(w, "Documents:  %d\n", s.Documents)
	fmt.Fprintf(w, "Pairs:      %d compared, %d skipped by prefilter\n", s.Pairs, s.Skipped)
	fmt.Fprintf(w, "Links:      %s in %d clusters (%d diffs)\n", green(s.Links), len(res.Clusters), s.Diffs)
	fmt.Fprintf(w, "Records:    %s\n", out.records)
	if out.details != "" {
		fmt.Fprintf(w, "Details:    %s\n", out.details)
	}
	if out.dbPath != "" {
		fmt.Fprintf(w, "Database:   %s\n", out.dbPath)
	}
	fmt.Fprintf(w, "%s\n", gray(fmt.Sprintf("Finished in %s", elapsed.Round(time.Millisecond))))
}

func init() {
	defaults := duplink.DefaultOptions()
	runCmd.Flags().Float64("gap", defaults.Gap, "Score added for each inserted or deleted token (<= 0)")
	runCmd.Flags().Float64("penalty", defaults.Penalty, "Score added for each substituted token (<= 0)")
	runCmd.Flags().Float64("minScore", defaults.MinScore, "Minimum alignment score reported as a duplicate (> 0)")
	runCmd.Flags().Bool("tokenized", false, "Documents are already tokenized; split on whitespace only")
	runCmd.Flags().String("logging", "WARNING", "Log level (SEVERE, WARNING, INFO, FINE, FINER, FINEST or a zerolog level)")
	runCmd.Flags().String("details", "", "Also write the XML detail report to this file")
	runCmd.Flags().String("db", "", "Also persist the run to this SQLite database")
	runCmd.Flags().Int("workers", 0, "Destination documents aligned in parallel (0 = number of CPUs)")
	runCmd.Flags().String("config", "", "YAML config file with detection defaults")

	rootCmd.AddCommand(runCmd)
}
