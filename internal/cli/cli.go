// Package cli wires the export and import pipelines into cobra commands.
package cli

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"sfxlate/internal/config"
	"sfxlate/internal/datamodel"
	"sfxlate/internal/export"
	"sfxlate/internal/filewalker"
	"sfxlate/internal/importer"
	"sfxlate/internal/labelkeys"
	"sfxlate/internal/textutil"
	"sfxlate/internal/workbook"
	"sfxlate/internal/worker"
)

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd := &cobra.Command{
		Use:   "sfxlate",
		Short: "Translation export/import tool for SF configuration documents",
		Long:  "Extracts translatable labels from SF data models and form templates into an Excel workbook, and applies edited workbooks back as ready-to-import files.",
	}

	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <config-dir>",
		Short: "Extract translatable labels from configuration documents into a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			langs, _ := cmd.Flags().GetString("langs")
			out, _ := cmd.Flags().GetString("out")
			countries, _ := cmd.Flags().GetString("countries")
			labelKeys, _ := cmd.Flags().GetString("label-keys")
			stripMarkup, _ := cmd.Flags().GetBool("strip-markup")
			standardDir, _ := cmd.Flags().GetString("standard-dir")
			return runExport(args[0], langs, out, countries, labelKeys, standardDir, stripMarkup)
		},
	}

	cmd.Flags().String("langs", "", "Comma-separated language codes to export (first is the default language; empty = all found)")
	cmd.Flags().String("out", "", "Output workbook path (default: timestamped file in the output directory)")
	cmd.Flags().String("countries", "", "CSV file listing active country codes")
	cmd.Flags().String("label-keys", "", "FormLabelKeys CSV for msgKey resolution")
	cmd.Flags().Bool("strip-markup", false, "Strip embedded markup tags from exported labels")
	cmd.Flags().String("standard-dir", "", "Directory with standard reference documents for fallback labels")

	return cmd
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <workbook.xlsx> <config-dir>",
		Short: "Apply an edited translations workbook back to configuration documents",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sheets, _ := cmd.Flags().GetString("sheets")
			labelKeys, _ := cmd.Flags().GetString("label-keys")
			outDir, _ := cmd.Flags().GetString("out-dir")
			return runImport(args[0], args[1], sheets, labelKeys, outDir)
		},
	}

	cmd.Flags().String("sheets", "", "Comma-separated sheet names to process (empty = all recognized sheets)")
	cmd.Flags().String("label-keys", "", "FormLabelKeys CSV for msgKey-routed rows")
	cmd.Flags().String("out-dir", "", "Directory for generated artifacts")

	return cmd
}

// runExport handles the `export` command.
func runExport(configDir, langsFlag, out, countriesPath, labelKeysPath, standardDir string, stripMarkup bool) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()
	if standardDir == "" {
		standardDir = cfg.StandardDir
	}
	if labelKeysPath == "" {
		labelKeysPath = cfg.LabelKeysPath
	}
	if countriesPath == "" {
		countriesPath = cfg.CountryListPath
	}

	reg := datamodel.NewRegistry()
	if err := loadDocuments(ctx, reg, configDir, false, cfg.WorkerCount); err != nil {
		return err
	}
	if standardDir != "" {
		if err := loadDocuments(ctx, reg, standardDir, true, cfg.WorkerCount); err != nil {
			return err
		}
	}
	if len(reg.All()) == 0 {
		return fmt.Errorf("no recognized documents in %s", configDir)
	}

	langs := splitList(langsFlag)
	if len(langs) == 0 {
		langs = reg.Languages()
	}
	langs = moveToFront(langs, cfg.DefaultLanguage)
	if len(langs) == 0 {
		return fmt.Errorf("no languages found in documents; pass --langs")
	}

	opts := export.Options{
		Languages:   langs,
		StripMarkup: stripMarkup,
		Progress:    logProgress,
	}
	if countriesPath != "" {
		countries, err := readCountryList(countriesPath)
		if err != nil {
			return err
		}
		opts.ActiveCountries = countries
		log.Info().Int("count", len(countries)).Msg("Loaded active country list")
	}
	if labelKeysPath != "" {
		keys, err := labelkeys.Read(labelKeysPath)
		if err != nil {
			return err
		}
		opts.LabelKeys = keys
		log.Info().Int("keys", len(keys.Keys())).Msg("Loaded label key table")
	}

	builder, result, err := export.New(reg).Run(ctx, opts)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn().Msg("Export cancelled, no workbook written")
			return err
		}
		return fmt.Errorf("export translations: %w", err)
	}

	if out == "" {
		out = filepath.Join(cfg.OutputDir, fmt.Sprintf("SF_EC_Translations_%s.xlsx", textutil.Timestamp()))
	}
	if err := builder.Save(out); err != nil {
		return err
	}

	log.Info().
		Int("documents", len(reg.All())).
		Int("sheets", result.Sheets).
		Int("rows", result.Rows).
		Str("workbook", out).
		Msg("Export complete")

	return nil
}

// runImport handles the `import` command.
func runImport(workbookPath, configDir, sheetsFlag, labelKeysPath, outDir string) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()
	if labelKeysPath == "" {
		labelKeysPath = cfg.LabelKeysPath
	}
	if outDir == "" {
		outDir = cfg.OutputDir
	}

	reg := datamodel.NewRegistry()
	if err := loadDocuments(ctx, reg, configDir, false, cfg.WorkerCount); err != nil {
		return err
	}
	if len(reg.All()) == 0 {
		return fmt.Errorf("no recognized documents in %s", configDir)
	}

	r, err := workbook.Open(workbookPath)
	if err != nil {
		return err
	}

	opts := importer.Options{
		Sheets:    splitList(sheetsFlag),
		OutputDir: outDir,
		Progress:  logProgress,
	}
	if labelKeysPath != "" {
		keys, err := labelkeys.Read(labelKeysPath)
		if err != nil {
			return err
		}
		opts.LabelKeys = keys
		log.Info().Int("keys", len(keys.Keys())).Msg("Loaded label key table")
	}

	result, err := importer.New(reg).Run(ctx, r, opts)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn().Msg("Import cancelled, documents left unmodified on disk")
			return err
		}
		return fmt.Errorf("import translations: %w", err)
	}

	log.Info().
		Int("changes", result.Changes).
		Int("files", len(result.FilesGenerated)).
		Str("log", result.LogPath).
		Msg("Import complete")

	return nil
}

// loadDocuments walks a directory and loads every recognized document into
// the registry, preserving discovery order.
func loadDocuments(ctx context.Context, reg *datamodel.Registry, dir string, isStandard bool, workers int) error {
	entries, err := filewalker.Walk(dir)
	if err != nil {
		return fmt.Errorf("walk %s: %w", dir, err)
	}

	pool := worker.NewPool[filewalker.FileEntry, *datamodel.Document](workers,
		func(ctx context.Context, entry filewalker.FileEntry) (*datamodel.Document, error) {
			return datamodel.Load(entry.Path, isStandard)
		},
	)

	for _, task := range pool.Execute(ctx, entries) {
		if task.Err != nil {
			if errors.Is(task.Err, datamodel.ErrUnrecognized) {
				log.Warn().Str("path", task.Input.Path).Msg("Skipping unrecognized document")
				continue
			}
			return task.Err
		}
		if task.Result == nil {
			continue
		}
		reg.Add(task.Result)
	}
	return nil
}

// readCountryList reads a CSV whose first column holds 3-letter country
// codes; other cells are ignored.
func readCountryList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open country list: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read country list: %w", err)
	}

	var countries []string
	for _, row := range records {
		if len(row) > 0 && len(row[0]) == 3 {
			countries = append(countries, row[0])
		}
	}
	return countries, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func moveToFront(langs []string, lang string) []string {
	for i, l := range langs {
		if l == lang && i > 0 {
			return append([]string{lang}, append(append([]string{}, langs[:i]...), langs[i+1:]...)...)
		}
	}
	return langs
}

func logProgress(percent int, message string) {
	log.Info().Int("percent", percent).Msg(message)
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Warn().Msg("Received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}
