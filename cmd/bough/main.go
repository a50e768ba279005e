package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jward/bough"
	"github.com/jward/bough/internal/analyzer"
	"github.com/jward/bough/internal/sink"
)

var (
	flagConfig  string
	flagVerbose bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "bough",
	Short:         "Bundle the branch of a codebase one command actually touches",
	Long:          "Bough finds an annotated entry function, follows the project functions it calls, and assembles just enough source into a pasteable report.",
	SilenceErrors: true,
	SilenceUsage:  true,
	// No Run; prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: .bough.yaml in the target directory)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(bundleCmd)
}

var (
	flagMode      string
	flagOut       string
	flagStdout    bool
	flagEngine    string
	flagExts      []string
	flagAttribute string
	flagOrder     []string
	flagCache     bool
	flagDB        string
	flagSerial    bool
)

var bundleCmd = &cobra.Command{
	Use:   "bundle MARKER [path]",
	Short: "Assemble the source bundle for a command marker",
	Long:  "Indexes function definitions under the target directory, resolves the entry function annotated with MARKER, follows its call dependencies, and delivers the rendered report to the clipboard or a file.",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runBundle,
}

func init() {
	bundleCmd.Flags().StringVar(&flagMode, "mode", "full", "closure mode: full (transitive, whole files) or direct (entry plus direct callees)")
	bundleCmd.Flags().StringVarP(&flagOut, "out", "o", "", "write the report to a file instead of the clipboard (rotates an existing file to a .bak)")
	bundleCmd.Flags().BoolVar(&flagStdout, "stdout", false, "print the report to stdout instead of the clipboard")
	bundleCmd.Flags().StringVar(&flagEngine, "engine", "", "analysis tier: heuristic or tree-sitter")
	bundleCmd.Flags().StringSliceVar(&flagExts, "ext", nil, "extension allow-list (e.g. .cs,.go)")
	bundleCmd.Flags().StringVar(&flagAttribute, "attribute", "", "annotation name carrying the marker (default CommandMethod)")
	bundleCmd.Flags().StringSliceVar(&flagOrder, "order", nil, "file names to place first in the report, in order")
	bundleCmd.Flags().BoolVar(&flagCache, "cache", false, "cache the definition index in SQLite between runs")
	bundleCmd.Flags().StringVar(&flagDB, "db", "", "cache database path (default: .bough/index.db under the target directory)")
	bundleCmd.Flags().BoolVar(&flagSerial, "serial", false, "disable the parallel definition scan")
}

func runBundle(cmd *cobra.Command, args []string) error {
	marker := args[0]
	targetDir, err := resolveTargetDir(args[1:])
	if err != nil {
		return err
	}

	cfg, err := loadConfig(flagConfig, targetDir)
	if err != nil {
		return err
	}
	mergeFlags(cmd, cfg)

	mode, ok := bough.ParseMode(cfg.Mode)
	if !ok {
		return fmt.Errorf("invalid mode %q (want full or direct)", cfg.Mode)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "bough"})
	if flagVerbose {
		logger.SetLevel(log.DebugLevel)
	}

	opts := []bough.Option{
		bough.WithLogger(logger),
		bough.WithParallel(!flagSerial),
	}
	if len(cfg.Extensions) > 0 {
		opts = append(opts, bough.WithExtensions(normalizeExts(cfg.Extensions)...))
	}
	if cfg.Attribute != "" {
		opts = append(opts, bough.WithMarkerAttribute(cfg.Attribute))
	}
	if len(cfg.Languages) > 0 {
		opts = append(opts, bough.WithLanguageTags(normalizeTags(cfg.Languages)))
	}
	switch cfg.Engine {
	case "", "heuristic":
		// default tier
	case "tree-sitter":
		opts = append(opts, bough.WithAnalyzer(analyzer.NewTreeSitter()))
	default:
		return fmt.Errorf("invalid engine %q (want heuristic or tree-sitter)", cfg.Engine)
	}
	if cfg.Cache {
		opts = append(opts, bough.WithCache(resolveDBPath(targetDir, cfg.CacheDB)))
	}

	engine, err := bough.New(targetDir, opts...)
	if err != nil {
		return err
	}
	defer engine.Close()

	b, err := engine.Bundle(context.Background(), marker, mode)
	if err != nil {
		return err
	}
	text := b.Render(bough.RenderOptions{OrderHint: cfg.OrderHint})

	switch {
	case flagStdout:
		fmt.Print(text)
	case cfg.Out != "":
		if err := sink.WriteFile(cfg.Out, text); err != nil {
			return err
		}
		logger.Info("report written", "path", cfg.Out)
	default:
		if err := sink.Clipboard(text); err != nil {
			return err
		}
		logger.Info("report copied to clipboard")
	}

	for _, f := range b.Files {
		logger.Info("included", "file", f.Path)
	}
	return nil
}

// resolveTargetDir returns the absolute path of the directory to analyze.
func resolveTargetDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory not found: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}

// resolveDBPath returns the cache database path from config or the default.
func resolveDBPath(targetDir, configured string) string {
	if configured != "" {
		if filepath.IsAbs(configured) {
			return configured
		}
		return filepath.Join(targetDir, configured)
	}
	return filepath.Join(targetDir, ".bough", "index.db")
}

// normalizeExts lowercases extensions and ensures a leading dot.
func normalizeExts(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}

// normalizeTags normalizes the extension keys of a fence-tag mapping.
func normalizeTags(tags map[string]string) map[string]string {
	out := make(map[string]string, len(tags))
	for ext, tag := range tags {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out[ext] = tag
	}
	return out
}
