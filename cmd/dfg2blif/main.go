// =============================================================================
// dfg2blif - Dataflow Graph to BLIF Netlist Translator
// =============================================================================
//
// THE PIPELINE:
//   1. A loader reads the graph (DOT, CUE, JSON or YAML)
//   2. The CUE validator checks the description against #Graph
//   3. The attribute pass resolves node kinds, operations and ports
//   4. The linker gives both ends of every edge a shared connection label
//   5. The fanout transform turns wide forks into trees of binary forks
//   6. The emitter writes the netlist
//
// Any failing stage stops the run. The output file is only replaced after
// the whole netlist has been produced.
// =============================================================================

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/dfg2blif/internal/config"
	"github.com/robert-at-pretension-io/dfg2blif/internal/pipeline"
)

var (
	outputPath string
	modelName  string
	configPath string
	verbose    bool
	timing     bool
	timestamp  bool

	rootCmd = &cobra.Command{
		Use:   "dfg2blif [graph...]",
		Short: "Translate dataflow graphs into BLIF netlists",
		Long: `dfg2blif reads a dataflow circuit graph and writes a BLIF-style netlist.

Graphs are read as DOT (.dot, .gv), CUE (.cue), JSON (.json) or YAML
(.yaml, .yml). Without arguments the graphs matched by the configured
inputs are translated.

Configuration is looked up in:
  1. ./dfg2blif.json
  2. ./.dfg2blif.json
  3. ./dfg2blif.yaml
  4. <graph dir>/dfg2blif.json
  5. ~/.config/dfg2blif/config.json

Run 'dfg2blif init' to create a default configuration file.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runTranslate,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "configuration file (default: search path)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVar(&timing, "timing", false, "record per-stage timings as JSON lines")

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", `netlist path, "-" for stdout (default from config)`)
	rootCmd.Flags().StringVarP(&modelName, "model", "m", "", "model name written after .model")
	rootCmd.Flags().BoolVar(&timestamp, "timestamp", false, `add a "#### File Created:" line`)

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	}

	rootCmd.AddCommand(initCmd, factsCmd, watchCmd)
}

// loadConfig reads the configuration for graphPath and applies the command
// line overrides.
func loadConfig(cmd *cobra.Command, graphPath string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load(graphPath)
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	// facts has its own -o for the JSON tables.
	if f := cmd.Flags().Lookup("output"); f != nil && f.Changed && cmd.Name() != "facts" {
		cfg.Output = f.Value.String()
		cfg.OutputDir = ""
	}
	if cmd.Flags().Changed("model") {
		cfg.ModelName = modelName
	}
	if cmd.Flags().Changed("timestamp") {
		cfg.Timestamp = timestamp
	}
	if timing {
		cfg.Timing.Enabled = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runTranslate(cmd *cobra.Command, args []string) error {
	first := ""
	if len(args) > 0 {
		first = args[0]
	}
	cfg, err := loadConfig(cmd, first)
	if err != nil {
		return err
	}

	graphs := args
	if len(graphs) == 0 {
		if len(cfg.Inputs) == 0 {
			return errors.New("no graph given and no inputs configured")
		}
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		if graphs, err = cfg.ResolveInputs(cwd); err != nil {
			return fmt.Errorf("resolving inputs: %w", err)
		}
		if len(graphs) == 0 {
			return errors.New("configured inputs matched no graph files")
		}
	}
	if len(graphs) > 1 && cfg.OutputDir == "" && cfg.Output != pipeline.Stdout {
		return errors.New("translating more than one graph needs outputDir in the config")
	}

	p, err := pipeline.New(cfg, slog.Default())
	if err != nil {
		return err
	}
	p.Stdout = cmd.OutOrStdout()
	for _, g := range graphs {
		if err := p.Run(g, cfg.OutputFor(g)); err != nil {
			return err
		}
	}
	return nil
}
