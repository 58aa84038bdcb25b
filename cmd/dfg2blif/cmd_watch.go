package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/dfg2blif/internal/pipeline"
	"github.com/robert-at-pretension-io/dfg2blif/internal/watch"
)

var (
	watchDebounce time.Duration

	watchCmd = &cobra.Command{
		Use:   "watch <graph...>",
		Short: "Translate graphs again whenever they change",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runWatch,
	}
)

func init() {
	watchCmd.Flags().StringVarP(&outputPath, "output", "o", "", `netlist path, "-" for stdout (default from config)`)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "quiet period before translating")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args[0])
	if err != nil {
		return err
	}
	if len(args) > 1 && cfg.OutputDir == "" && cfg.Output != pipeline.Stdout {
		return errors.New("watching more than one graph needs outputDir in the config")
	}
	p, err := pipeline.New(cfg, slog.Default())
	if err != nil {
		return err
	}
	p.Stdout = cmd.OutOrStdout()

	// A broken graph at startup is reported but does not stop the watch.
	for _, g := range args {
		if err := p.Run(g, cfg.OutputFor(g)); err != nil {
			slog.Error("translation failed", slog.String("error", err.Error()))
		}
	}

	w, err := watch.New(args, func(_ context.Context, path string) error {
		return p.Run(path, cfg.OutputFor(path))
	}, watch.Options{Debounce: watchDebounce}, slog.Default())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	slog.Info("watching for changes", slog.Int("graphs", len(args)))
	return w.Run(ctx)
}
