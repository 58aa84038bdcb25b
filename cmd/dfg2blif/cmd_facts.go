package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/dfg2blif/internal/facts"
	"github.com/robert-at-pretension-io/dfg2blif/internal/pipeline"
	"github.com/robert-at-pretension-io/dfg2blif/internal/validator"
)

var (
	factsOutput    string
	factsDeltaFrom string
	factsDeltaOut  string
	factsNodes     string

	factsCmd = &cobra.Command{
		Use:   "facts <graph>",
		Short: "Export the compiled netlist as relational fact tables (JSON)",
		Args:  cobra.ExactArgs(1),
		RunE:  runFacts,
	}
)

func init() {
	factsCmd.Flags().StringVarP(&factsOutput, "output", "o", "", "write facts JSON to file (default: stdout)")
	factsCmd.Flags().StringVar(&factsDeltaFrom, "delta-from", "", "previous facts JSON to compute delta from")
	factsCmd.Flags().StringVar(&factsDeltaOut, "delta-out", "", "write delta JSON to file (requires --delta-from)")
	factsCmd.Flags().StringVar(&factsNodes, "nodes", "", "comma-separated node names to keep")
}

func runFacts(cmd *cobra.Command, args []string) error {
	if (factsDeltaFrom == "") != (factsDeltaOut == "") {
		return errors.New("--delta-from and --delta-out must be used together")
	}

	path := args[0]
	cfg, err := loadConfig(cmd, path)
	if err != nil {
		return err
	}
	p, err := pipeline.New(cfg, slog.Default())
	if err != nil {
		return err
	}
	desc, err := p.Load(path)
	if err != nil {
		return err
	}
	g, _, err := p.Compile(desc)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	tables := facts.BuildTables(g)
	fv, err := validator.NewFactsValidator()
	if err != nil {
		return err
	}
	if err := fv.Validate(tables); err != nil {
		return err
	}

	var nodes map[string]bool
	if factsNodes != "" {
		nodes = facts.ParseNodeSet(factsNodes)
	}
	out := tables
	if nodes != nil {
		out = facts.FilterTablesByNodes(tables, nodes)
	}

	if factsOutput != "" {
		if err := writeJSON(factsOutput, out); err != nil {
			return fmt.Errorf("writing facts: %w", err)
		}
	} else if err := encodeJSON(cmd.OutOrStdout(), out); err != nil {
		return fmt.Errorf("encoding facts: %w", err)
	}

	if factsDeltaFrom == "" {
		return nil
	}
	prev, err := readTables(factsDeltaFrom)
	if err != nil {
		return fmt.Errorf("reading delta-from: %w", err)
	}
	delta := facts.ComputeDelta(prev, tables)
	if nodes != nil {
		delta = facts.FilterDeltaByNodes(delta, nodes)
	}
	if err := writeJSON(factsDeltaOut, delta); err != nil {
		return fmt.Errorf("writing delta: %w", err)
	}
	if delta.Empty() {
		slog.Info("no changes since previous facts", slog.String("previous", factsDeltaFrom))
	}
	return nil
}

func readTables(path string) (facts.Tables, error) {
	f, err := os.Open(path)
	if err != nil {
		return facts.Tables{}, err
	}
	defer func() { _ = f.Close() }()

	var tables facts.Tables
	if err := json.NewDecoder(f).Decode(&tables); err != nil {
		return facts.Tables{}, err
	}
	return tables, nil
}

func writeJSON(path string, data interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return encodeJSON(f, data)
}

func encodeJSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
