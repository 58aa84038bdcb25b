package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/dfg2blif/internal/config"
)

var (
	initForce bool
	initYAML  bool

	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Create a dfg2blif configuration file in the current directory",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}
)

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing file without asking")
	initCmd.Flags().BoolVar(&initYAML, "yaml", false, "write dfg2blif.yaml instead of dfg2blif.json")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := "dfg2blif.json"
	if initYAML {
		path = "dfg2blif.yaml"
	}
	out := cmd.OutOrStdout()

	if _, err := os.Stat(path); err == nil && !initForce {
		fmt.Fprintf(out, "Config file %s already exists. Overwrite? [y/N]: ", path)
		var response string
		fmt.Fscanln(cmd.InOrStdin(), &response)
		if response != "y" && response != "Y" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("creating config: %w", err)
	}

	fmt.Fprintf(out, "Created %s\n", path)
	fmt.Fprintln(out, "\nEdit this file to configure:")
	fmt.Fprintln(out, "  - Model name, header and output path")
	fmt.Fprintln(out, "  - Default channel width")
	fmt.Fprintln(out, "  - Graph input patterns for batch translation")
	return nil
}
