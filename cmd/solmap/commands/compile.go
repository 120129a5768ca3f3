package commands

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/teranos/solmap/config"
	"github.com/teranos/solmap/solc"
)

// CompileCmd compiles a file and prints the combined-json artifact
var CompileCmd = &cobra.Command{
	Use:   "compile <file.sol>",
	Short: "Compile a file and print the combined-json artifact",
	Long: `Compile a Solidity file with the configured solc and print the parsed
combined-json artifact. With the cache enabled, repeated compilations
of unchanged sources are served from the cache.

Examples:
  solmap compile Token.sol
  solmap compile Token.sol --contracts`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

var compileContractsFlag bool

func init() {
	CompileCmd.Flags().BoolVar(&compileContractsFlag, "contracts", false, "List contract names instead of dumping the artifact")
}

func runCompile(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	compiler, cleanup, err := newCompiler(cfg)
	defer cleanup()
	if err != nil {
		return err
	}

	if err := compiler.CheckVersion(cmd.Context()); err != nil {
		return err
	}

	artifact, err := compiler.Compile(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if compileContractsFlag {
		for _, line := range contractListing(artifact) {
			fmt.Fprintln(out, line)
		}
		return nil
	}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(data))
	return nil
}

// contractListing renders one line per artifact contract in sorted key
// order, so repeated runs list contracts identically.
func contractListing(artifact *solc.Artifact) []string {
	keys := make([]string, 0, len(artifact.Contracts))
	for key := range artifact.Contracts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		deployable := "deployable"
		if artifact.Contracts[key].BinRuntime == "" {
			deployable = "no runtime bytecode"
		}
		lines = append(lines, fmt.Sprintf("%s (%s)", key, deployable))
	}
	return lines
}
