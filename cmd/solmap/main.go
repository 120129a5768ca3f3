package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/solmap/cmd/solmap/commands"
	"github.com/teranos/solmap/logger"
)

var rootCmd = &cobra.Command{
	Use:   "solmap",
	Short: "solmap - Resolve EVM bytecode addresses to Solidity source",
	Long: `solmap - Resolve EVM bytecode addresses to Solidity source locations.

solmap compiles a Solidity file, decodes the compiler's compact source
maps, and answers which file, line, and source range produced any
bytecode instruction.

Available commands:
  resolve - Resolve an instruction address to its source location
  disasm  - Disassemble a contract's bytecode
  compile - Compile a file and print the combined-json artifact
  version - Show version information

Examples:
  solmap resolve Token.sol --address 0x120          # Runtime code location
  solmap resolve Token.sol --address 0x16 --constructor
  solmap disasm Token.sol --contract Token
  solmap compile Token.sol`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonOutput, _ := cmd.Flags().GetBool("json")
		if err := logger.Initialize(verbosity, jsonOutput); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().Bool("json", false, "Machine-readable JSON log output")

	rootCmd.AddCommand(commands.ResolveCmd)
	rootCmd.AddCommand(commands.DisasmCmd)
	rootCmd.AddCommand(commands.CompileCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
