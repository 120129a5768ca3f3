package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/solmap/config"
	"github.com/teranos/solmap/disasm"
)

// DisasmCmd disassembles contract bytecode
var DisasmCmd = &cobra.Command{
	Use:   "disasm [file.sol]",
	Short: "Disassemble a contract's bytecode",
	Long: `Disassemble a compiled contract's bytecode into an instruction
listing, or disassemble raw hex directly with --code.

Examples:
  solmap disasm Token.sol
  solmap disasm Token.sol --contract Token --constructor
  solmap disasm --code 6080604052`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDisasm,
}

var (
	disasmContractFlag    string
	disasmConstructorFlag bool
	disasmCodeFlag        string
)

func init() {
	DisasmCmd.Flags().StringVarP(&disasmContractFlag, "contract", "c", "", "Contract name (default: last deployable contract in the file)")
	DisasmCmd.Flags().BoolVar(&disasmConstructorFlag, "constructor", false, "Disassemble constructor bytecode instead of runtime")
	DisasmCmd.Flags().StringVar(&disasmCodeFlag, "code", "", "Disassemble this hex bytecode instead of compiling a file")
}

func runDisasm(cmd *cobra.Command, args []string) error {
	var instructions []disasm.Instruction

	switch {
	case disasmCodeFlag != "":
		code, err := disasm.DecodeHex(disasmCodeFlag)
		if err != nil {
			return err
		}
		instructions = disasm.Disassemble(code)
	case len(args) == 1:
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		c, cleanup, err := loadContract(cmd.Context(), cfg, args[0], disasmContractFlag)
		defer cleanup()
		if err != nil {
			return err
		}
		instructions = c.Instructions(disasmConstructorFlag)
	default:
		return fmt.Errorf("either a Solidity file or --code is required")
	}

	out := cmd.OutOrStdout()
	for _, insn := range instructions {
		fmt.Fprintf(out, "0x%04x  %s\n", insn.PC, insn)
	}
	return nil
}
