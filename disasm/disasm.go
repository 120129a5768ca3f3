package disasm

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/teranos/solmap/errors"
)

// Instruction is one decoded opcode at a specific program counter.
type Instruction struct {
	// PC is the byte address of the opcode within the code.
	PC int
	// Op is the opcode byte.
	Op OpCode
	// Arg holds PUSH immediate bytes, nil for all other opcodes. A
	// PUSH truncated by the end of code keeps whatever bytes exist.
	Arg []byte
}

// String renders the instruction the way EVM disassemblers
// conventionally do, e.g. "PUSH1 0x80".
func (i Instruction) String() string {
	if len(i.Arg) > 0 {
		return fmt.Sprintf("%s 0x%x", i.Op, i.Arg)
	}
	return i.Op.String()
}

// Disassemble decodes bytecode into an ordered instruction list, one
// entry per opcode, with PUSH operands consumed. The list is ordered by
// program counter and its positions align with solc source-map entries
// for the same code.
func Disassemble(code []byte) []Instruction {
	instructions := make([]Instruction, 0, len(code))
	for pc := 0; pc < len(code); {
		op := OpCode(code[pc])
		insn := Instruction{PC: pc, Op: op}

		size := op.PushSize()
		if size > 0 {
			end := pc + 1 + size
			if end > len(code) {
				end = len(code)
			}
			insn.Arg = code[pc+1 : end]
		}

		instructions = append(instructions, insn)
		pc += 1 + size
	}
	return instructions
}

// InstructionIndex returns the position of the instruction starting at
// the given address. Addresses that fall inside a PUSH operand, or past
// the end of the code, have no instruction and return false.
func InstructionIndex(instructions []Instruction, address int) (int, bool) {
	i := sort.Search(len(instructions), func(i int) bool {
		return instructions[i].PC >= address
	})
	if i < len(instructions) && instructions[i].PC == address {
		return i, true
	}
	return 0, false
}

// DecodeHex decodes solc's hex bytecode fields, accepting an optional
// 0x prefix. Unlinked library placeholders ("__$...$__") are not valid
// bytecode and are rejected with a hint.
func DecodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	if strings.Contains(s, "_") {
		return nil, errors.WithHint(
			errors.New("bytecode contains unlinked library placeholders"),
			"link libraries before resolving, e.g. solc --libraries",
		)
	}
	code, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "decode bytecode hex")
	}
	return code, nil
}
