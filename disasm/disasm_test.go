package disasm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisassemble(t *testing.T) {
	// The canonical solc prologue: PUSH1 0x80 PUSH1 0x40 MSTORE
	code := []byte{0x60, 0x80, 0x60, 0x40, 0x52}
	instructions := Disassemble(code)
	require.Len(t, instructions, 3)

	assert.Equal(t, Instruction{PC: 0, Op: PUSH1, Arg: []byte{0x80}}, instructions[0])
	assert.Equal(t, Instruction{PC: 2, Op: PUSH1, Arg: []byte{0x40}}, instructions[1])
	assert.Equal(t, Instruction{PC: 4, Op: MSTORE, Arg: nil}, instructions[2])
}

func TestDisassembleWidePush(t *testing.T) {
	// PUSH32 consumes 32 operand bytes
	code := make([]byte, 34)
	code[0] = byte(PUSH32)
	code[33] = byte(STOP)
	instructions := Disassemble(code)
	require.Len(t, instructions, 2)
	assert.Len(t, instructions[0].Arg, 32)
	assert.Equal(t, 33, instructions[1].PC)
	assert.Equal(t, STOP, instructions[1].Op)
}

func TestDisassembleTruncatedPush(t *testing.T) {
	// A PUSH cut off by the end of code keeps the bytes that exist
	code := []byte{0x61, 0xff} // PUSH2 with one operand byte
	instructions := Disassemble(code)
	require.Len(t, instructions, 1)
	assert.Equal(t, []byte{0xff}, instructions[0].Arg)
}

func TestDisassembleEmpty(t *testing.T) {
	assert.Empty(t, Disassemble(nil))
}

func TestInstructionIndex(t *testing.T) {
	code := []byte{0x60, 0x80, 0x60, 0x40, 0x52, 0x00} // PUSH1 80, PUSH1 40, MSTORE, STOP
	instructions := Disassemble(code)

	tests := []struct {
		address int
		index   int
		found   bool
	}{
		{0, 0, true},
		{2, 1, true},
		{4, 2, true},
		{5, 3, true},
		{1, 0, false}, // inside a PUSH operand
		{3, 0, false},
		{6, 0, false}, // past end of code
		{-1, 0, false},
	}
	for _, tt := range tests {
		index, found := InstructionIndex(instructions, tt.address)
		assert.Equal(t, tt.found, found, "address %d", tt.address)
		if tt.found {
			assert.Equal(t, tt.index, index, "address %d", tt.address)
		}
	}
}

func TestDecodeHex(t *testing.T) {
	code, err := DecodeHex("608060405250")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x80, 0x60, 0x40, 0x52, 0x50}, code)

	code, err = DecodeHex("0x6080")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x80}, code)
}

func TestDecodeHexUnlinkedPlaceholder(t *testing.T) {
	_, err := DecodeHex("6080__$30bbc20abc2ba518bc40a1ea4b2dfcf895$__6040")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unlinked library")
}

func TestDecodeHexInvalid(t *testing.T) {
	_, err := DecodeHex("60g0")
	require.Error(t, err)
}

func TestOpCodeString(t *testing.T) {
	tests := []struct {
		op   OpCode
		want string
	}{
		{MSTORE, "MSTORE"},
		{PUSH0, "PUSH0"},
		{PUSH1, "PUSH1"},
		{PUSH32, "PUSH32"},
		{OpCode(0x6f), "PUSH16"},
		{OpCode(0x85), "DUP6"},
		{OpCode(0x93), "SWAP4"},
		{OpCode(0xa2), "LOG2"},
		{SELFDESTRUCT, "SELFDESTRUCT"},
		{OpCode(0x0c), "opcode 0x0c"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.op.String())
	}
}

func TestInstructionString(t *testing.T) {
	assert.Equal(t, "PUSH1 0x80", Instruction{Op: PUSH1, Arg: []byte{0x80}}.String())
	assert.Equal(t, "MSTORE", Instruction{Op: MSTORE}.String())
}
