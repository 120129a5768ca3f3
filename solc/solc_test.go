package solc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCompilerSplitsArgs(t *testing.T) {
	c, err := NewCompiler("", `--optimize --allow-paths "/tmp/my deps"`)
	require.NoError(t, err)

	assert.Equal(t, DefaultBinary, c.Binary)
	assert.Equal(t, []string{"--optimize", "--allow-paths", "/tmp/my deps"}, c.ExtraArgs)
}

func TestNewCompilerBadQuoting(t *testing.T) {
	_, err := NewCompiler("solc", `--allow-paths "unterminated`)
	require.Error(t, err)
}

func TestParseVersionBanner(t *testing.T) {
	banner := "solc, the solidity compiler commandline interface\n" +
		"Version: 0.8.24+commit.e11b9ed9.Linux.g++\n"

	version, err := parseVersionBanner(banner)
	require.NoError(t, err)
	assert.Equal(t, "0.8.24", version.String())
}

func TestParseVersionBannerNoVersionLine(t *testing.T) {
	_, err := parseVersionBanner("solc, the solidity compiler commandline interface\n")
	require.Error(t, err)
}

func TestParseVersionBannerGarbage(t *testing.T) {
	_, err := parseVersionBanner("Version: not-a-version\n")
	require.Error(t, err)
}

const artifactFixture = `{
	"contracts": {
		"C.sol:C": {
			"bin": "6080604052",
			"bin-runtime": "60806040525050",
			"srcmap": "0:60:0:-;;;",
			"srcmap-runtime": "24:10:0;;20:3:0"
		},
		"C.sol:I": {
			"bin": "",
			"bin-runtime": "",
			"srcmap": "",
			"srcmap-runtime": ""
		}
	},
	"sourceList": ["C.sol"],
	"sources": {
		"C.sol": {
			"AST": {"children": [{"src": "24:37:0", "attributes": {"contractKind": "contract"}}]}
		}
	},
	"version": "0.8.24+commit.e11b9ed9.Linux.g++"
}`

func TestParseArtifact(t *testing.T) {
	artifact, err := ParseArtifact([]byte(artifactFixture))
	require.NoError(t, err)

	require.Contains(t, artifact.Contracts, "C.sol:C")
	entry := artifact.Contracts["C.sol:C"]
	assert.Equal(t, "60806040525050", entry.BinRuntime)
	assert.Equal(t, "24:10:0;;20:3:0", entry.SrcMapRuntime)
	assert.Equal(t, []string{"C.sol"}, artifact.SourceList)

	asts := artifact.ASTs()
	require.Contains(t, asts, "C.sol")
	assert.NotEmpty(t, asts["C.sol"])
}

func TestParseArtifactInvalid(t *testing.T) {
	_, err := ParseArtifact([]byte("not json"))
	require.Error(t, err)
}
