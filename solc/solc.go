package solc

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/kballard/go-shellquote"
	"go.uber.org/zap"

	"github.com/teranos/solmap/errors"
)

// DefaultBinary is the solc executable looked up on PATH when no
// explicit path is configured.
const DefaultBinary = "solc"

// DefaultVersionConstraint matches every solc release that emits the
// combined-json artifact shape this package consumes.
const DefaultVersionConstraint = ">= 0.4.11"

// combinedJSONFields is everything resolution needs from the compiler:
// both bytecodes, both source maps, and the per-file AST.
const combinedJSONFields = "bin,bin-runtime,srcmap,srcmap-runtime,ast"

// Compiler invokes solc and caches its artifacts.
type Compiler struct {
	// Binary is the solc executable path or name.
	Binary string
	// ExtraArgs are appended to every invocation (e.g. remappings,
	// --optimize).
	ExtraArgs []string
	// Constraint gates the solc version; empty means
	// DefaultVersionConstraint.
	Constraint string
	// Cache, when non-nil, stores artifacts content-addressed by
	// source bytes, solc version, and args.
	Cache *Cache
	// Logger, when non-nil, logs invocations and cache hits.
	Logger *zap.SugaredLogger
}

// NewCompiler builds a Compiler from a binary path and one
// shell-quoted extra-args string, split the way a shell would.
func NewCompiler(binary, extraArgs string) (*Compiler, error) {
	if binary == "" {
		binary = DefaultBinary
	}
	args, err := shellquote.Split(extraArgs)
	if err != nil {
		return nil, errors.Wrapf(err, "parse solc args %q", extraArgs)
	}
	return &Compiler{Binary: binary, ExtraArgs: args}, nil
}

// Version runs `solc --version` and parses the release number out of
// its banner.
func (c *Compiler) Version(ctx context.Context) (*semver.Version, error) {
	out, err := exec.CommandContext(ctx, c.Binary, "--version").Output()
	if err != nil {
		return nil, errors.Wrapf(err, "run %s --version", c.Binary)
	}
	return parseVersionBanner(string(out))
}

// CheckVersion verifies the installed solc satisfies the configured
// version constraint.
func (c *Compiler) CheckVersion(ctx context.Context) error {
	constraintText := c.Constraint
	if constraintText == "" {
		constraintText = DefaultVersionConstraint
	}
	constraint, err := semver.NewConstraint(constraintText)
	if err != nil {
		return errors.Wrapf(err, "parse solc version constraint %q", constraintText)
	}

	version, err := c.Version(ctx)
	if err != nil {
		return err
	}
	if !constraint.Check(version) {
		return errors.Newf("solc %s does not satisfy %s", version, constraintText)
	}
	return nil
}

// parseVersionBanner extracts the semver release from solc's
// --version output, e.g.
//
//	solc, the solidity compiler commandline interface
//	Version: 0.8.24+commit.e11b9ed9.Linux.g++
//
// The build metadata after '+' is not valid semver metadata (solc puts
// "g++" in it), so it is cut rather than parsed.
func parseVersionBanner(banner string) (*semver.Version, error) {
	for _, line := range strings.Split(banner, "\n") {
		line = strings.TrimSpace(line)
		rest, ok := strings.CutPrefix(line, "Version:")
		if !ok {
			continue
		}
		release, _, _ := strings.Cut(strings.TrimSpace(rest), "+")
		version, err := semver.NewVersion(release)
		if err != nil {
			return nil, errors.Wrapf(err, "parse solc version %q", release)
		}
		return version, nil
	}
	return nil, errors.Newf("no Version line in solc banner %q", banner)
}

// Compile runs solc --combined-json on the input file and parses the
// artifact. With a cache configured, a content hash of the source
// bytes, solc version, and args short-circuits the invocation.
func (c *Compiler) Compile(ctx context.Context, inputFile string) (*Artifact, error) {
	var key string
	if c.Cache != nil {
		source, err := os.ReadFile(inputFile)
		if err != nil {
			return nil, errors.Wrapf(err, "read %s for cache key", inputFile)
		}
		version, err := c.Version(ctx)
		if err != nil {
			return nil, err
		}
		key = CacheKey(source, version.String(), c.ExtraArgs)

		if data, ok, err := c.Cache.Get(key); err != nil {
			return nil, err
		} else if ok {
			if c.Logger != nil {
				c.Logger.Debugw("Artifact cache hit", "file", inputFile, "key", key)
			}
			return ParseArtifact(data)
		}
	}

	args := append([]string{"--combined-json", combinedJSONFields}, c.ExtraArgs...)
	args = append(args, inputFile)

	if c.Logger != nil {
		c.Logger.Infow("Invoking solc", "binary", c.Binary, "file", inputFile, "args", args)
	}

	cmd := exec.CommandContext(ctx, c.Binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, errors.Wrapf(err, "solc failed: %s", strings.TrimSpace(stderr.String()))
	}

	data := stdout.Bytes()
	artifact, err := ParseArtifact(data)
	if err != nil {
		return nil, err
	}

	if c.Cache != nil {
		if err := c.Cache.Put(key, data); err != nil {
			// Cache writes are best-effort; the artifact is already in hand
			if c.Logger != nil {
				c.Logger.Warnw("Artifact cache write failed", "key", key, "error", err)
			}
		}
	}
	return artifact, nil
}
