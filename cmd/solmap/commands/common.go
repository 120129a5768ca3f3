package commands

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"github.com/teranos/solmap/config"
	"github.com/teranos/solmap/contract"
	"github.com/teranos/solmap/errors"
	"github.com/teranos/solmap/logger"
	"github.com/teranos/solmap/solc"
)

// newCompiler builds a solc.Compiler from the loaded configuration,
// opening the artifact cache when enabled. The returned cleanup is
// always safe to call.
func newCompiler(cfg *config.Config) (*solc.Compiler, func(), error) {
	compiler, err := solc.NewCompiler(cfg.Solc.Binary, cfg.Solc.Args)
	if err != nil {
		return nil, func() {}, err
	}
	compiler.Constraint = cfg.Solc.VersionConstraint
	compiler.Logger = logger.Logger

	cleanup := func() {}
	if cfg.Cache.Enabled {
		if err := os.MkdirAll(filepath.Dir(cfg.Cache.Path), 0o755); err != nil {
			return nil, cleanup, errors.Wrap(err, "create cache directory")
		}
		cache, err := solc.OpenCache(cfg.Cache.Path, logger.Logger)
		if err != nil {
			return nil, cleanup, err
		}
		compiler.Cache = cache
		cleanup = func() { cache.Close() }
	}
	return compiler, cleanup, nil
}

// loadContract compiles inputFile and builds the requested contract
// (or the file's last deployable one when name is empty).
func loadContract(ctx context.Context, cfg *config.Config, inputFile, name string) (*contract.Contract, func(), error) {
	compiler, cleanup, err := newCompiler(cfg)
	if err != nil {
		return nil, cleanup, err
	}

	if err := compiler.CheckVersion(ctx); err != nil {
		return nil, cleanup, err
	}

	artifact, err := compiler.Compile(ctx, inputFile)
	if err != nil {
		return nil, cleanup, err
	}

	c, err := contract.New(artifact, inputFile, name, os.ReadFile, logger.Logger)
	if err != nil {
		return nil, cleanup, err
	}
	return c, cleanup, nil
}

// parseAddress accepts decimal and 0x-prefixed hex instruction
// addresses.
func parseAddress(s string) (int, error) {
	address, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse address %q", s)
	}
	if address < 0 {
		return 0, errors.Newf("address %q is negative", s)
	}
	return int(address), nil
}
