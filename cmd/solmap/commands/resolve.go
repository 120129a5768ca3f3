package commands

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/teranos/solmap/config"
	"github.com/teranos/solmap/contract"
	"github.com/teranos/solmap/errors"
	"github.com/teranos/solmap/logger"
)

// ResolveCmd resolves an instruction address to its source location
var ResolveCmd = &cobra.Command{
	Use:   "resolve <file.sol>",
	Short: "Resolve an instruction address to its source location",
	Long: `Compile a Solidity file and resolve a bytecode instruction address
back to the source file, line, and code range that produced it.

Examples:
  solmap resolve Token.sol --address 0x120
  solmap resolve Token.sol --address 288 --contract Token
  solmap resolve Token.sol --address 0x16 --constructor
  solmap resolve Token.sol --address 0x120 --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

var (
	resolveAddressFlag     string
	resolveContractFlag    string
	resolveConstructorFlag bool
	resolveWatchFlag       bool
)

func init() {
	ResolveCmd.Flags().StringVarP(&resolveAddressFlag, "address", "a", "", "Instruction address (decimal or 0x hex)")
	ResolveCmd.Flags().StringVarP(&resolveContractFlag, "contract", "c", "", "Contract name (default: last deployable contract in the file)")
	ResolveCmd.Flags().BoolVar(&resolveConstructorFlag, "constructor", false, "Resolve against constructor bytecode instead of runtime")
	ResolveCmd.Flags().BoolVarP(&resolveWatchFlag, "watch", "w", false, "Recompile and re-resolve when the source file changes")
	ResolveCmd.MarkFlagRequired("address")
}

func runResolve(cmd *cobra.Command, args []string) error {
	inputFile := args[0]

	address, err := parseAddress(resolveAddressFlag)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := resolveOnce(cmd, cfg, inputFile, address); err != nil {
		if !resolveWatchFlag {
			return err
		}
		// In watch mode a failing first pass is reported, not fatal:
		// the next edit may fix it
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
	}

	if resolveWatchFlag {
		return watchAndResolve(cmd, cfg, inputFile, address)
	}
	return nil
}

func resolveOnce(cmd *cobra.Command, cfg *config.Config, inputFile string, address int) error {
	c, cleanup, err := loadContract(cmd.Context(), cfg, inputFile, resolveContractFlag)
	defer cleanup()
	if err != nil {
		return err
	}

	loc, err := c.SourceInfo(address, resolveConstructorFlag)
	if err != nil {
		return err
	}
	printLocation(cmd, c, address, loc)
	return nil
}

func printLocation(cmd *cobra.Command, c *contract.Contract, address int, loc *contract.SourceLocation) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Contract: %s\n", c.Name)
	fmt.Fprintf(out, "Address:  0x%x\n", address)
	fmt.Fprintf(out, "File:     %s\n", loc.Filename)
	if loc.LineNumber != nil {
		fmt.Fprintf(out, "Line:     %d\n", *loc.LineNumber)
	} else {
		fmt.Fprintf(out, "Line:     - (compiler-generated code)\n")
	}
	fmt.Fprintf(out, "Mapping:  %q\n", loc.RawToken)
	fmt.Fprintf(out, "Source:\n%s\n", loc.Snippet)
}

// watchAndResolve re-runs the resolution whenever the source file is
// written, debouncing rapid editor writes.
func watchAndResolve(cmd *cobra.Command, cfg *config.Config, inputFile string, address int) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create fsnotify watcher")
	}
	defer watcher.Close()

	if err := watcher.Add(inputFile); err != nil {
		return errors.Wrapf(err, "watch %s", inputFile)
	}

	logger.Infow("Watching for changes", "file", inputFile)

	const debounce = 500 * time.Millisecond
	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("Watcher error", "error", err)
		case <-fire:
			if err := resolveOnce(cmd, cfg, inputFile, address); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
			}
			// Editors that replace the file drop the watch; re-add
			if err := watcher.Add(inputFile); err != nil {
				logger.Warnw("Re-adding watch failed", "file", inputFile, "error", err)
			}
		}
	}
}
