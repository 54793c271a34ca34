package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the htdecomp CLI with arguments from os.Args, logging to
// stderr at info level, or debug level with --verbose.
func Execute(ctx context.Context) error {
	_, root := newApp(os.Stderr)
	return root.ExecuteContext(ctx)
}

// newApp builds the root command with the --verbose flag, which lowers the
// log level before the config is loaded and search hooks are installed.
func newApp(w io.Writer) (*CLI, *cobra.Command) {
	var verbose bool
	c := New(w, LogInfo)
	root := c.RootCommand()
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	loadConfig := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(LogDebug)
		}
		return loadConfig(cmd, args)
	}
	return c, root
}
