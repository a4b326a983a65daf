// Command sensala draws the parse tree and meaning of a discourse.
//
// The exit status is 0 on success, 2 when input or configuration is rejected,
// 3 when the interpretation service fails, 130 on interrupt and 1 otherwise.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sensala/viewer/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCommand().ExecuteContext(ctx)
	stop()

	cli.ReportError(os.Stderr, err)
	os.Exit(cli.ExitCode(err))
}

// rootCommand builds the command tree logging to stderr. The level comes from
// --verbose or SENSALA_LOG_LEVEL and is applied before any command runs.
func rootCommand() *cobra.Command {
	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.SilenceErrors = true

	verbose := root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose logging")

	attachLogger := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level, err := cli.ResolveLogLevel(os.Getenv(cli.LogLevelEnv), *verbose)
		if err != nil {
			return err
		}
		c.SetLogLevel(level)
		return attachLogger(cmd, args)
	}
	return root
}
