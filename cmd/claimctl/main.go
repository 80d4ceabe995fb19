// Command claimctl browses claim views and runs their actions against the
// API server, or directly against the database with --local.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/garyjia/claimflow/internal/application/orchestrator"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		reportError(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// reportError prints err unless the console already showed it as a notification
func reportError(w io.Writer, err error) {
	if errors.Is(err, orchestrator.ErrNotified) {
		return
	}
	fmt.Fprintln(w, "error:", err)
}

func newRootCommand() *cobra.Command {
	var opts globalOptions
	var current *app

	root := &cobra.Command{
		Use:           "claimctl",
		Short:         "Review and act on expense claims",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			current = a
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if current == nil {
				return nil
			}
			return current.Close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "configs/config.yaml", "path to the YAML config file")
	flags.StringVar(&opts.token, "token", "", "bearer token (defaults to CLAIMFLOW_TOKEN)")
	flags.StringVar(&opts.server, "server", "", "API base URL (defaults to client.base_url)")
	flags.StringVar(&opts.lang, "lang", "", "label language, e.g. en or vi")
	flags.BoolVar(&opts.local, "local", false, "use the local database instead of the API")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging on stderr")

	appFn := func() *app { return current }
	root.AddCommand(
		newViewsCommand(appFn),
		newViewCommand(appFn),
		newActCommand(appFn),
		newDownloadCommand(appFn),
		newWatchCommand(appFn),
		newNotificationsCommand(appFn),
	)
	return root
}
