// Command panejump is a pane navigator for tmux: a daemon tracks panes,
// focus history and starred panes, key bindings send it actions, and a
// popup lists panes to jump to.
package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"

	"pkt.systems/psi"
	"pkt.systems/pslog"

	"github.com/b/panejump/pkg/tmux"
)

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
	ctx = pslog.ContextWithLogger(ctx, logger)
	log.SetOutput(pslog.LogLogger(logger).Writer())
	log.SetFlags(0)

	root := newRootCmd()
	root.SetArgs(os.Args[1:])

	if err := root.ExecuteContext(ctx); err != nil {
		pslog.Ctx(ctx).With("err", err).Error("panejump command failed")
		return 1
	}
	return 0
}

// rootOptions holds flags shared by every subcommand.
type rootOptions struct {
	configPath string
	session    string
}

// resolveSession returns the --session flag or the session this process
// runs in.
func (o *rootOptions) resolveSession(ctx context.Context) (string, error) {
	if o.session != "" {
		return o.session, nil
	}
	return tmux.CurrentSession(ctx, tmux.OSRunner{})
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "panejump",
		Short:         "Jump between tmux panes, back to the last one, or around starred ones",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default ~/.config/panejump/config.yaml)")
	root.PersistentFlags().StringVar(&opts.session, "session", "", "tmux session id (default: current session)")

	root.AddCommand(newDaemonCmd(opts))
	root.AddCommand(newPipeCmd(opts))
	root.AddCommand(newListCmd(opts))
	root.AddCommand(newConfigCmd(opts))

	return root
}
