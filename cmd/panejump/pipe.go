package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"

	"github.com/b/panejump/pkg/daemon"
	"github.com/b/panejump/pkg/paths"
	"github.com/b/panejump/pkg/plugin"
)

const pipeTimeout = 2 * time.Second

func newPipeCmd(opts *rootOptions) *cobra.Command {
	var source string
	var private bool
	cmd := &cobra.Command{
		Use:   "pipe <action>",
		Short: "Send a named action to the daemon",
		Long: "Send a named action to the daemon. Key bindings installed by the daemon run this;\n" +
			"the daemon only acts on private messages from a key binding.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), pipeTimeout)
			defer cancel()

			session, err := opts.resolveSession(ctx)
			if err != nil {
				return err
			}
			payload := daemon.PipePayload{Name: args[0], Source: source, Private: private}
			consumed, err := sendPipe(ctx, paths.SocketPath(session), payload)
			if err != nil {
				return err
			}
			logger := pslog.Ctx(ctx).With("action", payload.Name, "source", payload.Source)
			if consumed {
				logger.Debug("pipe consumed")
			} else {
				logger.Info("pipe declined")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", plugin.PipeSourceKeybind.String(), "message source: keybind, cli or plugin")
	cmd.Flags().BoolVar(&private, "private", true, "address the message to this navigator only")
	return cmd
}

func sendPipe(ctx context.Context, socketPath string, payload daemon.PipePayload) (bool, error) {
	client, err := daemon.Dial(ctx, socketPath)
	if err != nil {
		return false, err
	}
	defer client.Close()

	type result struct {
		consumed bool
		err      error
	}
	done := make(chan result, 1)
	go func() {
		consumed, err := client.Pipe(payload)
		done <- result{consumed, err}
	}()

	select {
	case r := <-done:
		return r.consumed, r.err
	case <-ctx.Done():
		return false, fmt.Errorf("pipe %s: %w", payload.Name, ctx.Err())
	}
}
