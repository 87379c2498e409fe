package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"

	"github.com/b/panejump/pkg/config"
	"github.com/b/panejump/pkg/daemon"
	"github.com/b/panejump/pkg/paths"
	"github.com/b/panejump/pkg/tmux"
)

func newDaemonCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Track panes for one tmux session and serve the navigator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd.Context(), opts)
		},
	}
}

func runDaemon(ctx context.Context, opts *rootOptions) error {
	configPath := opts.configPath
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	session, err := opts.resolveSession(ctx)
	if err != nil {
		return err
	}
	logger := pslog.Ctx(ctx).With("session", session)
	ctx = pslog.ContextWithLogger(ctx, logger)

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}
	if _, err := paths.EnsureRuntimeDir(); err != nil {
		return err
	}

	server := daemon.NewServer(paths.SocketPath(session), paths.PidPath(session))
	client := tmux.NewClient(session)
	host := tmux.NewHost(ctx, client, exe, server.Hide)

	coord, err := NewCoordinator(ctx, cfg, client, host)
	if err != nil {
		return err
	}
	coord.OnChange = server.BroadcastRender

	server.OnRenderNeeded = func(clientID string, width, height int) *daemon.RenderPayload {
		profile := "ANSI256"
		if info := server.ClientInfo(clientID); info != nil {
			profile = info.ColorProfile
		}
		return coord.Frame(width, height, profile)
	}
	server.OnInput = func(clientID string, input *daemon.InputPayload) {
		coord.submit(ctx, func() { coord.Key(input.Key) })
	}
	server.OnPipe = func(p *daemon.PipePayload) bool {
		var consumed bool
		coord.submit(ctx, func() { consumed = coord.Pipe(*p) })
		return consumed
	}

	if err := server.Start(); err != nil {
		return err
	}
	defer server.Stop()
	logger.Info("daemon started", "socket", server.SocketPath(), "config", configPath, "poll_interval", cfg.PollInterval.String())

	reload := make(chan config.Config)
	if changed, err := config.Watch(ctx, configPath); err != nil {
		logger.Warn("config watch disabled", "error", err)
	} else {
		go forwardReloads(ctx, configPath, changed, reload)
	}

	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()
	coord.Run(ctx, ticker.C, reload)

	logger.Info("daemon stopped")
	return nil
}

// forwardReloads loads the config after each change notification and hands
// valid configs to the loop.
func forwardReloads(ctx context.Context, path string, changed <-chan struct{}, reload chan<- config.Config) {
	logger := pslog.Ctx(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-changed:
			cfg, err := config.Load(path)
			if err != nil {
				logger.Warn("config reload failed", "error", err)
				continue
			}
			select {
			case reload <- cfg:
			case <-ctx.Done():
				return
			}
		}
	}
}
