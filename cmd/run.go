package cmd

import (
	"context"
	"errors"
	"hotbackup/internal/daemon"
	"hotbackup/internal/logger"
	"hotbackup/internal/metrics"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownGrace = 5 * time.Second

func runDaemon(cmd *cobra.Command, hot, backup string) error {
	defer logger.Sync()

	env, err := prepare(afero.NewOsFs(), hot, backup)
	if err != nil {
		return err
	}

	repo, closeHistory := openHistory()
	defer closeHistory()

	m := metrics.New()
	opts := []daemon.Option{daemon.WithMetrics(m)}
	if repo != nil {
		opts = append(opts, daemon.WithRecorder(repo))
	}

	runner := daemon.NewRunner(cfg, env.paths, env.queue, env.lock, opts...)
	if err := runner.Start(context.Background()); err != nil {
		return err
	}

	var (
		srv    *daemon.Server
		stopCh <-chan struct{}
	)
	if cfg.APIPort > 0 {
		srvOpts := []daemon.ServerOption{daemon.WithMetricsEndpoint(m)}
		if repo != nil {
			srvOpts = append(srvOpts, daemon.WithHistory(repo))
		}

		srv = daemon.NewServer(runner, env.reader, cfg.APIPort, srvOpts...)
		srv.Start()
		stopCh = srv.StopCh()
	}

	var menuDone chan error
	if !noMenu {
		menuDone = make(chan error, 1)
		go func() {
			menuDone <- runMenu(cmd.InOrStdin(), cmd.OutOrStdout(), env.reader)
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

wait:
	for {
		select {
		case sig := <-sigCh:
			logger.Log.Info("shutting down",
				zap.String("signal", sig.String()))
			break wait
		case <-stopCh:
			logger.Log.Info("stop requested via API")
			break wait
		case err := <-menuDone:
			if err == nil {
				logger.Log.Info("exit requested from menu")
				break wait
			}
			logger.Log.Info("menu input closed, running until stopped",
				zap.Error(err))
			menuDone = nil
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DrainTimeout+shutdownGrace)
	defer cancel()

	var errs []error
	if srv != nil {
		errs = append(errs, srv.Stop(ctx))
	}
	errs = append(errs, runner.Stop(ctx))

	return errors.Join(errs...)
}
