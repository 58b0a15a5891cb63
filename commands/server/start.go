package server

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iov-one/jobchain/errors"
	"github.com/iov-one/jobchain/x/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tendermint/tendermint/abci/server"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
	"golang.org/x/sync/errgroup"
)

const (
	flagBind      = "bind"
	flagOps       = "ops"
	flagLogLevel  = "log_level"
	flagDBBackend = "db_backend"
	flagDebug     = "debug"

	shutdownTimeout = 5 * time.Second
)

// parseFlags overrides the configuration with the command line flags.
func parseFlags(conf Config, args []string) (Config, error) {
	startFlags := flag.NewFlagSet("start", flag.ContinueOnError)
	startFlags.StringVar(&conf.ABCIAddress, flagBind, conf.ABCIAddress, "address server listens on")
	startFlags.StringVar(&conf.OpsAddress, flagOps, conf.OpsAddress, "address of the operations http server, empty to disable")
	startFlags.StringVar(&conf.LogLevel, flagLogLevel, conf.LogLevel, "one of debug, info, error, none")
	startFlags.StringVar(&conf.DBBackend, flagDBBackend, conf.DBBackend, "goleveldb or memdb")
	startFlags.BoolVar(&conf.Debug, flagDebug, conf.Debug, "call stack returned on error")
	if err := startFlags.Parse(args); err != nil {
		return conf, errors.Wrap(errors.ErrInput, err.Error())
	}
	return conf, conf.Validate()
}

// AppGenerator lets us lazily initialize app, using home dir
// and logger potentially initialized with other flags.
// An empty home means an in memory database.
type AppGenerator func(home string, logger log.Logger, debug bool, metrics *utils.Metrics) (abci.Application, error)

// StartCmd initializes the application, and runs the abci and operations
// servers until the process is interrupted.
func StartCmd(gen AppGenerator, logger log.Logger, home string, args []string) error {
	conf, err := LoadConfig(ConfigPath(home))
	if err != nil {
		return err
	}
	conf, err = parseFlags(conf, args)
	if err != nil {
		return err
	}
	logger, err = FilterLogger(logger, conf.LogLevel)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics, err := utils.NewMetrics(reg)
	if err != nil {
		return err
	}

	dbHome := home
	if conf.DBBackend == DBBackendMemory {
		dbHome = ""
	}
	// Generate the app in the proper dir
	app, err := gen(dbHome, logger, conf.Debug, metrics)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)
	go func() {
		select {
		case s := <-sig:
			logger.Info("Shutting down", "signal", s.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return run(ctx, logger, conf, app, reg)
}

// run serves the application until ctx is cancelled or one of the servers
// fails.
func run(ctx context.Context, logger log.Logger, conf Config, app abci.Application, gatherer prometheus.Gatherer) error {
	t := newTracker(app)

	svr, err := server.NewServer(conf.ABCIAddress, "socket", t)
	if err != nil {
		return errors.Wrap(err, "create abci listener")
	}
	svr.SetLogger(logger.With("module", "abci-server"))
	logger.Info("Starting ABCI app", "bind", conf.ABCIAddress)
	if err := svr.Start(); err != nil {
		return errors.Wrap(err, "start abci server")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		return svr.Stop()
	})

	if conf.OpsAddress != "" {
		ops := &http.Server{
			Addr:    conf.OpsAddress,
			Handler: opsRouter(t, gatherer),
		}
		g.Go(func() error {
			logger.Info("Starting operations server", "bind", conf.OpsAddress)
			if err := ops.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return errors.Wrap(err, "operations server")
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return ops.Shutdown(shutdownCtx)
		})
	}
	return g.Wait()
}
