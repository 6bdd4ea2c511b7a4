package server

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/iov-one/custody/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendermint/tendermint/abci/server"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	flagBind    = "bind"
	flagDebug   = "debug"
	flagMetrics = "metrics"
)

// AppGenerator lets us lazily initialize app, using the database
// location and a logger potentially initialized with other flags.
// The returned gatherer, if not nil, is served on the metrics address.
type AppGenerator func(dbPath string, logger log.Logger, debug bool) (abci.Application, prometheus.Gatherer, error)

// parseStartFlags applies the command line on top of conf.
func parseStartFlags(conf Config, args []string) (Config, error) {
	fs := flag.NewFlagSet("start", flag.ContinueOnError)
	fs.StringVar(&conf.Bind, flagBind, conf.Bind, "address server listens on")
	fs.BoolVar(&conf.Debug, flagDebug, conf.Debug, "call stack returned on error")
	fs.StringVar(&conf.MetricsAddr, flagMetrics, conf.MetricsAddr, "address prometheus metrics are served on, disabled if empty")
	if err := fs.Parse(args); err != nil {
		return conf, errors.Wrap(errors.ErrInput, err.Error())
	}
	return conf, conf.Validate()
}

// StartCmd loads the configuration from home, initializes the
// application and serves it over the ABCI socket until interrupted.
func StartCmd(gen AppGenerator, logger log.Logger, home string, args []string) error {
	conf, err := LoadConfig(filepath.Join(home, ConfigFile))
	if err != nil {
		return err
	}
	conf, err = parseStartFlags(conf, args)
	if err != nil {
		return err
	}
	logger, err = FilterLogger(logger, conf.LogLevel)
	if err != nil {
		return err
	}

	app, metrics, err := gen(conf.DBPath(home), logger, conf.Debug)
	if err != nil {
		return err
	}

	if conf.MetricsAddr != "" && metrics != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(metrics, promhttp.HandlerOpts{}))
		go func() {
			logger.Info("Serving metrics", "addr", conf.MetricsAddr)
			if err := http.ListenAndServe(conf.MetricsAddr, mux); err != nil {
				logger.Error("Metrics server stopped", "err", err)
			}
		}()
	}

	logger.Info("Starting ABCI app", "bind", conf.Bind)
	svr, err := server.NewServer(conf.Bind, "socket", app)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot create listener: %s", err)
	}
	svr.SetLogger(logger.With("module", "abci-server"))
	if err := svr.Start(); err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot start server: %s", err)
	}

	// Wait for an interrupt
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	s := <-sig
	logger.Info("Stopping ABCI app", "signal", s.String())
	return svr.Stop()
}
