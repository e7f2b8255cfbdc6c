package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"
	"golang.org/x/sync/errgroup"

	"riskgate/internal/admin"
	"riskgate/internal/engine"
	"riskgate/internal/gateway"
	"riskgate/internal/obs"
	"riskgate/internal/ops"
	"riskgate/pkg/tcp"
	"riskgate/pkg/uds"
)

type flags struct {
	configPath string
	envPath    string
	network    string
	address    string
	socketPath string
	adminAddr  string
	pyroscope  string
}

func main() {
	var f flags
	flag.StringVar(&f.configPath, "config", "", "Path to JSON config")
	flag.StringVar(&f.envPath, "env", "", "Path to .env file (default: ./.env when present)")
	flag.StringVar(&f.network, "network", "", "Listen network: tcp or unix")
	flag.StringVar(&f.address, "address", "", "TCP listen host (default: all interfaces)")
	flag.StringVar(&f.socketPath, "socket", "", "Unix socket path for -network=unix")
	flag.StringVar(&f.adminAddr, "admin", "", "Admin HTTP address, e.g. :8081 (empty disables)")
	flag.StringVar(&f.pyroscope, "pyroscope", "", "Pyroscope server address (empty disables profiling)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [<buy_threshold> <sell_threshold> <port>]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := loadConfig(f, flag.Args())
	if err != nil {
		logs.Errorf("invalid configuration, err: %+v", err)
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		select {
		case <-sys.Shutdown():
			stop()
		case <-ctx.Done():
		}
	}()

	if err := run(ctx, cfg); err != nil {
		logs.Errorf("risk gateway stopped, err: %+v", err)
		os.Exit(1)
	}
	logs.Info("risk gateway stopped")
}

// loadConfig layers the JSON file, the environment, explicit flags and the positional form.
func loadConfig(f flags, args []string) (ops.Config, error) {
	cfg, err := ops.Load(f.configPath)
	if err != nil {
		return ops.Config{}, err
	}
	if err := cfg.ApplyEnv(f.envPath); err != nil {
		return ops.Config{}, err
	}

	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "network":
			cfg.Listen.Network = f.network
		case "address":
			cfg.Listen.Address = f.address
		case "socket":
			cfg.Listen.Path = f.socketPath
		case "admin":
			cfg.Admin.Address = f.adminAddr
		case "pyroscope":
			cfg.Profiling.ServerAddress = f.pyroscope
		}
	})

	if err := cfg.ApplyArgs(args); err != nil {
		return ops.Config{}, err
	}
	return cfg, cfg.Validate()
}

func run(ctx context.Context, cfg ops.Config) error {
	if cfg.Profiling.ServerAddress != "" {
		profiler, err := startProfiler(cfg.Profiling)
		if err != nil {
			return errors.Wrap(err, "start profiler")
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	ln, err := listen(cfg)
	if err != nil {
		return errors.Wrap(err, "listen").With("network", cfg.Listen.Network).With("address", cfg.ListenAddress())
	}

	metrics := obs.NewMetrics()
	eng := engine.New(engine.Config{
		Limits:  cfg.Risk,
		Metrics: metrics,
	})
	srv, err := gateway.NewServer(gateway.Config{
		Engine:        eng,
		Listener:      ln,
		QueueCapacity: cfg.Queue.Capacity,
		Metrics:       metrics,
	})
	if err != nil {
		_ = ln.Close()
		return err
	}

	logs.Infof("risk gateway listening, network: %s, address: %s, buy threshold: %d, sell threshold: %d",
		cfg.Listen.Network, ln.Addr(), cfg.Risk.BuyThreshold, cfg.Risk.SellThreshold)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})

	if cfg.Admin.Address != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			obs.NewCollector(metrics, srv.QueueLen),
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		adminSrv := admin.NewServer(srv, reg)
		g.Go(func() error {
			return adminSrv.Run(gctx, cfg.Admin.Address)
		})
	}

	return g.Wait()
}

func listen(cfg ops.Config) (net.Listener, error) {
	if cfg.Listen.Network == ops.NetworkUnix {
		srv, err := uds.NewServer(cfg.Listen.Path)
		if err != nil {
			return nil, err
		}
		return srv, srv.Listen()
	}
	srv, err := tcp.NewServer(cfg.ListenAddress())
	if err != nil {
		return nil, err
	}
	return srv, srv.Listen()
}

func startProfiler(cfg ops.ProfilingConfig) (*pyroscope.Profiler, error) {
	return pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.ApplicationName,
		ServerAddress:   cfg.ServerAddress,
		Tags:            cfg.Tags,
		Logger:          profilerLogger{},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
		},
	})
}

// profilerLogger forwards profiler errors and drops its chatter.
type profilerLogger struct{}

func (profilerLogger) Infof(string, ...interface{})  {}
func (profilerLogger) Debugf(string, ...interface{}) {}
func (profilerLogger) Errorf(format string, args ...interface{}) {
	logs.Errorf("pyroscope: "+format, args...)
}
