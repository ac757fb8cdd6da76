package main

import (
	"context"
	"flag"
	"os"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"

	"mdcore/internal/ops"
	"mdcore/internal/pipeline"
)

const journalTail = 20

func main() {
	if err := run(); err != nil {
		logs.Errorf("simulator: %+v", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to JSON config (defaults when empty)")
	dumpJournal := flag.Bool("dump-journal", false, "Write the whole journal to stdout on exit")
	flag.Parse()

	cfg := ops.Default()
	if *configPath != "" {
		loaded, err := ops.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if cfg.Profiling.ServerAddress != "" {
		profiler, err := startProfiler(cfg.Profiling)
		if err != nil {
			return err
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	runner, err := pipeline.NewRunner(cfg)
	if err != nil {
		return err
	}

	if err := runner.Start(context.Background()); err != nil {
		return err
	}

	<-sys.Shutdown()
	logs.Info("shutdown signal received")

	if err := runner.Stop(); err != nil {
		return errors.Wrap(err, "stop runner")
	}
	runner.LogStats()

	if *dumpJournal {
		if _, err := runner.Journal().WriteTo(os.Stdout); err != nil {
			return errors.Wrap(err, "dump journal")
		}
		return nil
	}

	lines := runner.Journal().Lines()
	if len(lines) > journalTail {
		lines = lines[len(lines)-journalTail:]
	}
	for _, line := range lines {
		logs.Info(line)
	}
	return nil
}

func startProfiler(cfg ops.ProfilingConfig) (*pyroscope.Profiler, error) {
	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.ApplicationName,
		ServerAddress:   cfg.ServerAddress,
		Tags: map[string]string{
			"component": "simulator",
		},
		Logger: profilerLogger{},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "start pyroscope")
	}
	return profiler, nil
}

type profilerLogger struct{}

func (profilerLogger) Infof(format string, args ...interface{}) {
	logs.Infof(format, args...)
}

func (profilerLogger) Debugf(_ string, _ ...interface{}) {}

func (profilerLogger) Errorf(format string, args ...interface{}) {
	logs.Errorf(format, args...)
}
