package main

import (
	"bufio"
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jinjor/wavetable-osc/src/audio"
	"github.com/jinjor/wavetable-osc/src/wavetable"
)

var (
	tablePath = flag.String("table", "work/saw.wt", "wavetable set generated by gentables")
	freq      = flag.Float64("freq", audio.DefaultConfig().Freq, "initial frequency in Hz")
	gain      = flag.Float64("gain", audio.DefaultConfig().Gain, "initial gain, 0 ~ 1")
	rate      = flag.Int("rate", audio.DefaultConfig().SampleRate, "sample rate in Hz")
	debug     = flag.Bool("debug", false, "development logging")
)

func main() {
	flag.Parse()
	logger := newLogger(*debug)
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Fatal("error", zap.Error(err))
	}
	logger.Info("main() ended.")
}

func run(logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	set, err := wavetable.Load(*tablePath)
	if err != nil {
		return err
	}
	osc, err := set.NewOsc()
	if err != nil {
		return err
	}
	logger.Info("loaded wavetables", zap.String("path", *tablePath), zap.Int("tables", osc.NumTables()))

	cfg := audio.DefaultConfig()
	cfg.Freq = *freq
	cfg.Gain = *gain
	cfg.SampleRate = *rate
	a, err := audio.NewAudio(osc, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("failed to close audio", zap.Error(err))
		}
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signalCh)
	go func() {
		select {
		case sig := <-signalCh:
			logger.Info("Caught signal: shutting down...", zap.Stringer("signal", sig))
			cancel()
		case <-ctx.Done():
		}
	}()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Start(ctx)
	})
	go func() {
		// stdin cannot be interrupted; the reader is left behind on shutdown
		if err := receiveCommands(ctx, os.Stdin, a, logger); err != nil {
			logger.Error("failed to read commands", zap.Error(err))
		}
	}()
	return g.Wait()
}

func receiveCommands(ctx context.Context, r io.Reader, a *audio.Audio, logger *zap.Logger) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		line := scanner.Text()
		command, err := audio.ParseCommand(line)
		if err != nil {
			logger.Warn("invalid command", zap.String("line", line), zap.Error(err))
			continue
		}
		if len(command) == 0 {
			continue
		}
		if err := a.Apply(command); err != nil {
			logger.Warn("failed to apply command", zap.String("line", line), zap.Error(err))
			continue
		}
		logger.Info("received", zap.Strings("command", command))
	}
	return scanner.Err()
}

func newLogger(debug bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
