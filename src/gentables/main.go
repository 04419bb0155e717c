package main

import (
	"context"
	"flag"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	numSamples = flag.Int("samples", 2048, "samples per table, a power of two")
	debug      = flag.Bool("debug", false, "development logging")
)

func main() {
	flag.Parse()
	dir := flag.Arg(0)
	if dir == "" {
		panic("dir is not passed")
	}
	logger := newLogger(*debug)
	defer logger.Sync()

	kinds := make([]string, 0, len(spectra))
	for kind := range spectra {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	g, _ := errgroup.WithContext(context.Background())
	for _, kind := range kinds {
		kind := kind
		g.Go(func() error {
			set, err := makeSet(*numSamples, spectra[kind])
			if err != nil {
				return err
			}
			logger.Info("generated wave", zap.String("kind", kind), zap.Int("tables", len(set.Tables)))
			path := filepath.Join(dir, kind+".wt")
			if err := set.Save(path); err != nil {
				return err
			}
			logger.Info("saved wave", zap.String("path", path))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Fatal("failed to generate wavetables", zap.Error(err))
	}
	logger.Info("Successfully generated wavetables.")
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
