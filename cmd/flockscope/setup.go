package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"flockscope/internal/analysis"
	"flockscope/internal/artifact"
	"flockscope/internal/config"
	"flockscope/internal/notify"
	"flockscope/internal/service"
	"flockscope/internal/store"
	"flockscope/internal/tracker"
	"flockscope/internal/video"
	"flockscope/internal/video/imageseq"
)

// loadConfig falls back to defaults when the default config file is absent.
func loadConfig() *config.Config {
	conf, err := config.LoadConfig(configFile)
	if err != nil {
		if _, statErr := os.Stat(configFile); errors.Is(statErr, os.ErrNotExist) && !rootCmd.PersistentFlags().Changed("config") {
			logrus.Warnf("config file %s not found, using defaults", configFile)
			return config.DefaultConfig()
		}
		logrus.Fatal("load config error, ", err.Error())
	}
	return conf
}

func newBackend(conf *config.Config) (analysis.Backend, error) {
	switch conf.Analysis.Backend {
	case config.BackendGocv:
		return video.NewBackend(), nil
	case config.BackendImageSeq:
		return imageseq.NewBackend(conf.Analysis.ImageFPS), nil
	}
	return nil, fmt.Errorf("unknown backend %q", conf.Analysis.Backend)
}

func newAnalyzer(ctx context.Context, conf *config.Config) (*analysis.Analyzer, error) {
	backend, err := newBackend(conf)
	if err != nil {
		return nil, err
	}

	detector, err := tracker.NewTritonDetector(conf.Triton)
	if err != nil {
		return nil, err
	}
	readyCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := detector.Ready(readyCtx); err != nil {
		logrus.WithError(err).Warnf("triton model %s is not ready yet", conf.Triton.ModelName)
	}
	logrus.Infof("tracking class %d (%s) with model %s on %s",
		conf.Analysis.TargetClass, tracker.ClassName(conf.Analysis.TargetClass),
		conf.Triton.ModelName, conf.Triton.ServerAddr)

	return analysis.NewAnalyzer(backend, tracker.NewModel(detector, conf.Tracker)), nil
}

// newService opens the record store, artifact dir and publisher. analyzer
// may be nil for commands that only manage stored records.
func newService(conf *config.Config, analyzer *analysis.Analyzer) (*service.Service, error) {
	records, err := store.Open(conf)
	if err != nil {
		return nil, fmt.Errorf("open record store failed: %w", err)
	}
	artifacts, err := artifact.NewStore(conf.ArtifactDir(), conf.S3)
	if err != nil {
		records.Close()
		return nil, err
	}
	publisher, err := notify.NewPublisher(conf.NSQ)
	if err != nil {
		records.Close()
		return nil, err
	}
	return service.New(conf, analyzer, records, artifacts, publisher), nil
}
