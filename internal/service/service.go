package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"flockscope/internal/analysis"
	"flockscope/internal/artifact"
	"flockscope/internal/config"
	"flockscope/internal/notify"
	"flockscope/internal/store"
	"flockscope/pkg/log"
)

const outputPrefix = "processed_"

// Request describes one uploaded video to analyze.
type Request struct {
	Filename      string
	Body          io.Reader
	FPSSample     int
	ConfThreshold float32
}

type Service struct {
	conf      *config.Config
	analyzer  *analysis.Analyzer
	records   store.Store
	artifacts *artifact.Store
	publisher notify.Publisher
	sem       *semaphore.Weighted
}

func New(conf *config.Config, analyzer *analysis.Analyzer, records store.Store,
	artifacts *artifact.Store, publisher notify.Publisher) *Service {
	maxConcurrent := conf.Analysis.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Service{
		conf:      conf,
		analyzer:  analyzer,
		records:   records,
		artifacts: artifacts,
		publisher: publisher,
		sem:       semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

func (s *Service) Records() store.Store {
	return s.records
}

func (s *Service) Artifacts() *artifact.Store {
	return s.artifacts
}

// Analyze saves the upload, runs one session over it and stores the record.
// The input file is removed whether or not the session succeeds. A failed
// session leaves no artifact behind, only a failed record.
func (s *Service) Analyze(ctx context.Context, req *Request) (*store.Record, error) {
	id := uuid.NewString()
	ctx = log.WithAnalysisId(ctx, id)
	logger := log.GetLogger(ctx)

	inputName := id + "_" + sanitizeFilename(req.Filename)
	outputName := outputPrefix + inputName
	params := analysis.Params{
		Input:         s.artifacts.Path(inputName),
		Output:        s.artifacts.Path(outputName),
		FPSSample:     req.FPSSample,
		ConfThreshold: req.ConfThreshold,
		TargetClass:   s.conf.Analysis.TargetClass,
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	if err := saveUpload(params.Input, req.Body); err != nil {
		return nil, fmt.Errorf("save upload failed: %w", err)
	}
	defer os.Remove(params.Input)

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	start := time.Now()
	result, err := s.analyzer.Analyze(ctx, params)
	s.sem.Release(1)
	if err != nil {
		if rmErr := os.RemoveAll(params.Output); rmErr != nil {
			logger.WithError(rmErr).Warnf("remove partial output %s failed", outputName)
		}
		s.saveFailed(id, req.Filename, params, err)
		return nil, err
	}
	logger.Infof("analysis finished in %v", time.Since(start))

	return s.Finish(ctx, id, req.Filename, outputName, params, result)
}

// Finish stores a completed result, mirrors the artifact and announces it.
func (s *Service) Finish(ctx context.Context, id, input, outputName string,
	params analysis.Params, result *analysis.Result) (*store.Record, error) {
	logger := log.GetLogger(ctx)

	record := &store.Record{
		Id:            id,
		Status:        store.StatusCompleted,
		Input:         input,
		Output:        outputName,
		FPSSample:     params.FPSSample,
		ConfThreshold: params.ConfThreshold,
		CreateTime:    time.Now(),
		Result:        (*store.ResultData)(result),
	}

	if s.artifacts.UploadEnabled() {
		ts := record.CreateTime
		objectPath := fmt.Sprintf("/%04d/%02d/%02d/%s/%s",
			ts.Year(), ts.Month(), ts.Day(), id, outputName)
		uctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		p, err := s.artifacts.Upload(uctx, outputName, objectPath)
		cancel()
		if err != nil {
			logger.WithError(err).Errorf("upload %s failed", outputName)
		} else {
			record.ObjectPath = p
		}
	}

	if s.records != nil {
		if err := s.records.Save(record); err != nil {
			return nil, fmt.Errorf("save record failed: %w", err)
		}
	}

	msg := &notify.Message{
		AnalysisId:         id,
		Timestamp:          record.CreateTime.UnixNano(),
		Output:             outputName,
		ObjectPath:         record.ObjectPath,
		FramesProcessed:    result.TotalFramesProcessed,
		UniqueBirdsTracked: result.UniqueBirdsTracked,
	}
	if err := s.publisher.Publish(msg); err != nil {
		logger.WithError(err).Error("publish analysis event failed")
	}

	return record, nil
}

func (s *Service) saveFailed(id, input string, params analysis.Params, cause error) {
	if s.records == nil {
		return
	}
	record := &store.Record{
		Id:            id,
		Status:        store.StatusFailed,
		Input:         input,
		FPSSample:     params.FPSSample,
		ConfThreshold: params.ConfThreshold,
		Error:         cause.Error(),
		CreateTime:    time.Now(),
	}
	if err := s.records.Save(record); err != nil {
		logrus.WithError(err).Errorf("save failed record %s failed", id)
	}
}

// Delete removes a record and its artifact. It reports false for an
// unknown id.
func (s *Service) Delete(id string) (bool, error) {
	record, err := s.records.Get(id)
	if err != nil {
		return false, err
	}
	if record == nil {
		return false, nil
	}
	if record.Output != "" {
		if err := s.artifacts.Remove(record.Output); err != nil {
			logrus.WithError(err).Warnf("remove artifact %s failed", record.Output)
		}
	}
	if err := s.records.Delete(id); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) Close() {
	s.publisher.Stop()
	if s.records != nil {
		if err := s.records.Close(); err != nil {
			logrus.WithError(err).Error("close record store failed")
		}
	}
}

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == "/" || name == "" {
		return "upload.mp4"
	}
	return name
}

func saveUpload(path string, body io.Reader) error {
	if body == nil {
		return errors.New("empty upload")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
