package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"flockscope/internal/analysis"
	"flockscope/pkg/log"
)

var (
	outputPath    string
	fpsSample     int
	confThreshold float32
	saveRecord    bool
)

var analyzeCommand = &cobra.Command{
	Use:   "analyze <video>",
	Short: "Analyze a local video and print the result as JSON",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runAnalyze(args[0])
	},
}

func init() {
	analyzeCommand.Flags().StringVarP(&outputPath, "output", "o", "", "Annotated video path (default: artifacts dir)")
	analyzeCommand.Flags().IntVar(&fpsSample, "fps-sample", analysis.DefaultFPSSample, "Requested analysis rate")
	analyzeCommand.Flags().Float32Var(&confThreshold, "conf-thresh", analysis.DefaultConfThreshold, "Detection confidence threshold")
	analyzeCommand.Flags().BoolVar(&saveRecord, "save", false, "Store the result as an analysis record")
}

func runAnalyze(input string) {
	conf := loadConfig()

	id := uuid.NewString()
	ctx := log.WithAnalysisId(context.Background(), id)

	if outputPath == "" {
		if err := os.MkdirAll(conf.ArtifactDir(), 0755); err != nil {
			logrus.WithError(err).Fatal("create artifact dir failed")
		}
		outputPath = filepath.Join(conf.ArtifactDir(), "processed_"+id+"_"+filepath.Base(input))
	}
	params := analysis.Params{
		Input:         input,
		Output:        outputPath,
		FPSSample:     fpsSample,
		ConfThreshold: confThreshold,
		TargetClass:   conf.Analysis.TargetClass,
	}

	analyzer, err := newAnalyzer(ctx, conf)
	if err != nil {
		logrus.WithError(err).Fatal("create analyzer failed")
	}
	result, err := analyzer.Analyze(ctx, params)
	if err != nil {
		logrus.WithError(err).Fatal("analyze failed")
	}

	if saveRecord {
		svc, err := newService(conf, analyzer)
		if err != nil {
			logrus.WithError(err).Fatal("create service failed")
		}
		defer svc.Close()
		if _, err := svc.Finish(ctx, id, filepath.Base(input), filepath.Base(outputPath), params, result); err != nil {
			logrus.WithError(err).Fatal("save record failed")
		}
		logrus.Infof("saved analysis %s", id)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		logrus.WithError(err).Fatal("encode result failed")
	}
}
