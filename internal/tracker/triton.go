package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Trendyol/go-triton-client/base"
	tritonGrpc "github.com/Trendyol/go-triton-client/client/grpc"

	"flockscope/internal/analysis"
)

// BGRCanvas is a canvas that can export its pixels as packed 8-bit BGR rows,
// the layout the detection model expects.
type BGRCanvas interface {
	analysis.Canvas
	BGRBytes() ([]byte, error)
}

type TritonConfig struct {
	ServerAddr   string `yaml:"serverAddr"`
	ModelName    string `yaml:"modelName"`
	ModelVersion string `yaml:"modelVersion"`
	// TimeoutSec bounds one inference call.
	TimeoutSec int `yaml:"timeoutSec"`
}

// TritonDetector sends frames to a Triton served detection model whose
// DETECTIONS output is a flat [N, 6] float32 tensor of
// x1, y1, x2, y2, confidence, class_id.
type TritonDetector struct {
	client       base.Client
	modelName    string
	modelVersion string
	timeout      time.Duration
}

func NewTritonDetector(conf TritonConfig) (*TritonDetector, error) {
	client, err := tritonGrpc.NewClient(
		conf.ServerAddr,
		false, // verbose logging
		30,    // connection timeout in seconds
		30,    // network timeout in seconds
		false, // use ssl
		true,  // insecure connection
		nil,   // existing grpc connection
		nil,   // logger
	)
	if err != nil {
		return nil, fmt.Errorf("create triton client: %w", err)
	}
	return newTritonDetector(client, conf), nil
}

func newTritonDetector(client base.Client, conf TritonConfig) *TritonDetector {
	version := conf.ModelVersion
	if version == "" {
		version = "1"
	}
	timeout := conf.TimeoutSec
	if timeout <= 0 {
		timeout = 30
	}
	return &TritonDetector{
		client:       client,
		modelName:    conf.ModelName,
		modelVersion: version,
		timeout:      time.Duration(timeout) * time.Second,
	}
}

// Ready checks that the server is live and the model is loaded.
func (d *TritonDetector) Ready(ctx context.Context) error {
	if isLive, err := d.client.IsServerLive(ctx, nil); err != nil {
		return err
	} else if !isLive {
		return errors.New("triton server is not live")
	}

	if isReady, err := d.client.IsServerReady(ctx, nil); err != nil {
		return err
	} else if !isReady {
		return errors.New("triton server is not ready")
	}

	if isReady, err := d.client.IsModelReady(ctx, d.modelName, d.modelVersion, nil); err != nil {
		return err
	} else if !isReady {
		return fmt.Errorf("triton model %s is not ready", d.modelName)
	}
	return nil
}

func (d *TritonDetector) Detect(ctx context.Context, canvas analysis.Canvas) ([]Detection, error) {
	bgr, ok := canvas.(BGRCanvas)
	if !ok {
		return nil, fmt.Errorf("canvas %T has no BGR pixel export", canvas)
	}
	frameBytes, err := bgr.BGRBytes()
	if err != nil {
		return nil, fmt.Errorf("export frame pixels: %w", err)
	}
	width, height := canvas.Size()

	frameInput := tritonGrpc.NewInferInput("FRAME", "BYTES", []int64{int64(height), int64(width), 3}, nil)
	if err := frameInput.SetData(frameBytes, true); err != nil {
		return nil, fmt.Errorf("failed to set FRAME input data: %w", err)
	}
	frameInput.SetDatatype("UINT8")

	outputs := []base.InferOutput{
		tritonGrpc.NewInferOutput("DETECTIONS", map[string]any{"binary_data": false}),
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	response, err := d.client.Infer(
		ctx,
		d.modelName,
		d.modelVersion,
		[]base.InferInput{frameInput},
		outputs,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	raw, err := response.AsFloat32Slice("DETECTIONS")
	if err != nil {
		return nil, fmt.Errorf("failed to get detection data: %w", err)
	}
	return parseDetections(raw), nil
}

func parseDetections(raw []float32) []Detection {
	dets := make([]Detection, 0, len(raw)/6)
	for i := 0; i+5 < len(raw); i += 6 {
		dets = append(dets, Detection{
			Box: analysis.Box{
				X1: int(raw[i]),
				Y1: int(raw[i+1]),
				X2: int(raw[i+2]),
				Y2: int(raw[i+3]),
			},
			Confidence: raw[i+4],
			ClassID:    int(raw[i+5]),
		})
	}
	return dets
}
