package notify

import (
	"encoding/json"
	"fmt"

	"github.com/nsqio/go-nsq"

	"flockscope/internal/config"
)

// Message announces a completed analysis on the configured topic.
type Message struct {
	AnalysisId         string `json:"analysis_id"`
	Timestamp          int64  `json:"timestamp"`
	Output             string `json:"output"`
	ObjectPath         string `json:"object_path,omitempty"`
	FramesProcessed    int    `json:"total_frames_processed"`
	UniqueBirdsTracked int    `json:"unique_birds_tracked"`
}

type Publisher interface {
	Publish(msg *Message) error
	Stop()
}

type nopPublisher struct{}

func (nopPublisher) Publish(*Message) error { return nil }
func (nopPublisher) Stop()                  {}

type NSQPublisher struct {
	topic    string
	producer *nsq.Producer
}

func NewPublisher(conf config.NSQConfig) (Publisher, error) {
	if !conf.Enabled {
		return nopPublisher{}, nil
	}
	producer, err := nsq.NewProducer(conf.NSQDAddr, nsq.NewConfig())
	if err != nil {
		return nil, fmt.Errorf("create NSQ producer failed: %w", err)
	}
	producer.SetLoggerLevel(nsq.LogLevelWarning)
	return &NSQPublisher{topic: conf.Topic, producer: producer}, nil
}

func (p *NSQPublisher) Publish(msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return p.producer.Publish(p.topic, data)
}

func (p *NSQPublisher) Stop() {
	p.producer.Stop()
}
