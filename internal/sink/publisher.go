package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nsqio/go-nsq"

	"gridsight/internal/traffic"
)

type NSQConfig struct {
	NSQDAddr string `yaml:"nsqdAddr"`
	Topic    string `yaml:"topic"`
}

func DefaultNSQConfig() NSQConfig {
	return NSQConfig{
		NSQDAddr: "127.0.0.1:4150",
		Topic:    "traffic_results",
	}
}

// Publisher pushes finalized results onto an NSQ topic for downstream
// consumers (alerting, aggregation).
type Publisher struct {
	producer *nsq.Producer
	topic    string
}

func NewPublisher(conf NSQConfig) (*Publisher, error) {
	producer, err := nsq.NewProducer(conf.NSQDAddr, nsq.NewConfig())
	if err != nil {
		return nil, fmt.Errorf("create NSQ producer failed: %w", err)
	}
	return &Publisher{
		producer: producer,
		topic:    conf.Topic,
	}, nil
}

func (p *Publisher) Store(_ context.Context, res *traffic.AnalysisResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return p.producer.Publish(p.topic, data)
}

func (p *Publisher) Close() {
	p.producer.Stop()
}
