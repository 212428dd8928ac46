package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/freightsim/core/geo"
	"github.com/kilianp07/freightsim/core/model"
	"github.com/kilianp07/freightsim/core/report"
	"github.com/kilianp07/freightsim/infra/logger"
)

// FreightMessage is a freight result joined back to its coordinates.
type FreightMessage struct {
	RunID string `json:"run_id"`
	model.FreightResult
	Pickup   *geo.Coordinate `json:"pickup,omitempty"`
	Delivery *geo.Coordinate `json:"delivery,omitempty"`
}

// VehicleMessage is a vehicle aggregate of a run.
type VehicleMessage struct {
	RunID string `json:"run_id"`
	model.VehicleAggregate
}

// ResultPublisher exports run results over MQTT for visualization clients.
//
// Topics, relative to the configured prefix:
//
//	runs/<run_id>/summary
//	runs/<run_id>/freights/<freight_id>
//	runs/<run_id>/vehicles/<vehicle_id>
type ResultPublisher struct {
	cli        pahoClient
	prefix     string
	qos        byte
	retain     bool
	maxRetries int
	backoff    time.Duration
	logger     logger.Logger
}

// NewResultPublisher connects to the broker.
func NewResultPublisher(cfg Config) (*ResultPublisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected to %s", cfg.Broker)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(paho.Client, *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return &ResultPublisher{
		cli:        c,
		prefix:     cfg.TopicPrefix,
		qos:        cfg.QoS,
		retain:     cfg.Retain,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		logger:     log,
	}, nil
}

// PublishRun publishes the summary, every freight result and every vehicle
// aggregate of rec. freights supplies the coordinates joined to the results.
func (p *ResultPublisher) PublishRun(ctx context.Context, rec report.RunRecord, freights []model.Freight) error {
	byID := make(map[string]model.Freight, len(freights))
	for _, f := range freights {
		byID[f.ID] = f
	}
	base := fmt.Sprintf("%s/runs/%s", p.prefix, rec.RunID)
	if err := p.publishJSON(ctx, base+"/summary", rec.Summary); err != nil {
		return err
	}
	for _, r := range rec.Freights {
		msg := FreightMessage{RunID: rec.RunID, FreightResult: r}
		if f, ok := byID[r.FreightID]; ok {
			pickup, delivery := f.Pickup, f.Delivery
			msg.Pickup, msg.Delivery = &pickup, &delivery
		}
		if err := p.publishJSON(ctx, base+"/freights/"+r.FreightID, msg); err != nil {
			return err
		}
	}
	for _, v := range rec.Vehicles {
		if err := p.publishJSON(ctx, base+"/vehicles/"+v.VehicleID, VehicleMessage{RunID: rec.RunID, VehicleAggregate: v}); err != nil {
			return err
		}
	}
	p.logger.Infof("published run %s (%d freights, %d vehicles)", rec.RunID, len(rec.Freights), len(rec.Vehicles))
	return nil
}

func (p *ResultPublisher) publishJSON(ctx context.Context, topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		token := p.cli.Publish(topic, p.qos, p.retain, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			return nil
		}
		p.logger.Errorf("publish attempt %d to %s failed: %v", attempt+1, topic, publishErr)
		if attempt < p.maxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	return fmt.Errorf("publish %s: %w", topic, publishErr)
}

// Close gracefully closes the MQTT connection.
func (p *ResultPublisher) Close() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
