// Package publish emits reconstructed trip logbooks to NATS so downstream
// consumers (dashboards, analytics loaders) can pick them up without
// touching the export tables.
package publish

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/theoremus-urban-solutions/gtfsrt-logbook/logbook"
)

// PublisherMetrics is the slice of the metrics collector the publisher
// needs; nil disables instrumentation.
type PublisherMetrics interface {
	NATSPublishedInc()
	NATSPublishErrInc()
}

// NATSPublisher publishes one message per reconstructed trip.
type NATSPublisher struct {
	nc            *nats.Conn
	subjectPrefix string
	metrics       PublisherMetrics
}

// NewNATSPublisher connects to the NATS server at url. subjectPrefix is
// prepended to every subject (default "logbook").
func NewNATSPublisher(url, subjectPrefix string, m PublisherMetrics) (*NATSPublisher, error) {
	if subjectPrefix == "" {
		subjectPrefix = "logbook"
	}
	nc, err := nats.Connect(url,
		nats.Name("gtfsrt-logbook"),
		nats.DisconnectHandler(func(_ *nats.Conn) {
			log.Printf("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Printf("nats reconnected")
		}),
	)
	if err != nil {
		return nil, err
	}
	return &NATSPublisher{nc: nc, subjectPrefix: subjectPrefix, metrics: m}, nil
}

// Close drains and closes the connection.
func (p *NATSPublisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
		p.nc.Close()
	}
}

// RecordMessage mirrors logbook.TripRecord for the wire.
type RecordMessage struct {
	StopID            string `json:"stopId"`
	StopSequence      int    `json:"stopSequence"`
	FirstSeenEstimate int64  `json:"firstSeenEstimate"`
	LastSeenEstimate  int64  `json:"lastSeenEstimate"`
	FinalizedTime     int64  `json:"finalizedTime,omitempty"`
	Status            string `json:"status"`
}

// TripMessage is one reconstructed trip history.
type TripMessage struct {
	FeedID  string          `json:"feedId"`
	TripID  string          `json:"tripId"`
	Records []RecordMessage `json:"records"`
}

// PublishLogbook publishes every trip in the logbook on
// {prefix}.{feed}.{trip}. Publishing continues past individual failures;
// the first error is returned after the loop.
func (p *NATSPublisher) PublishLogbook(feedID string, lb logbook.Logbook) error {
	var firstErr error
	for _, tripID := range lb.Trips() {
		msg := TripMessage{FeedID: feedID, TripID: tripID}
		for _, rec := range lb[tripID] {
			msg.Records = append(msg.Records, RecordMessage{
				StopID:            rec.StopID,
				StopSequence:      rec.StopSequence,
				FirstSeenEstimate: rec.FirstSeenEstimate,
				LastSeenEstimate:  rec.LastSeenEstimate,
				FinalizedTime:     rec.FinalizedTime,
				Status:            string(rec.Status),
			})
		}
		b, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("marshal trip %s: %w", tripID, err)
		}
		subject := fmt.Sprintf("%s.%s.%s", p.subjectPrefix, subjectToken(feedID), subjectToken(tripID))
		if err := p.nc.Publish(subject, b); err != nil {
			if p.metrics != nil {
				p.metrics.NATSPublishErrInc()
			}
			if firstErr == nil {
				firstErr = fmt.Errorf("publish %s: %w", subject, err)
			}
			continue
		}
		if p.metrics != nil {
			p.metrics.NATSPublishedInc()
		}
	}
	return firstErr
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS token cannot contain spaces, '>', '*', or '.'
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
