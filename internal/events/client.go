package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// NATS subjects sentinel emits on.
const (
	SubjectReportGenerated = "swarm.sentinel.report.generated"
	SubjectBreach          = "swarm.sentinel.sla.breach"
	SubjectRegistered      = "swarm.agent.sentinel.registered"
)

// ReportEvent announces a finished report run.
type ReportEvent struct {
	ReportID     string `json:"report_id"`
	Policy       string `json:"policy"`
	Rows         int    `json:"rows"`
	Breached     int    `json:"breached"`
	MappingCount int    `json:"mapping_count"`
	Timestamp    string `json:"timestamp"`
}

// BreachEvent is emitted once per breached PID so downstream agents can
// escalate individually.
type BreachEvent struct {
	ReportID      string `json:"report_id"`
	PID           string `json:"pid"`
	Designer      string `json:"designer"`
	AssignedMerch string `json:"assigned_merch"`
	QueryAt       string `json:"query_at"`
	Policy        string `json:"policy"`
}

type Client struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func NewClient(url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{conn: nc, logger: logger}, nil
}

func (c *Client) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.conn.Publish(subject, payload)
}

func (c *Client) Close() {
	c.conn.Close()
}
