package events

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultStream is the Redis stream RedisSink appends to when none is given.
const DefaultStream = "margin:events"

// RedisSink appends each event to a Redis stream for consumers outside the
// process. Publish failures are logged; the events stay in the journal.
type RedisSink struct {
	client  redis.Cmdable
	stream  string
	timeout time.Duration
	format  AccountFormat
	log     *zap.Logger
}

// NewRedisSink returns a sink writing to stream through client. A nil format
// renders accounts as hex.
func NewRedisSink(client redis.Cmdable, stream string, format AccountFormat, log *zap.Logger) *RedisSink {
	if stream == "" {
		stream = DefaultStream
	}
	if format == nil {
		format = HexAccounts
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisSink{client: client, stream: stream, timeout: 2 * time.Second, format: format, log: log}
}

// Publish implements Sink.
func (s *RedisSink) Publish(ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: streamValues(ev, s.format),
	}).Err()
	if err != nil {
		s.log.Warn("publish event to redis",
			zap.String("stream", s.stream),
			zap.String("event_id", ev.ID.String()),
			zap.Error(err),
		)
	}
}

func streamValues(ev Event, format AccountFormat) map[string]interface{} {
	v := map[string]interface{}{
		"id":   ev.ID.String(),
		"seq":  strconv.FormatUint(ev.Seq, 10),
		"kind": string(ev.Kind),
		"at":   ev.At.Format(time.RFC3339Nano),
	}
	if ev.DemandID != "" {
		v["demand_id"] = ev.DemandID
	}
	if !ev.Account.IsZero() {
		v["account"] = format(ev.Account)
	}
	if ev.Amount != 0 {
		v["amount"] = strconv.FormatUint(ev.Amount, 10)
	}
	if ev.Pool != "" {
		v["pool"] = ev.Pool
	}
	return v
}
