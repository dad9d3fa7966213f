package sinker

import (
	"context"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"

	ftdc "github.com/frozenpine/ftdc4go"
)

// DefaultChanBase prefixes pub/sub channel names, one channel per
// schema: {base}.{schema}.
const DefaultChanBase = "ftdc.feed"

// RecordPublisher relays decoded records to redis pub/sub channels
// and NATS subjects. Either transport may be absent, at least one is
// required. The channel name doubles as the NATS subject.
type RecordPublisher struct {
	rdb        *redis.Client
	nc         *nats.Conn
	base       string
	marshaller func(ftdc.Record) ([]byte, error)
}

func NewRecordPublisher(
	rdb *redis.Client, nc *nats.Conn, base string,
	format MsgFormat, enc func(ftdc.Record) ([]byte, error),
) (*RecordPublisher, error) {
	if rdb == nil && nc == nil {
		return nil, errors.New("no pub/sub transport")
	}

	if base == "" {
		base = DefaultChanBase
	}

	marshaller, err := Marshaller(format, enc)
	if err != nil {
		return nil, err
	}

	return &RecordPublisher{
		rdb:        rdb,
		nc:         nc,
		base:       base,
		marshaller: marshaller,
	}, nil
}

// Channel returns the pub/sub channel name carrying schema's records.
func (pub *RecordPublisher) Channel(schema string) string {
	return strings.Join([]string{pub.base, schema}, ".")
}

// Publish marshals record once and publishes it on schema's channel
// over every configured transport.
func (pub *RecordPublisher) Publish(
	ctx context.Context, schema string, record ftdc.Record,
) error {
	buffer, err := pub.marshaller(record)
	if err != nil {
		return errors.WithMessagef(
			err, "marshal record for %q failed", schema,
		)
	}

	channel := pub.Channel(schema)

	if pub.rdb != nil {
		if cmd := pub.rdb.Publish(ctx, channel, buffer); cmd.Err() != nil {
			return errors.WithMessage(cmd.Err(), "publish to redis failed")
		}
	}

	if pub.nc != nil {
		if err := pub.nc.Publish(channel, buffer); err != nil {
			return errors.WithMessage(err, "publish to nats failed")
		}
	}

	return nil
}
