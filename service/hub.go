package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"

	"github.com/frozenpine/msgqueue/channel"
	"github.com/frozenpine/msgqueue/core"
	"github.com/gofrs/uuid"
	"github.com/pkg/errors"

	ftdc "github.com/frozenpine/ftdc4go"
	"github.com/frozenpine/ftdc4go/codec"
)

var ErrHubClosed = errors.New("feed hub closed")

type recordFlow struct {
	pipe atomic.Pointer[channel.MemoChannel[*ftdc.Record]]
}

// FeedHub fans decoded records out to in-process subscribers, one
// record flow per schema. Flows are created lazily on first publish
// or subscribe.
type FeedHub struct {
	ctx    context.Context
	cancel context.CancelFunc

	registry *ftdc.Registry
	codec    *codec.RecordCodec

	flows sync.Map

	gate  FeedGate
	pumps sync.WaitGroup
}

func NewFeedHub(
	ctx context.Context, registry *ftdc.Registry, cfg codec.Config,
) *FeedHub {
	if ctx == nil {
		ctx = context.Background()
	}

	hub := FeedHub{
		registry: registry,
		codec:    codec.NewRecordCodec(cfg),
	}
	hub.ctx, hub.cancel = context.WithCancel(ctx)

	return &hub
}

// Gate exposes the hub lifecycle gate.
func (hub *FeedHub) Gate() *FeedGate { return &hub.gate }

// Statics exposes the decode counters of the hub's codec.
func (hub *FeedHub) Statics() *ftdc.CodecStatics {
	return hub.codec.Statics()
}

func (hub *FeedHub) flow(schema string) (*channel.MemoChannel[*ftdc.Record], error) {
	if !hub.registry.Exists(schema) {
		return nil, errors.Wrapf(
			ftdc.ErrUnknownSchema, "no flow for schema %q", schema,
		)
	}

	v, _ := hub.flows.LoadOrStore(schema, &recordFlow{})
	flow := v.(*recordFlow)

	if pipe := flow.pipe.Load(); pipe != nil {
		return pipe, nil
	}

	pipe := channel.NewMemoChannel[*ftdc.Record](hub.ctx, schema, 0)

	if !flow.pipe.CompareAndSwap(nil, pipe) {
		pipe.Release()

		return flow.pipe.Load(), nil
	}

	return pipe, nil
}

// Subscribe attaches subscriber to schema's record flow. The returned
// cancel func releases the subscription.
func (hub *FeedHub) Subscribe(schema, subscriber string) (<-chan *ftdc.Record, func() error, error) {
	pipe, err := hub.flow(schema)
	if err != nil {
		return nil, nil, err
	}

	idt := uuid.NewV3(
		uuid.NamespaceDNS,
		fmt.Sprintf("%s@%s", subscriber, schema),
	).String()

	subID, ch := pipe.Subscribe(idt, core.Quick)

	subscriberGauge.WithLabelValues(schema).Inc()

	cancel := func() error {
		subscriberGauge.WithLabelValues(schema).Dec()

		return pipe.UnSubscribe(subID)
	}

	return ch, cancel, nil
}

// Publish pushes one decoded record onto its schema's flow.
func (hub *FeedHub) Publish(schema string, record *ftdc.Record) error {
	pipe, err := hub.flow(schema)
	if err != nil {
		return err
	}

	if err := pipe.Publish(record, -1); err != nil {
		return errors.WithMessagef(err, "publish to flow %q failed", schema)
	}

	recordCounter.WithLabelValues(schema).Inc()

	return nil
}

// Attach pumps framed records from source onto the schema flows until
// ctx or the hub is cancelled, or the stream ends. Frames failing
// decode are dropped with a log line, framing errors kill the pump.
func (hub *FeedHub) Attach(ctx context.Context, source io.Reader) error {
	if source == nil {
		return errors.New("nil feed source")
	}

	select {
	case <-hub.ctx.Done():
		return ErrHubClosed
	default:
	}

	if ctx == nil {
		ctx = hub.ctx
	}

	reader := NewFrameReader(source)

	hub.pumps.Add(1)
	hub.gate.SetAttached(true)

	go func() {
		defer hub.pumps.Done()

		if err := hub.pump(ctx, reader); err != nil {
			log.Printf("Feed pump stopped: %+v", err)
		}

		hub.gate.SetAttached(false)
	}()

	return nil
}

func (hub *FeedHub) pump(ctx context.Context, reader *FrameReader) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-hub.ctx.Done():
			return ErrHubClosed
		default:
		}

		frame, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}

			return err
		}

		frameSizeHistogram.WithLabelValues(frame.Schema).Observe(
			float64(len(frame.Body)),
		)

		schema, err := hub.registry.Get(frame.Schema)
		if err != nil {
			decodeErrCounter.WithLabelValues(frame.Schema).Inc()
			log.Printf("Feed frame dropped: %+v", err)

			continue
		}

		record, err := hub.codec.Decode(schema, frame.Body)
		if err != nil {
			decodeErrCounter.WithLabelValues(frame.Schema).Inc()
			log.Printf("Feed frame dropped: %+v", err)

			continue
		}

		if err := hub.Publish(frame.Schema, &record); err != nil {
			return err
		}
	}
}

// Join blocks until every attached pump has stopped, either on stream
// end or on cancellation. Replay tools join before stopping the hub.
func (hub *FeedHub) Join() {
	hub.pumps.Wait()
}

// Stop cancels every flow and waits for attached pumps to settle.
func (hub *FeedHub) Stop() {
	hub.cancel()

	hub.pumps.Wait()

	hub.flows.Range(func(_, v any) bool {
		if pipe := v.(*recordFlow).pipe.Load(); pipe != nil {
			pipe.Release()
		}

		return true
	})
}
