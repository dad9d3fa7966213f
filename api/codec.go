// Package api wraps the record codec in promise-style results, so
// decode, encode and validation work can be dispatched without blocking
// and consumed through Then/Catch/Finally chains.
package api

import (
	"context"
	"log"
	"sync/atomic"

	ftdc "github.com/frozenpine/ftdc4go"
	"github.com/frozenpine/ftdc4go/codec"
)

var logger = log.New(
	log.Default().Writer(),
	"[ftdc4go.api] ", log.Default().Flags(),
)

// Submission exec codes reported through Result.GetExecCode.
const (
	execSucceed       = 0
	execUnknownSchema = -1
	execBadRequest    = -2
)

// AsyncCodec dispatches codec work against a frozen registry. Results
// settle on their own goroutines, one AsyncCodec may serve any number
// of concurrent callers.
type AsyncCodec struct {
	registry *ftdc.Registry
	codec    *codec.RecordCodec

	requestID atomic.Int64
}

func NewAsyncCodec(registry *ftdc.Registry, cfg codec.Config) *AsyncCodec {
	return &AsyncCodec{
		registry: registry,
		codec:    codec.NewRecordCodec(cfg),
	}
}

// Codec exposes the underlying synchronous codec.
func (api *AsyncCodec) Codec() *codec.RecordCodec { return api.codec }

func (api *AsyncCodec) nextRequestID() int64 {
	return api.requestID.Add(1)
}

// AsyncDecode parses one wire image against the named schema.
func (api *AsyncCodec) AsyncDecode(schemaName string, data []byte) Result[ftdc.Record] {
	reqID := api.nextRequestID()

	schema, err := api.registry.Get(schemaName)
	if err != nil {
		result := NewSingleResult[ftdc.Record](reqID, execUnknownSchema)
		result.SetFailure(reqID, err)

		return result
	}

	result := NewSingleResult[ftdc.Record](reqID, execSucceed)

	go func() {
		record, err := api.codec.Decode(schema, data)

		if err != nil {
			result.SetFailure(reqID, err)
			result.AppendResult(reqID, nil, true)

			return
		}

		result.AppendResult(reqID, &record, true)
	}()

	return result
}

// AsyncDecodeBatch parses a batch of wire images against the named
// schema. Each image settles as its own request inside the batch, one
// corrupt image fails its request without poisoning the rest.
func (api *AsyncCodec) AsyncDecodeBatch(schemaName string, frames [][]byte) Result[ftdc.Record] {
	result := NewBatchResult[ftdc.Record]()

	schema, err := api.registry.Get(schemaName)
	if err != nil {
		reqID := api.nextRequestID()

		result.AppendRequest(reqID, execUnknownSchema)

		return result
	}

	requestIDs := make([]int64, len(frames))

	for idx := range frames {
		requestIDs[idx] = api.nextRequestID()
		result.AppendRequest(requestIDs[idx], execSucceed)
	}

	go func() {
		for idx, frame := range frames {
			reqID := requestIDs[idx]

			record, err := api.codec.Decode(schema, frame)
			if err != nil {
				result.SetFailure(reqID, err)
				result.AppendResult(reqID, nil, true)

				continue
			}

			result.AppendResult(reqID, &record, true)
		}
	}()

	return result
}

// AsyncEncode renders record as its wire image for the named schema.
func (api *AsyncCodec) AsyncEncode(schemaName string, record ftdc.Record) Result[WireImage] {
	reqID := api.nextRequestID()

	schema, err := api.registry.Get(schemaName)
	if err != nil {
		result := NewSingleResult[WireImage](reqID, execUnknownSchema)
		result.SetFailure(reqID, err)

		return result
	}

	if record == nil {
		result := NewSingleResult[WireImage](reqID, execBadRequest)

		return result
	}

	result := NewSingleResult[WireImage](reqID, execSucceed)

	go func() {
		data, err := api.codec.Encode(schema, record)

		if err != nil {
			result.SetFailure(reqID, err)
			result.AppendResult(reqID, nil, true)

			return
		}

		image := WireImage(data)

		result.AppendResult(reqID, &image, true)
	}()

	return result
}

// AsyncValidate preflights record against the named schema, streaming
// each violation as one data element. A clean record settles through
// the success path with no data.
func (api *AsyncCodec) AsyncValidate(schemaName string, record ftdc.Record) Result[codec.Violation] {
	reqID := api.nextRequestID()

	schema, err := api.registry.Get(schemaName)
	if err != nil {
		result := NewSingleResult[codec.Violation](reqID, execUnknownSchema)
		result.SetFailure(reqID, err)

		return result
	}

	result := NewSingleResult[codec.Violation](reqID, execSucceed)

	go func() {
		violations := api.codec.Validate(schema, record)

		if len(violations) == 0 {
			result.AppendResult(reqID, nil, true)

			return
		}

		for idx := range violations {
			result.AppendResult(reqID, &violations[idx], idx == len(violations)-1)
		}
	}()

	return result
}

// DecodeFlow decodes every frame arriving on frames until the channel
// closes or ctx is cancelled. Corrupt frames are dropped with a log
// line and an error count, the flow keeps running.
func (api *AsyncCodec) DecodeFlow(
	ctx context.Context, schemaName string, frames <-chan []byte,
) Result[ftdc.Record] {
	schema, err := api.registry.Get(schemaName)
	if err != nil {
		result := NewFlowResult[ftdc.Record](execUnknownSchema)
		result.SetFailure(FlowResultReq, err)

		return result
	}

	result := NewFlowResult[ftdc.Record](execSucceed)

	go func() {
		defer func() {
			result.notifyOnce.Do(func() { close(result.notifyFlag) })
			close(result.data)
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case frame, ok := <-frames:
				if !ok {
					return
				}

				record, err := api.codec.Decode(schema, frame)
				if err != nil {
					logger.Printf(
						"Decode flow[%s] dropped frame: %v", schemaName, err,
					)

					continue
				}

				result.AppendResult(FlowResultReq, &record, false)
			}
		}
	}()

	return result
}
