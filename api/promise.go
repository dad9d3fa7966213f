package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	ftdc "github.com/frozenpine/ftdc4go"
	"github.com/frozenpine/ftdc4go/codec"
)

// WireImage is one record's encoded wire image.
type WireImage []byte

// FeedData constrains the value types carried by async results: decoded
// records, encoded images and validation violations.
type FeedData interface {
	ftdc.Record | WireImage | codec.Violation
}

// CallbackFn consumes a settled result, usually by draining GetData().
type CallbackFn[T FeedData] func(Result[T]) error

// Promise is a future result callback interface
// Then(), Catch(), Finally() can be called in any order sequence
//
// Await() must be last one in the call chain,
// in order to active an result watcher goroutine
// to execute callback functions
type Promise[T FeedData] interface {
	Await(context.Context, time.Duration) error
	Then(CallbackFn[T]) Promise[T]
	Catch(CallbackFn[T]) Promise[T]
	Finally(CallbackFn[T]) Promise[T]
}

type PromiseStage uint8

const (
	PromiseInflight PromiseStage = iota // Inflight
	PromiseAwait                        // Await
	PromiseThen                         // Then
	PromiseCatch                        // Catch
	PromiseFinal                        // Final
)

func (stage PromiseStage) String() string {
	switch stage {
	case PromiseInflight:
		return "Inflight"
	case PromiseAwait:
		return "Await"
	case PromiseThen:
		return "Then"
	case PromiseCatch:
		return "Catch"
	case PromiseFinal:
		return "Final"
	default:
		return "Unknown"
	}
}

// FlowResultReq marks results fed by an unbounded flow instead of a
// numbered request.
const FlowResultReq int64 = -1

type ExecError struct {
	execCode int
}

func (err *ExecError) Error() string {
	return fmt.Sprintf("request execution failed[%d]", err.execCode)
}

type PromiseError struct {
	stage PromiseStage
	err   error
}

func (err *PromiseError) Error() string {
	return errors.Wrapf(
		err.err,
		"error occurred in stage %s",
		err.stage,
	).Error()
}

func (err *PromiseError) Unwrap() error { return err.err }

// Result extends Promise with the settled request's outcome. AppendResult
// and SetFailure are the producer side, everything else the consumer's.
type Result[T FeedData] interface {
	Promise[T]

	IsBatch() bool
	GetRequestID() int64
	GetExecCode() int
	GetFailure() error
	GetError() error
	GetData() <-chan *T

	AppendResult(int64, *T, bool)
	SetFailure(int64, error)
}

type baseResult[T FeedData] struct {
	self Result[T]

	data chan *T

	finish sync.WaitGroup

	successFn CallbackFn[T]
	failFn    CallbackFn[T]
	finalFn   CallbackFn[T]
}

func (r *baseResult[T]) init(self Result[T]) {
	r.self = self
	r.data = make(chan *T, 1)
}

func (r *baseResult[T]) GetData() <-chan *T {
	return r.data
}

func (r *baseResult[T]) IsBatch() bool { return false }

func (r *baseResult[T]) Then(fn CallbackFn[T]) Promise[T] {
	if r.self == nil {
		panic("Self pointer missing")
	}

	r.successFn = fn

	return r.self
}

func (r *baseResult[T]) Catch(fn CallbackFn[T]) Promise[T] {
	if r.self == nil {
		panic("Self pointer missing")
	}

	r.failFn = fn

	return r.self
}

func (r *baseResult[T]) Finally(fn CallbackFn[T]) Promise[T] {
	if r.self == nil {
		panic("Self pointer missing")
	}

	r.finalFn = fn

	return r.self
}

type rsp struct {
	failure    error
	status     bool
	notifyFlag chan struct{}
	notifyOnce sync.Once
}

type BatchResult[T FeedData] struct {
	baseResult[T]

	requestIDList       []int64
	execCodeList        []int
	promiseErrChainList [][]PromiseError
	rspCache            map[int64]*rsp
}

func (r *BatchResult[T]) waitRsp(reqID int64) {
	cache, exist := r.rspCache[reqID]

	if !exist {
		return
	}

	<-cache.notifyFlag
}

func (r *BatchResult[T]) IsBatch() bool { return true }

func (r *BatchResult[T]) GetRequestID() int64 {
	size := len(r.requestIDList)
	if size == 0 {
		return -1
	}

	return r.requestIDList[size-1]
}

func (r *BatchResult[T]) GetFailure() error {
	var failure error

	for _, cache := range r.rspCache {
		if cache.failure != nil {
			failure = cache.failure
		}
	}

	return failure
}

func (r *BatchResult[T]) AppendRequest(reqID int64, execCode int) {
	r.requestIDList = append(r.requestIDList, reqID)
	r.execCodeList = append(r.execCodeList, execCode)
	r.promiseErrChainList = append(r.promiseErrChainList, []PromiseError{})

	if execCode == 0 {
		r.rspCache[reqID] = &rsp{
			notifyFlag: make(chan struct{}),
		}
	}
}

func (r *BatchResult[T]) GetExecCode() int {
	rtn := 0

	for _, code := range r.execCodeList {
		rtn += code
	}

	return rtn
}

func (r *BatchResult[T]) GetError() (err error) {
	for _, errChain := range r.promiseErrChainList {
		for idx := range errChain {
			stageErr := errChain[idx]

			if err == nil {
				err = &stageErr
			} else {
				err = errors.Wrap(err, stageErr.Error())
			}
		}
	}

	return
}

func (r *BatchResult[T]) SetFailure(reqID int64, failure error) {
	if failure == nil {
		return
	}

	if cache, exist := r.rspCache[reqID]; exist && cache.failure == nil {
		cache.failure = failure
	}
}

func (r *BatchResult[T]) AppendResult(reqID int64, v *T, isLast bool) {
	cache, exist := r.rspCache[reqID]

	if !exist {
		logger.Printf(
			"Appended RequestID[%d] not exist in BatchResult", reqID,
		)

		return
	}

	cache.notifyOnce.Do(func() { close(cache.notifyFlag) })

	if v != nil {
		r.data <- v
	}

	cache.status = isLast

	all := true
	for _, cache := range r.rspCache {
		all = all && cache.status
	}

	if all {
		close(r.data)
	}
}

func (r *BatchResult[T]) Await(ctx context.Context, timeout time.Duration) error {
	r.finish.Add(len(r.requestIDList))

	for idx, reqID := range r.requestIDList {
		go func(idx int, reqID int64) {
			r.waitRsp(reqID)

			defer r.finish.Done()

			execCode := r.execCodeList[idx]
			cache := r.rspCache[reqID]

			if execCode != 0 {
				r.promiseErrChainList[idx] = append(
					r.promiseErrChainList[idx],
					PromiseError{
						stage: PromiseInflight,
						err:   &ExecError{execCode: execCode},
					},
				)

				goto CATCH
			}

			if cache.failure == nil {
				goto THEN
			} else {
				r.promiseErrChainList[idx] = append(
					r.promiseErrChainList[idx],
					PromiseError{
						stage: PromiseAwait,
						err:   cache.failure,
					},
				)

				goto CATCH
			}

		THEN:
			if r.successFn != nil {
				if err := r.successFn(r.self); err != nil {
					r.promiseErrChainList[idx] = append(
						r.promiseErrChainList[idx],
						PromiseError{
							stage: PromiseThen,
							err:   err,
						},
					)

					goto CATCH
				}
			}

			goto FINAL
		CATCH:
			if r.failFn != nil {
				if err := r.failFn(r.self); err != nil {
					r.promiseErrChainList[idx] = append(
						r.promiseErrChainList[idx],
						PromiseError{
							stage: PromiseCatch,
							err:   err,
						},
					)
				}
			}

			goto FINAL
		FINAL:
			if r.finalFn != nil {
				if err := r.finalFn(r.self); err != nil {
					r.promiseErrChainList[idx] = append(
						r.promiseErrChainList[idx],
						PromiseError{
							stage: PromiseFinal,
							err:   err,
						},
					)
				}
			}
		}(idx, reqID)
	}

	r.finish.Wait()

	return r.GetError()
}

func NewBatchResult[T FeedData]() *BatchResult[T] {
	result := BatchResult[T]{
		rspCache: make(map[int64]*rsp),
	}
	result.init(&result)

	return &result
}

type SingleResult[T FeedData] struct {
	baseResult[T]

	promiseErrChain []PromiseError
	requestID       int64
	execCode        int
	failure         error
	notifyFlag      chan struct{}
	notifyOnce      sync.Once
}

func (r *SingleResult[T]) waitRsp() {
	<-r.notifyFlag
}

func (r *SingleResult[T]) GetRequestID() int64 {
	return r.requestID
}

func (r *SingleResult[T]) GetFailure() error {
	return r.failure
}

func (r *SingleResult[T]) GetExecCode() int {
	return r.execCode
}

func (r *SingleResult[T]) GetError() (err error) {
	for idx := range r.promiseErrChain {
		e := r.promiseErrChain[idx]

		if err == nil {
			err = &e
		} else {
			err = errors.Wrap(err, e.Error())
		}
	}

	return err
}

func (r *SingleResult[T]) AppendResult(reqID int64, v *T, isLast bool) {
	if reqID != r.requestID {
		logger.Printf(
			"Appended RequestID[%d] miss match with Result[%d]",
			reqID, r.requestID,
		)

		return
	}

	r.notifyOnce.Do(func() { close(r.notifyFlag) })

	if v != nil {
		r.data <- v
	}

	if isLast {
		close(r.data)
	}
}

func (r *SingleResult[T]) SetFailure(_ int64, failure error) {
	r.failure = failure
}

func (r *SingleResult[T]) awaitLoop() {
	r.waitRsp()

	defer r.finish.Done()

	if r.execCode != 0 {
		r.promiseErrChain = append(
			r.promiseErrChain,
			PromiseError{
				stage: PromiseInflight,
				err:   &ExecError{execCode: r.execCode},
			},
		)

		goto CATCH
	}

	if r.failure == nil {
		goto THEN
	} else {
		r.promiseErrChain = append(
			r.promiseErrChain,
			PromiseError{
				stage: PromiseAwait,
				err:   r.failure,
			},
		)
		goto CATCH
	}

THEN:
	if r.successFn != nil {
		if err := r.successFn(r.self); err != nil {
			r.promiseErrChain = append(
				r.promiseErrChain,
				PromiseError{
					stage: PromiseThen,
					err:   err,
				},
			)

			goto CATCH
		}
	}

	goto FINAL

CATCH:
	if r.failFn != nil {
		if err := r.failFn(r.self); err != nil {
			r.promiseErrChain = append(
				r.promiseErrChain,
				PromiseError{
					stage: PromiseCatch,
					err:   err,
				},
			)
		}
	}

	goto FINAL

FINAL:
	if r.finalFn != nil {
		if err := r.finalFn(r.self); err != nil {
			r.promiseErrChain = append(
				r.promiseErrChain,
				PromiseError{
					stage: PromiseFinal,
					err:   err,
				},
			)
		}
	}
}

func (r *SingleResult[T]) Await(ctx context.Context, timeout time.Duration) error {
	r.finish.Add(1)

	go r.awaitLoop()

	r.finish.Wait()

	return r.GetError()
}

func NewSingleResult[T FeedData](reqID int64, execCode int) *SingleResult[T] {
	result := SingleResult[T]{
		requestID:  reqID,
		execCode:   execCode,
		notifyFlag: make(chan struct{}),
	}

	result.init(&result)

	if execCode != 0 {
		close(result.notifyFlag)
		close(result.data)
	}

	return &result
}

// FlowResult settles per record instead of per request: Await starts the
// callbacks and returns without blocking, the success callback keeps
// consuming GetData() until the producing flow closes it.
type FlowResult[T FeedData] struct {
	SingleResult[T]
}

func (r *FlowResult[T]) Await(ctx context.Context, timeout time.Duration) error {
	r.finish.Add(1)

	go r.awaitLoop()

	if r.GetExecCode() != 0 {
		r.finish.Wait()
	}

	return r.GetError()
}

func NewFlowResult[T FeedData](execCode int) *FlowResult[T] {
	result := FlowResult[T]{
		SingleResult[T]{
			requestID:  FlowResultReq,
			execCode:   execCode,
			notifyFlag: make(chan struct{}),
		},
	}
	result.init(&result)

	if execCode != 0 {
		close(result.notifyFlag)
		close(result.data)
	}

	return &result
}
