package service

import "sync/atomic"

func waitBoolFlag(flag *atomic.Bool, v bool) <-chan struct{} {
	ch := make(chan struct{})

	go func() {
		for !flag.CompareAndSwap(v, v) {
		}
		ch <- struct{}{}
	}()

	return ch
}

// FeedGate tracks hub lifecycle states. Callers park on a state, and
// may register a redo hook to be replayed when the state is reached
// again after a drop. Hook registration is not synchronized, register
// before the hub serves traffic.
type FeedGate struct {
	isAttached     atomic.Bool
	reqAfterAttach []func() int

	isReady       atomic.Bool
	reqAfterReady []func() int
}

func (gate *FeedGate) WaitAttached() {
	<-waitBoolFlag(&gate.isAttached, true)
}

func (gate *FeedGate) WaitAttachedAndDo(fn func() int) int {
	gate.WaitAttached()

	gate.reqAfterAttach = append(gate.reqAfterAttach, fn)

	return fn()
}

func (gate *FeedGate) IsAttached() bool {
	return gate.isAttached.Load()
}

func (gate *FeedGate) SetAttached(v bool) bool {
	return gate.isAttached.CompareAndSwap(!v, v)
}

func (gate *FeedGate) RedoAttached() (rtn int) {
	for _, fn := range gate.reqAfterAttach {
		rtn = fn()

		if rtn != 0 {
			break
		}
	}

	return
}

func (gate *FeedGate) WaitReady() {
	<-waitBoolFlag(&gate.isReady, true)
}

func (gate *FeedGate) WaitReadyAndDo(fn func() int) int {
	gate.WaitReady()

	gate.reqAfterReady = append(gate.reqAfterReady, fn)

	return fn()
}

func (gate *FeedGate) IsReady() bool {
	return gate.isReady.Load()
}

func (gate *FeedGate) SetReady(v bool) bool {
	return gate.isReady.CompareAndSwap(!v, v)
}

func (gate *FeedGate) RedoReady() (rtn int) {
	for _, fn := range gate.reqAfterReady {
		rtn = fn()

		if rtn != 0 {
			break
		}
	}

	return
}
