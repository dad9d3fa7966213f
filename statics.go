package ftdc

import "sync/atomic"

// CodecStatics counts codec traffic with atomic counters so hot paths
// never contend on a lock. Safe for concurrent use.
type CodecStatics struct {
	encodeCount uint64
	decodeCount uint64
	errorCount  uint64
}

func (stat *CodecStatics) EncodeInc() uint64 {
	return atomic.AddUint64(&stat.encodeCount, 1)
}

func (stat *CodecStatics) DecodeInc() uint64 {
	return atomic.AddUint64(&stat.decodeCount, 1)
}

func (stat *CodecStatics) ErrorInc() uint64 {
	return atomic.AddUint64(&stat.errorCount, 1)
}

// Snapshot reads all counters at once. Values are individually atomic,
// not a consistent cut, which is fine for monitoring.
func (stat *CodecStatics) Snapshot() (encode, decode, errCnt uint64) {
	return atomic.LoadUint64(&stat.encodeCount),
		atomic.LoadUint64(&stat.decodeCount),
		atomic.LoadUint64(&stat.errorCount)
}
