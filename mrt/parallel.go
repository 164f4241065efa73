package mrt

import (
	"context"
	"io"
	"runtime"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

// Result is a record decoded by Parallel
type Result struct {
	Seq    int64  // record number in the stream, from 0
	Record Record // decoded record, or nil on error
	Err    error  // per-record *RecordError, or a fatal read error (always last)
}

type job struct {
	Result
	hdr  Header
	off  int64 // stream offset of hdr
	body []byte
	done chan struct{}
}

// Parallel decodes records read by r on workers goroutines (GOMAXPROCS if < 1).
// Record boundaries are found sequentially by r, decoding runs in parallel,
// and results are delivered in stream order on the returned channel, which
// is closed at the end of input, after a fatal error, or when ctx is done.
//
// r must not be used by the caller until the channel is closed.
// Pending tracks records read but not delivered yet.
func Parallel(ctx context.Context, r *Reader, workers int) (results <-chan Result, pending *xsync.Counter) {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	var (
		out   = make(chan Result, workers)
		jobs  = make(chan *job, workers)
		order = make(chan *job, 2*workers)
		wg    sync.WaitGroup
	)
	pending = xsync.NewCounter()

	// workers: decode bodies
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				rec, err := Decode(j.hdr, j.body)
				r.Stats.count(rec, err)
				if err != nil {
					j.Err = &RecordError{Header: j.hdr, Offset: j.off, Err: err}
				} else {
					j.Record = rec
				}
				j.body = nil
				close(j.done)
			}
		}()
	}

	// reader: find boundaries, feed workers and keep order
	go func() {
		defer close(order)
		defer close(jobs)

		for seq := int64(0); ; seq++ {
			off := r.Offset()
			h, body, err := r.NextRaw()
			if err == io.EOF {
				return
			}

			j := &job{off: off, done: make(chan struct{})}
			j.Seq = seq
			if err != nil {
				j.Err = err
				close(j.done)
			} else {
				j.hdr = h
				j.body = append([]byte(nil), body...) // NextRaw reuses its buffer
			}
			pending.Inc()

			select {
			case order <- j:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return // fatal
			}

			select {
			case jobs <- j:
			case <-ctx.Done():
				return
			}
		}
	}()

	// emitter: deliver in order
	go func() {
		defer close(out)
		defer wg.Wait()

		for j := range order {
			select {
			case <-j.done:
			case <-ctx.Done():
				return
			}
			pending.Dec()

			select {
			case out <- j.Result:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, pending
}
