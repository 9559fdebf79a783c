package metrics

import (
	"runtime"
	"time"
)

// CollectRuntime samples Go runtime stats into gauges every interval until
// the returned stop function is called. Metric names are prefixed, e.g.
// prefix "api" yields api_goroutines, api_heap_alloc_bytes, and so on.
func (r *Registry) CollectRuntime(prefix string, interval time.Duration) func() {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	goroutines := r.Gauge(prefix+"_goroutines", "Number of live goroutines")
	heapAlloc := r.Gauge(prefix+"_heap_alloc_bytes", "Bytes of allocated heap objects")
	heapObjects := r.Gauge(prefix+"_heap_objects", "Number of allocated heap objects")
	gcRuns := r.Gauge(prefix+"_gc_runs_total", "Completed GC cycles")

	sample := func() {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		goroutines.Set(int64(runtime.NumGoroutine()))
		heapAlloc.Set(int64(ms.HeapAlloc))
		heapObjects.Set(int64(ms.HeapObjects))
		gcRuns.Set(int64(ms.NumGC))
	}
	sample()

	stop := make(chan struct{})
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				sample()
			case <-stop:
				return
			}
		}
	}()
	return func() { close(stop) }
}
