package fn

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
)

func TestResultUnwrap(t *testing.T) {
	v, err := Ok(7).Unwrap()
	if err != nil || v != 7 {
		t.Errorf("got (%d, %v), want (7, nil)", v, err)
	}

	boom := errors.New("boom")
	_, err = Err[int](boom).Unwrap()
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestFromPair(t *testing.T) {
	if r := FromPair(1, nil); r.IsErr() {
		t.Error("nil error should be Ok")
	}
	if r := FromPair(0, errors.New("x")); r.IsOk() {
		t.Error("non-nil error should be Err")
	}
}

func TestMapFilterUnique(t *testing.T) {
	got := Map([]int{1, 2, 3}, func(v int) string { return strconv.Itoa(v * 2) })
	if len(got) != 3 || got[1] != "4" {
		t.Errorf("Map = %v", got)
	}

	odd := Filter([]int{1, 2, 3, 4}, func(v int) bool { return v%2 == 1 })
	if len(odd) != 2 || odd[1] != 3 {
		t.Errorf("Filter = %v", odd)
	}

	uniq := Unique([]string{"a", "b", "a", "c", "b"})
	if len(uniq) != 3 || uniq[0] != "a" || uniq[2] != "c" {
		t.Errorf("Unique = %v", uniq)
	}
}

func TestChunk(t *testing.T) {
	chunks := Chunk([]int{1, 2, 3, 4, 5}, 2)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	if len(chunks[2]) != 1 || chunks[2][0] != 5 {
		t.Errorf("last chunk = %v", chunks[2])
	}
	if Chunk([]int{1}, 0) != nil {
		t.Error("n <= 0 should return nil")
	}
}

func TestThenShortCircuits(t *testing.T) {
	boom := errors.New("boom")
	first := func(context.Context, int) Result[int] { return Err[int](boom) }
	called := false
	second := func(_ context.Context, v int) Result[string] {
		called = true
		return Ok(strconv.Itoa(v))
	}

	r := Then(first, second)(context.Background(), 1)
	if _, err := r.Unwrap(); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
	if called {
		t.Error("second stage should not run after a failure")
	}
}

func TestThenPassesValue(t *testing.T) {
	double := func(_ context.Context, v int) Result[int] { return Ok(v * 2) }
	str := func(_ context.Context, v int) Result[string] { return Ok(strconv.Itoa(v)) }

	v, err := Then(double, str)(context.Background(), 21).Unwrap()
	if err != nil || v != "42" {
		t.Errorf("got (%q, %v), want (\"42\", nil)", v, err)
	}
}

func TestTapStagePassesThrough(t *testing.T) {
	var seen int
	tap := TapStage(func(_ context.Context, v int) { seen = v })
	v, err := tap(context.Background(), 9).Unwrap()
	if err != nil || v != 9 || seen != 9 {
		t.Errorf("got (%d, %v), seen=%d", v, err, seen)
	}
}

func TestParMapResultPreservesOrder(t *testing.T) {
	items := make([]int, 20)
	for i := range items {
		items[i] = i
	}
	results := ParMapResult(items, 4, func(v int) Result[int] { return Ok(v * v) })
	for i, r := range results {
		v, _ := r.Unwrap()
		if v != i*i {
			t.Errorf("results[%d] = %d, want %d", i, v, i*i)
		}
	}
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	var calls atomic.Int32
	opts := RetryOpts{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond}

	r := Retry(context.Background(), opts, func(context.Context) Result[int] {
		if calls.Add(1) < 3 {
			return Errf[int]("transient")
		}
		return Ok(1)
	})
	if r.IsErr() {
		t.Error("retry should eventually succeed")
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestRetryGivesUp(t *testing.T) {
	var calls atomic.Int32
	opts := RetryOpts{MaxAttempts: 2, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond}

	r := Retry(context.Background(), opts, func(context.Context) Result[int] {
		calls.Add(1)
		return Errf[int]("permanent")
	})
	if r.IsOk() {
		t.Error("retry should fail after exhausting attempts")
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestRetryStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	opts := RetryOpts{MaxAttempts: 10, InitialWait: 50 * time.Millisecond, MaxWait: time.Second}

	r := Retry(ctx, opts, func(context.Context) Result[int] {
		calls.Add(1)
		cancel()
		return Errf[int]("transient")
	})
	if _, err := r.Unwrap(); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}
