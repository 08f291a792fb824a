package fn

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
)

// --- Result ---

func TestOkAndErr(t *testing.T) {
	r := Ok(42)
	if !r.IsOk() || r.IsErr() {
		t.Fatal("Ok should be ok")
	}
	v, err := r.Unwrap()
	if v != 42 || err != nil {
		t.Fatal("wrong unwrap")
	}

	e := Err[int](errors.New("fail"))
	if e.IsOk() || !e.IsErr() {
		t.Fatal("Err should be err")
	}
}

func TestErrf(t *testing.T) {
	r := Errf[string]("code %d", 404)
	_, err := r.Unwrap()
	if err == nil || err.Error() != "code 404" {
		t.Fatal("Errf wrong message")
	}
}

func TestAndThenResult(t *testing.T) {
	r := AndThenResult(Ok("12"), func(s string) Result[int] {
		n, err := strconv.Atoi(s)
		if err != nil {
			return Err[int](err)
		}
		return Ok(n)
	})
	if v, err := r.Unwrap(); v != 12 || err != nil {
		t.Fatalf("got (%d, %v)", v, err)
	}

	sentinel := errors.New("parse")
	called := false
	r = AndThenResult(Err[string](sentinel), func(string) Result[int] { called = true; return Ok(1) })
	if _, err := r.Unwrap(); !errors.Is(err, sentinel) || called {
		t.Fatal("error should short-circuit")
	}
}

// --- Stages ---

func TestThen(t *testing.T) {
	double := MapStage(func(n int) int { return n * 2 })
	str := MapStage(strconv.Itoa)
	v, err := Then(double, str)(context.Background(), 21).Unwrap()
	if v != "42" || err != nil {
		t.Fatalf("got (%q, %v)", v, err)
	}
}

func TestThenShortCircuits(t *testing.T) {
	fail := Stage[int, int](func(context.Context, int) Result[int] { return Err[int](errors.New("bad")) })
	called := false
	next := Stage[int, int](func(_ context.Context, n int) Result[int] { called = true; return Ok(n) })
	if r := Then(fail, next)(context.Background(), 1); r.IsOk() || called {
		t.Fatal("second stage must not run after a failure")
	}
}

func TestTapStage(t *testing.T) {
	var seen int
	tap := TapStage(func(_ context.Context, n int) { seen = n })
	if v, _ := tap(context.Background(), 5).Unwrap(); v != 5 || seen != 5 {
		t.Fatalf("v=%d seen=%d", v, seen)
	}
}

func TestTracedStage(t *testing.T) {
	ok := TracedStage("test.ok", MapStage(func(n int) int { return n + 1 }))
	if v, err := ok(context.Background(), 1).Unwrap(); v != 2 || err != nil {
		t.Fatalf("got (%d, %v)", v, err)
	}
	failing := TracedStage("test.fail", Stage[int, int](func(context.Context, int) Result[int] {
		return Errf[int]("boom")
	}))
	if failing(context.Background(), 1).IsOk() {
		t.Fatal("expected error to pass through")
	}
}

// --- Parallel ---

func TestParMapResult(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}
	var running, peak atomic.Int32
	out := ParMapResult(items, 3, func(n int) Result[int] {
		cur := running.Add(1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		running.Add(-1)
		if n == 4 {
			return Errf[int]("four")
		}
		return Ok(n * n)
	})
	for i, r := range out {
		v, err := r.Unwrap()
		if items[i] == 4 {
			if err == nil {
				t.Fatal("expected error at index 3")
			}
			continue
		}
		if v != items[i]*items[i] {
			t.Fatalf("out[%d] = %d", i, v)
		}
	}
	if peak.Load() > 3 {
		t.Fatalf("peak concurrency %d exceeds 3", peak.Load())
	}
}

func TestParMapResultEmpty(t *testing.T) {
	if out := ParMapResult(nil, 4, func(int) Result[int] { return Ok(1) }); len(out) != 0 {
		t.Fatalf("expected empty, got %d", len(out))
	}
}

func TestParMapResultUnbounded(t *testing.T) {
	out := ParMapResult([]string{"a", "b"}, 0, func(s string) Result[string] { return Ok(s + s) })
	if v, _ := out[1].Unwrap(); v != "bb" {
		t.Fatalf("out[1] = %q", v)
	}
}

// --- Retry ---

func fast(attempts int) RetryOpts {
	return RetryOpts{MaxAttempts: attempts, InitialWait: time.Millisecond, MaxWait: 2 * time.Millisecond, Jitter: true}
}

func TestRetrySuccess(t *testing.T) {
	calls := 0
	r := Retry(context.Background(), fast(5), func(context.Context) Result[string] {
		calls++
		if calls < 3 {
			return Errf[string]("transient")
		}
		return Ok("done")
	})
	if v, err := r.Unwrap(); v != "done" || err != nil || calls != 3 {
		t.Fatalf("got (%q, %v) after %d calls", v, err, calls)
	}
}

func TestRetryExhausted(t *testing.T) {
	calls := 0
	r := Retry(context.Background(), fast(3), func(context.Context) Result[int] {
		calls++
		return Errf[int]("down")
	})
	if r.IsOk() || calls != 3 {
		t.Fatalf("ok=%v calls=%d", r.IsOk(), calls)
	}
}

func TestRetryZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	Retry(context.Background(), RetryOpts{}, func(context.Context) Result[int] { calls++; return Errf[int]("x") })
	if calls != 1 {
		t.Fatalf("calls = %d", calls)
	}
}

func TestRetryContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	opts := RetryOpts{MaxAttempts: 5, InitialWait: time.Hour, MaxWait: time.Hour}
	r := Retry(ctx, opts, func(context.Context) Result[int] {
		cancel()
		return Errf[int]("fail")
	})
	if _, err := r.Unwrap(); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
