package drain

import "testing"

func TestRetryTracker(t *testing.T) {
	tr := newRetryTracker()
	key := "logs:user_123:19818"

	if !tr.shouldRetry(key, 3) {
		t.Fatalf("fresh key should be retryable")
	}
	if tr.increment(key) != 1 || tr.increment(key) != 2 {
		t.Fatalf("increment should count attempts")
	}
	if !tr.shouldRetry(key, 3) {
		t.Fatalf("two attempts should still retry with budget 3")
	}
	tr.increment(key)
	if tr.shouldRetry(key, 3) {
		t.Fatalf("three attempts should exhaust budget 3")
	}

	tr.reset(key)
	if !tr.shouldRetry(key, 3) {
		t.Fatalf("reset should restore the budget")
	}
}

func TestRetryTrackerReconcile(t *testing.T) {
	tr := newRetryTracker()
	tr.increment("a")
	tr.increment("b")
	tr.reconcile([]string{"b"})
	if _, ok := tr.attempts["a"]; ok {
		t.Fatalf("recovered key should be forgotten")
	}
	if tr.attempts["b"] != 1 {
		t.Fatalf("still-failing key should keep its count")
	}
}
