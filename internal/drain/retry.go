package drain

// retryTracker counts consecutive failed attempts per key across a
// scheduler's passes. A key that drains successfully (or stops failing)
// resets to zero.
type retryTracker struct {
	attempts map[string]int
}

func newRetryTracker() *retryTracker {
	return &retryTracker{attempts: make(map[string]int)}
}

func (t *retryTracker) shouldRetry(key string, maxRetries int) bool {
	return t.attempts[key] < maxRetries
}

func (t *retryTracker) increment(key string) int {
	t.attempts[key]++
	return t.attempts[key]
}

func (t *retryTracker) reset(key string) {
	delete(t.attempts, key)
}

// reconcile resets tracking for keys that are no longer failing.
func (t *retryTracker) reconcile(stillFailing []string) {
	failing := make(map[string]struct{}, len(stillFailing))
	for _, k := range stillFailing {
		failing[k] = struct{}{}
	}
	for k := range t.attempts {
		if _, ok := failing[k]; !ok {
			delete(t.attempts, k)
		}
	}
}
