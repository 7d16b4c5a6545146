package httpx

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type statusErr int

func (s statusErr) Error() string       { return fmt.Sprintf("status %d", int(s)) }
func (s statusErr) HTTPStatusCode() int { return int(s) }

func TestRetryable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{context.Canceled, false},
		{context.DeadlineExceeded, false},
		{statusErr(429), true},
		{statusErr(503), true},
		{statusErr(400), false},
		{fmt.Errorf("wrapped: %w", statusErr(502)), true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Retryable(tc.err), "Retryable(%v)", tc.err)
	}
}

func TestBackoffDelayDoublesAndCaps(t *testing.T) {
	b := Backoff{Initial: time.Second, Max: 5 * time.Second}
	assert.Equal(t, time.Second, b.Delay(0, nil))
	assert.Equal(t, 2*time.Second, b.Delay(1, nil))
	assert.Equal(t, 4*time.Second, b.Delay(2, nil))
	assert.Equal(t, 5*time.Second, b.Delay(3, nil))
	assert.Equal(t, 5*time.Second, b.Delay(30, nil))
}

func TestBackoffHonorsRetryAfter(t *testing.T) {
	b := Backoff{Initial: time.Second, Max: 10 * time.Second}
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set("Retry-After", "3")
	assert.Equal(t, 3*time.Second, b.Delay(0, resp))

	resp.Header.Set("Retry-After", "60")
	assert.Equal(t, 10*time.Second, b.Delay(0, resp))
}

func TestRetryAfterHTTPDate(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set("Retry-After", now.Add(7*time.Second).Format(http.TimeFormat))
	d, ok := retryAfter(resp, now)
	assert.True(t, ok)
	assert.Equal(t, 7*time.Second, d)

	resp.Header.Set("Retry-After", "soon")
	_, ok = retryAfter(resp, now)
	assert.False(t, ok)
}

func TestJitterStaysInRange(t *testing.T) {
	for i := 0; i < 100; i++ {
		d := jitter(time.Second, 0.2)
		assert.GreaterOrEqual(t, d, 800*time.Millisecond)
		assert.LessOrEqual(t, d, 1200*time.Millisecond)
	}
}

func TestWaitCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Wait(ctx, time.Hour), context.Canceled)
}
