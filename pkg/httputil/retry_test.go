package httputil

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry(t *testing.T) {
	transient := &RetryableError{Err: ErrNetwork}
	tests := []struct {
		name      string
		attempts  int
		failures  int
		failWith  error
		wantCalls int
		wantErr   bool
	}{
		{"success first try", 3, 0, nil, 1, false},
		{"recovers after transient", 3, 2, transient, 3, false},
		{"exhausts attempts", 3, 5, transient, 3, true},
		{"permanent error stops", 3, 5, ErrNotFound, 1, true},
		{"zero attempts runs once", 0, 0, nil, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), tt.attempts, time.Millisecond, func() error {
				calls++
				if calls <= tt.failures {
					return tt.failWith
				}
				return nil
			})
			if (err != nil) != tt.wantErr {
				t.Errorf("Retry() error = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, time.Second, func() error {
		return &RetryableError{Err: ErrNetwork}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Retry() error = %v, want context.Canceled", err)
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		code          int
		wantNil       bool
		wantNotFound  bool
		wantRetryable bool
	}{
		{200, true, false, false},
		{204, true, false, false},
		{404, false, true, false},
		{403, false, false, false},
		{429, false, false, true},
		{500, false, false, true},
		{503, false, false, true},
	}
	for _, tt := range tests {
		err := CheckStatus(tt.code)
		if (err == nil) != tt.wantNil {
			t.Errorf("CheckStatus(%d) = %v, want nil %v", tt.code, err, tt.wantNil)
		}
		if got := errors.Is(err, ErrNotFound); got != tt.wantNotFound {
			t.Errorf("CheckStatus(%d) notFound = %v, want %v", tt.code, got, tt.wantNotFound)
		}
		if got := isRetryable(err); got != tt.wantRetryable {
			t.Errorf("CheckStatus(%d) retryable = %v, want %v", tt.code, got, tt.wantRetryable)
		}
	}
}
