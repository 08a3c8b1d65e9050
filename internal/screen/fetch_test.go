package screen

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/findosh/wiprox/internal/api"
	"github.com/findosh/wiprox/internal/models"
)

func TestFetch_Success(t *testing.T) {
	f := New[int]("Failed to load")
	if f.Snapshot().Status != Idle {
		t.Fatalf("Expected idle, got %s", f.Snapshot().Status)
	}

	var during Status
	st := f.Load(context.Background(), func(ctx context.Context) (int, error) {
		during = f.Snapshot().Status
		return 42, nil
	})
	if during != Loading {
		t.Errorf("Expected loading while the loader runs, got %s", during)
	}
	if !st.OK() || st.Data != 42 {
		t.Errorf("Expected success with 42, got %+v", st)
	}
}

func TestFetch_Error(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"server message", &api.Error{StatusCode: 500, Message: "Database unavailable"}, "Database unavailable"},
		{"no message", &api.Error{StatusCode: 502}, "Failed to load records"},
		{"validation", models.Invalid(errors.New("enter an amount")), "enter an amount"},
		{"network", fmt.Errorf("%w: dial", api.ErrNetwork), "Network error. Please check your connection and try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := Run(context.Background(), "Failed to load records", func(ctx context.Context) ([]string, error) {
				return nil, tt.err
			})
			if !st.Failed() {
				t.Fatalf("Expected error state, got %s", st.Status)
			}
			if st.Message != tt.want {
				t.Errorf("Expected message %q, got %q", tt.want, st.Message)
			}
		})
	}
}

func TestFetch_Retry(t *testing.T) {
	f := New[string]("Failed")
	calls := 0
	loader := func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("boom")
		}
		return "ok", nil
	}

	if st := f.Load(context.Background(), loader); !st.Failed() {
		t.Fatalf("Expected first load to fail, got %s", st.Status)
	}
	st := f.Retry(context.Background())
	if !st.OK() || st.Data != "ok" {
		t.Errorf("Expected retry to succeed, got %+v", st)
	}
	if calls != 2 {
		t.Errorf("Expected 2 loader calls, got %d", calls)
	}
}

func TestFetch_RetryWithoutLoad(t *testing.T) {
	f := New[int]("Failed")
	if st := f.Retry(context.Background()); st.Status != Idle {
		t.Errorf("Expected idle, got %s", st.Status)
	}
}

func TestFetch_CancelledLoadDiscarded(t *testing.T) {
	f := New[int]("Failed")
	f.Load(context.Background(), func(ctx context.Context) (int, error) { return 1, nil })

	ctx, cancel := context.WithCancel(context.Background())
	st := f.Load(ctx, func(ctx context.Context) (int, error) {
		cancel()
		return 0, ctx.Err()
	})
	if !st.OK() || st.Data != 1 {
		t.Errorf("Expected cancelled load to leave the previous state, got %+v", st)
	}
}

func TestFetch_OvertakenLoadDiscarded(t *testing.T) {
	f := New[int]("Failed")
	st := f.Load(context.Background(), func(ctx context.Context) (int, error) {
		// A newer load starts and finishes while this one is in flight
		f.Load(context.Background(), func(ctx context.Context) (int, error) { return 2, nil })
		return 1, nil
	})
	if st.Data != 2 {
		t.Errorf("Expected the newer result to win, got %d", st.Data)
	}
}
