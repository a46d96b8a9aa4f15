package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestExecuteKeepsInputOrder(t *testing.T) {
	pool := NewPool[int, string](4, func(ctx context.Context, n int) (string, error) {
		return fmt.Sprintf("v%d", n), nil
	})

	inputs := []int{5, 3, 9, 1, 7, 2}
	results := pool.Execute(context.Background(), inputs)

	if len(results) != len(inputs) {
		t.Fatalf("got %d results, want %d", len(results), len(inputs))
	}
	for i, task := range results {
		if task.Input != inputs[i] {
			t.Errorf("result %d: input = %d, want %d", i, task.Input, inputs[i])
		}
		if want := fmt.Sprintf("v%d", inputs[i]); task.Result != want {
			t.Errorf("result %d: %q, want %q", i, task.Result, want)
		}
	}
}

func TestExecuteCapturesErrors(t *testing.T) {
	errBad := errors.New("bad input")
	pool := NewPool[int, int](2, func(ctx context.Context, n int) (int, error) {
		if n%2 == 1 {
			return 0, errBad
		}
		return n * 10, nil
	})

	results := pool.Execute(context.Background(), []int{1, 2, 3, 4})
	for i, task := range results {
		if task.Input%2 == 1 {
			if !errors.Is(task.Err, errBad) {
				t.Errorf("result %d: err = %v, want errBad", i, task.Err)
			}
		} else if task.Err != nil || task.Result != task.Input*10 {
			t.Errorf("result %d: (%d, %v)", i, task.Result, task.Err)
		}
	}
}

func TestExecuteCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := NewPool[int, int](2, func(ctx context.Context, n int) (int, error) {
		return n, nil
	})
	results := pool.Execute(ctx, []int{1, 2, 3})

	// Scheduling stops on cancellation; results stay zero-valued.
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
}

func TestNewPoolClampsWorkers(t *testing.T) {
	pool := NewPool[int, int](0, func(ctx context.Context, n int) (int, error) {
		return n + 1, nil
	})
	results := pool.Execute(context.Background(), []int{1})
	if results[0].Result != 2 {
		t.Errorf("result = %d, want 2", results[0].Result)
	}
}
