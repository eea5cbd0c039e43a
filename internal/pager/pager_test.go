package pager

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"testing"
)

// buildPages chains the given item slices into pages. failAt is the 1-based
// page whose fetch returns err; 0 disables failure.
func buildPages(chunks [][]int, failAt int, err error) (*Page[int], *int) {
	fetches := new(int)
	var build func(i int) *Page[int]
	build = func(i int) *Page[int] {
		p := &Page[int]{Items: chunks[i]}
		if i+1 < len(chunks) {
			p.Next = func(context.Context) (*Page[int], error) {
				*fetches++
				if failAt == i+2 {
					return nil, err
				}
				return build(i + 1), nil
			}
		}
		return p
	}
	return build(0), fetches
}

func TestCollect(t *testing.T) {
	tests := []struct {
		name        string
		chunks      [][]int
		wantItems   []int
		wantFetches int
	}{
		{
			name:        "single page",
			chunks:      [][]int{{1, 2, 3}},
			wantItems:   []int{1, 2, 3},
			wantFetches: 0,
		},
		{
			name:        "three pages keep order",
			chunks:      [][]int{{1, 2}, {3, 4}, {5}},
			wantItems:   []int{1, 2, 3, 4, 5},
			wantFetches: 2,
		},
		{
			name:        "duplicates are not removed",
			chunks:      [][]int{{7, 7}, {7}},
			wantItems:   []int{7, 7, 7},
			wantFetches: 1,
		},
		{
			name:        "empty pages",
			chunks:      [][]int{{}, {}, {9}},
			wantItems:   []int{9},
			wantFetches: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, fetches := buildPages(tt.chunks, 0, nil)

			got, err := Collect(context.Background(), first)
			if err != nil {
				t.Fatalf("Collect() error = %v", err)
			}
			if !slices.Equal(got, tt.wantItems) {
				t.Errorf("Collect() = %v, want %v", got, tt.wantItems)
			}
			if *fetches != tt.wantFetches {
				t.Errorf("fetched %d pages, want %d", *fetches, tt.wantFetches)
			}
		})
	}
}

func TestCollectNilFirstPage(t *testing.T) {
	got, err := Collect[int](context.Background(), nil)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Collect() = %v, want empty", got)
	}
}

func TestCollectFailFast(t *testing.T) {
	boom := errors.New("boom")
	first, _ := buildPages([][]int{{1}, {2}, {3}}, 3, boom)

	got, err := Collect(context.Background(), first)
	if !errors.Is(err, boom) {
		t.Fatalf("Collect() error = %v, want %v", err, boom)
	}
	if got != nil {
		t.Errorf("Collect() = %v, want nil on failure", got)
	}
}

func TestCollectPartialResults(t *testing.T) {
	boom := errors.New("boom")
	first, _ := buildPages([][]int{{1, 2}, {3}, {4}}, 3, boom)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	got, err := Collect(context.Background(), first, WithPartialResults(logger))
	if err != nil {
		t.Fatalf("Collect() error = %v, want nil", err)
	}
	if !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("Collect() = %v, want [1 2 3]", got)
	}
	if !strings.Contains(buf.String(), "boom") {
		t.Errorf("expected pagination error to be logged, got %q", buf.String())
	}
}

func TestCollectProgress(t *testing.T) {
	first, _ := buildPages([][]int{{1, 2}, {3}, {4, 5, 6}}, 0, nil)

	var counts []int
	_, err := Collect(context.Background(), first, WithProgress(func(total int) {
		counts = append(counts, total)
	}))
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if !slices.Equal(counts, []int{2, 3, 6}) {
		t.Errorf("progress = %v, want [2 3 6]", counts)
	}
}

func TestCollectCanceledContext(t *testing.T) {
	first, fetches := buildPages([][]int{{1}, {2}}, 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Collect(ctx, first, WithPartialResults(nil))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Collect() error = %v, want context.Canceled", err)
	}
	if *fetches != 0 {
		t.Errorf("fetched %d pages after cancel, want 0", *fetches)
	}
}
