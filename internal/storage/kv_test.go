package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSetGetValue(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	type snapshot struct {
		Topics []string `json:"topics"`
	}

	tests := []struct {
		name  string
		key   string
		value snapshot
	}{
		{name: "insert", key: "trends", value: snapshot{Topics: []string{"a", "b"}}},
		{name: "overwrite", key: "trends", value: snapshot{Topics: []string{"c"}}},
		{name: "other key", key: "other", value: snapshot{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.SetValue(ctx, tt.key, tt.value); err != nil {
				t.Fatalf("SetValue() error: %v", err)
			}
			var got snapshot
			if err := store.GetValue(ctx, tt.key, &got); err != nil {
				t.Fatalf("GetValue() error: %v", err)
			}
			if diff := cmp.Diff(tt.value, got); diff != "" {
				t.Errorf("GetValue() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGetValue_NotFound(t *testing.T) {
	store := newTestStore(t)

	var dest map[string]any
	if err := store.GetValue(context.Background(), "missing", &dest); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetValue() error = %v, want ErrNotFound", err)
	}
}

func TestSetValue_Unmarshalable(t *testing.T) {
	store := newTestStore(t)

	if err := store.SetValue(context.Background(), "bad", make(chan int)); err == nil {
		t.Error("SetValue(chan) expected error, got nil")
	}
}
