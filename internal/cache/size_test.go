package cache

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

type sizedFile struct {
	Name  string `json:"name"`
	IsDir bool   `json:"is_dir"`
}

type cyclic struct {
	Next *cyclic
}

func TestEstimateSize(t *testing.T) {
	loop := &cyclic{}
	loop.Next = loop

	selfMap := map[string]any{}
	selfMap["self"] = selfMap

	tests := []struct {
		name  string
		value any
		want  int64
	}{
		{"nil", nil, 0},
		{"string", "hello", 5},
		{"bytes", []byte{1, 2, 3}, 3},
		{"raw json", json.RawMessage(`{"a":1}`), 7},
		{"struct", sizedFile{Name: "a", IsDir: true}, int64(len(`{"name":"a","is_dir":true}`))},
		{"slice", []int{1, 2, 3}, int64(len("[1,2,3]"))},
		{"channel", make(chan int), FallbackSize},
		{"func", func() {}, FallbackSize},
		{"cyclic pointer", loop, FallbackSize},
		{"cyclic map", selfMap, FallbackSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Equal(t, tt.want, EstimateSize(tt.value))
			})
		})
	}
}

type panickyMarshaler struct{}

func (panickyMarshaler) MarshalJSON() ([]byte, error) {
	panic("boom")
}

func TestEstimateSize_RecoversFromPanics(t *testing.T) {
	assert.Equal(t, FallbackSize, EstimateSize(panickyMarshaler{}))
}

func TestCache_UnserializableValueIsStored(t *testing.T) {
	c, _ := newTestCache(t, DefaultConfig())

	ch := make(chan int)
	c.Set(Metadata, "watcher", ch)

	e, ok := c.Peek(Metadata, "watcher")
	assert.True(t, ok)
	assert.Equal(t, FallbackSize, e.SizeBytes)
}
