package cache

import "encoding/json"

// FallbackSize is the size charged for a value that cannot be serialized.
const FallbackSize int64 = 1024

// EstimateSize approximates the number of bytes a value occupies by measuring
// its JSON encoding. Byte slices and strings are measured directly.
//
// Values that cannot be encoded (cycles, channels, funcs) are charged
// FallbackSize. EstimateSize never panics.
func EstimateSize(v any) (size int64) {
	defer func() {
		if r := recover(); r != nil {
			size = FallbackSize
		}
	}()

	switch t := v.(type) {
	case nil:
		return 0
	case []byte:
		return int64(len(t))
	case json.RawMessage:
		return int64(len(t))
	case string:
		return int64(len(t))
	}

	data, err := json.Marshal(v)
	if err != nil {
		return FallbackSize
	}
	return int64(len(data))
}
