package domain

import (
	"bytes"
	"encoding/json"
)

// Optional distinguishes a JSON field that was absent from one that was
// explicitly null. PATCH handlers need the distinction: absent fields are
// left untouched, null fields clear nullable columns.
type Optional[T any] struct {
	Set   bool
	Value *T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
