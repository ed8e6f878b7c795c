package models

import (
	"encoding/json"
	"time"
)

// * A cached API response. Serialised as {"etag","data","link","ts"} where ts
// * is the store time in unix milliseconds.
type CacheEntry struct {
	Key      string          `json:"-"`
	ETag     string          `json:"etag,omitempty"`
	Data     json.RawMessage `json:"data"`
	Link     string          `json:"link,omitempty"`
	StoredAt int64           `json:"ts"`
}

func (e *CacheEntry) StoredTime() time.Time {
	return time.UnixMilli(e.StoredAt)
}

// * HasData is false for entries whose payload was never written or is JSON null
func (e *CacheEntry) HasData() bool {
	return len(e.Data) > 0 && string(e.Data) != "null"
}
