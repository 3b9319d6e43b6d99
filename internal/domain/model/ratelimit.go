package model

// RateLimitCounter is one fixed-window counter, keyed by "{scope}:{ip}".
type RateLimitCounter struct {
	Count int   `json:"count"`
	Reset int64 `json:"reset"` // unix seconds when the window ends
}
