package cache

import "time"

const (
	DefaultRetries    = 3
	DefaultRetryDelay = time.Second
)

// Options tune one query.
// A zero StaleTime makes every new observation refetch.
type Options struct {
	StaleTime      time.Duration
	Retries        uint64
	RetryDelay     time.Duration
	RefetchOnFocus bool
}

func DefaultOptions() Options {
	return Options{
		Retries:        DefaultRetries,
		RetryDelay:     DefaultRetryDelay,
		RefetchOnFocus: true,
	}
}

// ConversationOptions never refetch on focus: realtime is the freshness source.
func ConversationOptions() Options {
	o := DefaultOptions()
	o.RefetchOnFocus = false
	return o
}

func (o Options) WithRetryDelay(d time.Duration) Options {
	o.RetryDelay = d
	return o
}
