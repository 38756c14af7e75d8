package cache

import "context"

// FetchFn is the function signature GetOrFetch expects when fetching from the
// source of truth.
type FetchFn[T any] func(ctx context.Context) (T, error)

// GetOrFetch is the read-through path over a LocalCache: serve the local entry
// when fresh, otherwise run fetchFn and admit the result back through the
// normal admission policy. keysFn yields the ordered key set the value should
// be stored under (primary first); when nil the lookup key alone is used.
//
// Fetch errors propagate unchanged and nothing is admitted for them.
func GetOrFetch[T any](ctx context.Context, local *LocalCache, key string, keysFn func(T) []string, fetchFn FetchFn[T]) (T, error) {
	if cached, ok := local.Get(ctx, key); ok {
		if typed, ok := cached.(T); ok {
			return typed, nil
		}
	}

	value, err := fetchFn(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	fn := func(v any) []string {
		if keysFn == nil {
			return []string{key}
		}
		return keysFn(v.(T))
	}
	local.PutMany(ctx, []any{value}, fn, "")
	return value, nil
}
