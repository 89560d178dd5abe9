// Package ratelimit paces calls to the FRED API.
//
// FRED allows a modest request rate per API key, so every category lookup
// passes through a single process-wide Limiter before the HTTP request is
// made. The default is one call every two seconds.
//
// Two strategies are available:
//
// Sliding Window ("window"):
//   - Tracks call timestamps within a moving window
//   - At one call per window it guarantees a minimum spacing between calls
//   - Default
//
// Leaky Bucket ("leaky"):
//   - Backed by go.uber.org/ratelimit with slack disabled
//   - Spaces calls evenly at calls/period
//
// Both take a Clock so tests can drive time without sleeping.
//
// Usage:
//
//	limiter, err := ratelimit.New("window", 1, 2*time.Second, nil)
//	if err != nil {
//	    return err
//	}
//	if err := limiter.Wait(ctx); err != nil {
//	    return err
//	}
//	// issue the request
package ratelimit
