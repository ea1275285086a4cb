// Package httputil fetches remote data files for charts.
//
// Chart data sources may be local paths or http(s) URLs. Remote sources go
// through a [Fetcher], which combines two pieces:
//
//   - [Cache]: file-based storage under ~/.cache/vizlab/fetch with a TTL
//   - [Backoff]: doubling delays for failures marked [Transient], honouring
//     Retry-After
//
// Network errors, 429 and 5xx responses are retried; 404 maps to
// FILE_NOT_FOUND and is returned immediately.
//
//	cache, _ := httputil.NewCache("", 24*time.Hour)
//	f := httputil.NewFetcher(cache, nil)
//	body, err := f.Fetch(ctx, "https://example.org/coins.json", false)
//
// The cache can be cleared with `vizlab cache clear` or by deleting the
// directory.
package httputil
