// Package imagecache decodes, reorients, and resizes photos off the consumer
// goroutine while guaranteeing that results for a stale navigation state are
// never applied.
//
// A Service owns two caches (fixed-size thumbnails keyed by path, viewport-fit
// large views keyed by path and viewport), a monotonically increasing
// navigation token, and a single result queue drained on a fixed-interval
// ticker. Decode work runs on a bounded worker pool; concurrent misses for the
// same key are coalesced through singleflight. Cancellation is advisory only:
// stale results are dropped at drain time, never interrupted.
package imagecache
