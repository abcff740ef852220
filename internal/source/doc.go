// Package source fetches the third-party documents behind the cache: the
// global price table, currency exchange rates and per-category item catalogs.
//
// The client is stateless and never retries. Transport errors, timeouts and
// non-2xx replies are classified as cache.KindSourceFetch; bodies that are not
// JSON of the expected shape are classified as cache.KindSourceParse.
package source
