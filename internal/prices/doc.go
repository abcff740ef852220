// Package prices owns the cache-aside protocol for the global price table and
// the currency rate table.
//
// A cold or expired price table is fetched, written wholesale with an 8 hour
// expiry and mirrored into the search index. A failed fetch never touches the
// document already cached. Index failures are logged and do not fail the
// refresh that triggered them.
package prices
