// Package cache defines the document cache contract used by the price and
// catalog layers.
//
// # Overview
//
// Third-party market data arrives as large JSON documents: a global price
// table, currency exchange rates and one item catalog per category. The cache
// keeps each document whole under a fixed key and answers path queries against
// it, instead of decomposing the documents into many small keys.
//
//   - DocumentStore: key/value + path-query store with per-key expiration
//   - Path: a typed address into a document (root, literal key or filter)
//   - Populate: wholesale write followed by arming the key's expiry
//
// Two backends live in internal/cacheinfra: a RedisJSON store for production
// and an in-process store built on sturdyc and gjson for environments without
// native JSON-path support.
//
// # Path Queries
//
// GetPath always returns a JSON array of matches, mirroring RedisJSON's
// $-path replies:
//
//	raw, ok, err := store.GetPath(ctx, cache.PriceTableKey, cache.Key("AK-47 | Redline (Field-Tested)"))
//	// ok == false: the document itself is absent (cache cold)
//	// raw == []:   the document exists but nothing matched
//
// Path.String renders RedisJSON syntax with JSON string escaping, so names
// containing quotes, pipes or trademark symbols are addressed safely:
//
//	cache.Key(`Chantico's Fire`).String()  // $["Chantico's Fire"]
//	cache.Where("name", "AK-47 | Redline")  // $[?(@.name=="AK-47 | Redline")]
//
// # Keys and Expiry
//
// Keys and TTLs are fixed to this domain: price-table (8h), currency-rates (3h)
// and catalog-<category> (24h). There is no eviction policy beyond expiry.
//
// # Errors
//
// Failures carry a Kind (source fetch, source parse, cache read, cache write,
// index sync) through *Error. Negative lookups are plain sentinels
// (ErrItemNotFound, ErrIconNotFound) and are not failures.
package cache
