// Package search keeps the relational item-name index in step with the price
// table and answers prefix-tolerant name suggestions from it.
//
// The index is a projection of the price table key set. Resync replaces it
// wholesale inside one transaction; it is never diffed or merged.
package search
