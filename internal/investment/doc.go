// Package investment gates investment writes on the price table and renders
// holdings with normalized money values.
//
// Rows are persisted through the Store collaborator. An item that the price
// table does not list is rejected with ErrUnknownItem before anything is
// stored.
package investment
