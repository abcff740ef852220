// Package catalog resolves item icons from the per-category catalogs.
//
// Each category catalog is cached whole for 24 hours and searched with a
// name filter. Categories are tried in a fixed order and the first entry with
// an image wins.
package catalog
