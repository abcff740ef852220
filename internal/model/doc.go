// Package model defines the market data shapes shared by the price, catalog
// and valuation layers.
package model
