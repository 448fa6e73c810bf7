// Package api serves the store, retrieve and event recommendation
// operations over HTTP with gin, and exposes Prometheus metrics.
package api
