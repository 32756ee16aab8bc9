// Package metrics provides the Prometheus metrics of the JSON-RPC server.
//
// # Server Metrics
//
// NewRPC registers the metrics recorded by the server, alongside the Go
// runtime and process collectors:
//
//   - specdocs_rpc_requests_total: Counter of handled calls (labels: method, code)
//   - specdocs_rpc_request_duration_seconds: Histogram of call latency (labels: method)
//   - specdocs_spec_reloads_total: Counter of reload attempts (labels: result)
//   - specdocs_spec_loaded: Gauge, 1 while a parsed document is cached
//
// The code label is the JSON-RPC error code, or "0" for a success. The method
// label is "unknown" for names outside the supported set. The loaded gauge is
// read from the document store at scrape time.
//
// # Usage
//
//	rpc := metrics.NewRPC(store.Loaded)
//	dispatcher.SetObserver(rpc)
//	mux.Handle("GET /metrics", rpc.Handler())
package metrics
