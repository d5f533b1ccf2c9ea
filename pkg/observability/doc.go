/*
Package observability turns catalog hooks into Prometheus metrics.

Metrics are registered on a caller-supplied registry so servers and tests can
keep them isolated:

	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	cat := inferschema.New(inferschema.WithHooks(m.Hooks()))
	http.Handle("/metrics", m.Handler())
*/
package observability
