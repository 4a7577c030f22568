// Package metrics exports provisioning attempt metrics to Prometheus and
// serves them on a dedicated listener.
package metrics
