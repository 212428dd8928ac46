// Package infra groups the adapters behind the core interfaces: zerolog
// logging, the Prometheus and InfluxDB metrics sinks, the MQTT result
// publisher and Sentry error reporting.
package infra
