// Package prometheus renders the gateway's metric counters and the login
// latency histogram in Prometheus text exposition format. It reads lock-free
// snapshots from the engine, so scraping never blocks authentication traffic.
package prometheus
