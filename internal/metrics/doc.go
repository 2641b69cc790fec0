// Package metrics exposes submission status in the Prometheus format.
//
// Collector reads a fresh snapshot on every scrape, so /metrics reflects the
// sheet at request time exactly like the MCP tools do. Recorder counts rows the
// status engine discarded and is wired in as the engine's skip hook. WriteText
// renders any gatherer in the text exposition format for the one-shot
// `metrics` command.
package metrics
