// Package config loads the weekly report service configuration from YAML.
//
// Config fields:
//   - Roster               : ordered member names, matched exactly (required)
//   - Locale               : reply language, "zh-TW" (default) or "en"
//   - Location             : IANA zone of the sheet's timestamps (default "Local")
//   - Sheet.SpreadsheetID  : Google Sheets document ID (required)
//   - Sheet.Worksheet      : tab title (default "週報")
//   - Sheet.CredentialsFile: service account JSON (default "service_account.json")
//   - Sheet.FirstRow/LastRow: scan range, inclusive (default 2..14)
//   - Sheet.Batch          : one BatchGet instead of one request per row
//   - Sheet.Timeout        : bound on one sheet read (default 30s)
//   - Server.Transport     : "stdio" (default) or "http"
//   - Server.HTTPPort      : port for MCP-over-HTTP, REST and /metrics (default 8080)
//   - Server.Auth          : "apikey" or "none"; the key is read from Auth.KeyEnv
//   - Notify.Webhooks      : reminder targets; URLs are read from URLEnv
//
// Load(path) applies defaults, unmarshals the file, overlays WEEKLYREPORT_*
// environment variables and validates the result.
package config
