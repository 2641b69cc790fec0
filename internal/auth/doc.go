// Package auth provides authentication middleware for the weeklyreport HTTP
// transport.
//
// APIKey(mode, header, key) returns middleware that validates the API key
// carried in the named request header. It guards /mcp, /api/v1 and /metrics.
//
// When mode != "apikey" or key == "", every request passes through (useful for
// local development with auth disabled). When the key is incorrect or absent,
// the middleware answers 401 with a JSON error body.
package auth
