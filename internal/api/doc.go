// Package api implements the HTTP surface of weeklyreport.
//
// NewRouter returns a chi router that serves:
//
//	GET /api/v1/health          liveness and roster size; never reads the sheet
//	GET /api/v1/status          members without a report in the window
//	GET /api/v1/stats           submitted/total and percentage
//	GET /api/v1/members         the roster
//	GET /api/v1/members/{name}  one member; 404 if not on the roster
//	    /mcp                    streamable HTTP MCP transport (when configured)
//	GET /metrics                Prometheus exposition (when configured)
//
// Every JSON body carries the structured values plus the rendered sentence in
// "message". A sheet read failure answers 502. Everything except
// /api/v1/health sits behind the auth middleware.
package api
