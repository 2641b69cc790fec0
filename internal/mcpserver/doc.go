// Package mcpserver exposes the status engine over the Model Context Protocol.
//
// New registers, on a single mcp-go server:
//
//	tools:     check_missing_reports, check_person_report(name), get_submission_stats
//	resources: weekly-report://status, weekly-report://stats, weekly-report://all-members
//	template:  weekly-report://person/{name}
//	prompts:   check_reports_prompt, check_person_prompt, get_stats_prompt
//
// Every tool and resource read takes a fresh snapshot of the sheet. A source
// failure surfaces as a tool error result (tools) or a JSON-RPC error
// (resources); a name that is not on the roster is an ordinary text reply.
package mcpserver
