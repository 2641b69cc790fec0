// Package notify delivers "who still owes a report" reminders to chat webhooks.
//
// Supported target types:
//
//	slack: {"text": message}
//	teams: Office 365 connector MessageCard
//	http:  {"missing": [...], "message": message}
//
// URLs are resolved from the environment (url_env) at delivery time, so secrets
// never live in the config file. Remind sends nothing when nobody is missing.
package notify
