package mcpserver

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/weeklyreport/weeklyreport/internal/report"
)

// Version is set at build time via ldflags.
var Version = "dev"

// ServerName is announced to clients during initialize.
const ServerName = "Weekly Report Checker"

const (
	statusURI     = "weekly-report://status"
	statsURI      = "weekly-report://stats"
	membersURI    = "weekly-report://all-members"
	personPrefix  = "weekly-report://person/"
	personPattern = personPrefix + "{name}"
	mimeText      = "text/plain"
)

// Engine is the query surface the handlers need. *report.Engine satisfies it.
type Engine interface {
	Missing(ctx context.Context) ([]string, error)
	Lookup(ctx context.Context, name string) (report.Lookup, error)
	Stats(ctx context.Context) (report.Stats, error)
	Members() []string
}

// Handlers renders engine results as MCP replies.
type Handlers struct {
	engine Engine
	format report.Formatter
}

// New returns an MCP server with every tool, resource and prompt registered.
func New(engine Engine, format report.Formatter) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		Version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithPromptCapabilities(false),
		server.WithRecovery(),
	)
	Register(s, &Handlers{engine: engine, format: format})
	return s
}

// Register adds h's tools, resources and prompts to s.
func Register(s *server.MCPServer, h *Handlers) {
	// --- tools ---

	s.AddTool(mcp.NewTool("check_missing_reports",
		mcp.WithDescription("Check who hasn't submitted their weekly reports yet"),
	), h.CheckMissing)

	s.AddTool(mcp.NewTool("check_person_report",
		mcp.WithDescription("Check if a specific person has submitted their weekly report"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Member name exactly as it appears on the roster"),
		),
	), h.CheckPerson)

	s.AddTool(mcp.NewTool("get_submission_stats",
		mcp.WithDescription("Get statistics about weekly report submissions"),
	), h.SubmissionStats)

	// --- resources ---

	s.AddResource(mcp.NewResource(statusURI, "status",
		mcp.WithResourceDescription("Get the current status of weekly report submissions"),
		mcp.WithMIMEType(mimeText),
	), h.StatusResource)

	s.AddResource(mcp.NewResource(statsURI, "stats",
		mcp.WithResourceDescription("Get statistics about weekly report submissions"),
		mcp.WithMIMEType(mimeText),
	), h.StatsResource)

	s.AddResource(mcp.NewResource(membersURI, "all-members",
		mcp.WithResourceDescription("Get a list of all team members who should submit reports"),
		mcp.WithMIMEType(mimeText),
	), h.MembersResource)

	s.AddResourceTemplate(mcp.NewResourceTemplate(personPattern, "person",
		mcp.WithTemplateDescription("Get the status of a specific person's weekly report"),
		mcp.WithTemplateMIMEType(mimeText),
	), h.PersonResource)

	// --- prompts ---

	prompts := h.format.Prompts()
	s.AddPrompt(mcp.NewPrompt("check_reports_prompt",
		mcp.WithPromptDescription("Prompt to check who hasn't submitted their weekly reports"),
	), staticPrompt("Check missing weekly reports", prompts.CheckReports))

	s.AddPrompt(mcp.NewPrompt("check_person_prompt",
		mcp.WithPromptDescription("Prompt to check a specific person's report status"),
	), staticPrompt("Check one member's weekly report", prompts.CheckPerson))

	s.AddPrompt(mcp.NewPrompt("get_stats_prompt",
		mcp.WithPromptDescription("Prompt to get statistics about weekly report submissions"),
	), staticPrompt("Weekly report submission statistics", prompts.Stats))
}

// --- tool handlers ----------------------------------------------------------

// CheckMissing handles check_missing_reports.
func (h *Handlers) CheckMissing(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := h.missingText(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

// CheckPerson handles check_person_report.
func (h *Handlers) CheckPerson(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := h.personText(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

// SubmissionStats handles get_submission_stats.
func (h *Handlers) SubmissionStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := h.statsText(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

// --- resource handlers ------------------------------------------------------

// StatusResource serves weekly-report://status.
func (h *Handlers) StatusResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	text, err := h.missingText(ctx)
	if err != nil {
		return nil, err
	}
	return textContents(req.Params.URI, text), nil
}

// StatsResource serves weekly-report://stats.
func (h *Handlers) StatsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	text, err := h.statsText(ctx)
	if err != nil {
		return nil, err
	}
	return textContents(req.Params.URI, text), nil
}

// MembersResource serves weekly-report://all-members. It does not read the sheet.
func (h *Handlers) MembersResource(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return textContents(req.Params.URI, h.format.Members(h.engine.Members())), nil
}

// PersonResource serves weekly-report://person/{name}.
func (h *Handlers) PersonResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	name, err := personName(req.Params.URI)
	if err != nil {
		return nil, err
	}
	text, err := h.personText(ctx, name)
	if err != nil {
		return nil, err
	}
	return textContents(req.Params.URI, text), nil
}

// --- shared rendering -------------------------------------------------------

func (h *Handlers) missingText(ctx context.Context) (string, error) {
	missing, err := h.engine.Missing(ctx)
	if err != nil {
		return "", err
	}
	return h.format.Missing(missing), nil
}

func (h *Handlers) personText(ctx context.Context, name string) (string, error) {
	l, err := h.engine.Lookup(ctx, name)
	if err != nil {
		return "", err
	}
	return h.format.Person(l), nil
}

func (h *Handlers) statsText(ctx context.Context) (string, error) {
	st, err := h.engine.Stats(ctx)
	if err != nil {
		return "", err
	}
	return h.format.Stats(st), nil
}

func textContents(uri, text string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: mimeText, Text: text},
	}
}

// personName extracts the percent-decoded {name} segment from a person URI.
func personName(uri string) (string, error) {
	raw, ok := strings.CutPrefix(uri, personPrefix)
	if !ok || raw == "" {
		return "", fmt.Errorf("mcpserver: %q does not match %s", uri, personPattern)
	}
	name, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("mcpserver: decode name in %q: %w", uri, err)
	}
	return name, nil
}

func staticPrompt(desc, text string) server.PromptHandlerFunc {
	return func(context.Context, mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		return mcp.NewGetPromptResult(desc, []mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
		}), nil
	}
}
