// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the font passes as tools via stdio transport.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/fontfix/internal/fontfix"
	"github.com/starford/fontfix/internal/models"
	"github.com/starford/fontfix/internal/storage"
)

// Defaults supplies values for tool arguments the caller leaves out.
type Defaults struct {
	Root            string
	Plan            fontfix.Plan
	ContinueOnError bool
	Workers         int
}

// Server wraps the MCP server with the font tools.
type Server struct {
	mcp      *server.MCPServer
	logger   *slog.Logger
	defaults Defaults
}

// toolResult is the JSON body returned by the rewriting tools.
type toolResult struct {
	Report      *models.Report `json:"report"`
	Diagnostics string         `json:"diagnostics,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// New creates a new MCP server with all font tools registered.
func New(logger *slog.Logger, defaults Defaults) *Server {
	s := &Server{logger: logger, defaults: defaults}

	s.mcp = server.NewMCPServer(
		"fontfix",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	rootArg := mcp.WithString("root", mcp.Description("Unpacked package directory (defaults to the configured package root)"))
	continueArg := mcp.WithBoolean("continue_on_error", mcp.Description("Process every part and report all failures instead of stopping at the first"))

	s.mcp.AddTool(mcp.NewTool("fix_theme_font",
		mcp.WithDescription("Rebuild the font scheme of every ppt/theme/theme<N>.xml so the major and minor "+
			"groups name the given fonts for latin, east-asian, complex-script, symbol and Hangul text."),
		rootArg,
		mcp.WithString("major", mcp.Description("Major (heading) font family")),
		mcp.WithString("minor", mcp.Description("Minor (body) font family")),
		continueArg,
	), s.fixThemeFont)

	s.mcp.AddTool(mcp.NewTool("normalize_master_fonts",
		mcp.WithDescription("Point the presentation default text style and the slide master title and body "+
			"styles at the theme fonts, set the bullet font and the title/body bold flags."),
		rootArg,
		mcp.WithString("bullet_font", mcp.Description("Bullet typeface, e.g. +mn-lt to follow the minor font")),
		mcp.WithBoolean("major_bold", mcp.Description("Bold title style text")),
		mcp.WithBoolean("minor_bold", mcp.Description("Bold body style text")),
		continueArg,
	), s.normalizeMasterFonts)

	s.mcp.AddTool(mcp.NewTool("normalize_slide_fonts",
		mcp.WithDescription("Replace explicit typeface overrides on slides and layouts with the theme fonts "+
			"(mode=theme) or with the configured major/minor names (mode=explicit)."),
		rootArg,
		mcp.WithString("mode", mcp.Enum(string(fontfix.SlideModeTheme), string(fontfix.SlideModeExplicit)),
			mcp.Description("Replacement mode")),
		mcp.WithString("major", mcp.Description("Major font family for explicit mode")),
		mcp.WithString("minor", mcp.Description("Minor font family for explicit mode")),
		continueArg,
	), s.normalizeSlideFonts)

	s.mcp.AddTool(mcp.NewTool("inspect_theme_fonts",
		mcp.WithDescription("List the font scheme of every theme part without modifying anything."),
		rootArg,
	), s.inspectThemeFonts)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) fixThemeFont(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	plan := s.defaults.Plan
	plan.Passes = []string{fontfix.PassTheme}
	plan.Major = req.GetString("major", plan.Major)
	plan.Minor = req.GetString("minor", plan.Minor)
	return s.run(ctx, req, plan)
}

func (s *Server) normalizeMasterFonts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	plan := s.defaults.Plan
	plan.Passes = []string{fontfix.PassMaster}
	plan.Master.BulletFont = req.GetString("bullet_font", plan.Master.BulletFont)
	plan.Master.MajorBold = req.GetBool("major_bold", plan.Master.MajorBold)
	plan.Master.MinorBold = req.GetBool("minor_bold", plan.Master.MinorBold)
	return s.run(ctx, req, plan)
}

func (s *Server) normalizeSlideFonts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	plan := s.defaults.Plan
	plan.Passes = []string{fontfix.PassSlides}
	plan.Slides.Mode = fontfix.SlideMode(req.GetString("mode", string(plan.Slides.Mode)))
	plan.Slides.Major = req.GetString("major", plan.Slides.Major)
	plan.Slides.Minor = req.GetString("minor", plan.Slides.Minor)
	return s.run(ctx, req, plan)
}

func (s *Server) inspectThemeFonts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store, err := storage.NewFS(req.GetString("root", s.defaults.Root))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var out bytes.Buffer
	r := fontfix.New(store, fontfix.Options{Logger: s.logger, Out: &out})
	if err := r.InspectThemes(ctx, &out); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out.String()), nil
}

// rewriterOptions applies the configured run settings, letting the
// request override continue_on_error.
func (s *Server) rewriterOptions(req mcp.CallToolRequest, out io.Writer) fontfix.Options {
	return fontfix.Options{
		Logger:          s.logger,
		Out:             out,
		ContinueOnError: req.GetBool("continue_on_error", s.defaults.ContinueOnError),
		Workers:         s.defaults.Workers,
	}
}

// run executes plan against the requested package. Listings that the CLI
// prints to stdout are captured into the result instead, since stdout
// carries the protocol stream.
func (s *Server) run(ctx context.Context, req mcp.CallToolRequest, plan fontfix.Plan) (*mcp.CallToolResult, error) {
	if err := plan.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	store, err := storage.NewFS(req.GetString("root", s.defaults.Root))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var diag bytes.Buffer
	report, runErr := fontfix.New(store, s.rewriterOptions(req, &diag)).Run(ctx, plan)

	res := toolResult{Report: report, Diagnostics: diag.String()}
	if runErr != nil {
		res.Error = runErr.Error()
	}
	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		s.logger.Error("encode tool result", slog.String("error", err.Error()))
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	if runErr != nil {
		return mcp.NewToolResultError(string(out)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
