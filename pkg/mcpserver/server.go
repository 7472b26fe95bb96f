// Package mcpserver exposes the validators over the Model Context Protocol.
// Agent runtimes connect over stdio and call skill validation, corpus lint,
// and brand checks as tools while they draft skills and documents.
package mcpserver

import (
	"context"
	"encoding/json"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pkg/errors"

	"github.com/skillet-ai/skillet/pkg/brand"
	"github.com/skillet-ai/skillet/pkg/lint"
	"github.com/skillet-ai/skillet/pkg/skill"
	"github.com/skillet-ai/skillet/pkg/version"
)

const instructions = `skillet validates skill packages and brand-governed documents.

Call validate_skill before packaging a skill directory, lint_corpus after
editing guideline documents, and check_brand on any customer-facing copy.`

// Config carries the validation surface the server exposes.
type Config struct {
	// CorpusRoot is the documentation tree lint_corpus walks when the
	// caller does not name one. Default ".".
	CorpusRoot string
	// Guidelines backs check_brand. Nil means the embedded defaults.
	Guidelines *brand.Guidelines
	// Linter backs lint_corpus. Nil means a default linter over Guidelines.
	Linter *lint.Linter
}

// Server is a stdio MCP server over the skillet validators.
type Server struct {
	mcp        *server.MCPServer
	corpusRoot string
	validator  *brand.Validator
	linter     *lint.Linter
}

// New wires the tools into an MCP server instance.
func New(cfg Config) *Server {
	if cfg.CorpusRoot == "" {
		cfg.CorpusRoot = "."
	}
	if cfg.Guidelines == nil {
		cfg.Guidelines = brand.Default()
	}
	if cfg.Linter == nil {
		cfg.Linter = lint.New(lint.WithGuidelines(cfg.Guidelines))
	}

	s := &Server{
		corpusRoot: cfg.CorpusRoot,
		validator:  brand.NewValidator(cfg.Guidelines),
		linter:     cfg.Linter,
	}
	s.mcp = server.NewMCPServer(
		"skillet",
		version.Get().Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)
	s.registerTools()
	return s
}

// Serve speaks MCP over stdio until the context is cancelled or the client
// closes the stream.
func (s *Server) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcp)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

func (s *Server) registerTools() {
	validateSkill := mcp.NewTool("validate_skill",
		mcp.WithDescription("Validate a skill package directory: SKILL.md frontmatter, naming, size and layout limits. Returns errors, warnings, and package stats."),
		mcp.WithString("directory",
			mcp.Required(),
			mcp.Description("Path to the skill package directory"),
		),
	)
	s.mcp.AddTool(validateSkill, s.handleValidateSkill)

	lintCorpus := mcp.NewTool("lint_corpus",
		mcp.WithDescription("Lint the documentation corpus: palette tables that disagree with the brand guidelines, naming examples that do not parse, banned vendor tokens, broken skill manifests."),
		mcp.WithString("root",
			mcp.Description("Corpus root to lint (defaults to the configured corpus)"),
		),
	)
	s.mcp.AddTool(lintCorpus, s.handleLintCorpus)

	checkBrand := mcp.NewTool("check_brand",
		mcp.WithDescription("Check content for brand compliance: off-palette colors, unapproved fonts, prohibited words, brand-name casing, tone. Returns issues and a 0-100 score."),
		mcp.WithString("content",
			mcp.Description("Content to check inline"),
		),
		mcp.WithString("path",
			mcp.Description("File to check instead of inline content"),
		),
	)
	s.mcp.AddTool(checkBrand, s.handleCheckBrand)
}

func (s *Server) handleValidateSkill(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir, err := request.RequireString("directory")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(skill.Validate(dir))
}

func (s *Server) handleLintCorpus(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root := request.GetString("root", s.corpusRoot)
	report, err := s.linter.Run(root)
	if err != nil {
		return mcp.NewToolResultError(errors.Wrap(err, "linting corpus").Error()), nil
	}
	return jsonResult(report)
}

func (s *Server) handleCheckBrand(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content := request.GetString("content", "")
	path := request.GetString("path", "")

	switch {
	case content != "" && path != "":
		return mcp.NewToolResultError("pass either content or path, not both"), nil
	case content != "":
		return jsonResult(s.validator.CheckContent(content))
	case path != "":
		report, err := s.validator.CheckFile(path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(report)
	default:
		return mcp.NewToolResultError("content or path is required"), nil
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(errors.Wrap(err, "encoding result").Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
