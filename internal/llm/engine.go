// Package llm turns repository context into schema-constrained model output and
// validates it before anything else sees it.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sevigo/repo-pilot/internal/config"
	"github.com/sevigo/repo-pilot/internal/core"
)

// thinkingBudgets is the reasoning token allowance per task.
var thinkingBudgets = map[core.Task]int32{
	core.TaskIssueAnalysis: 4000,
	core.TaskPRReview:      8000,
	core.TaskCIAnalysis:    8000,
	core.TaskDocumentation: 5000,
	core.TaskTriage:        2000,
}

// GenerateOptions carries the caller's credentials for one call. An empty Model
// selects the configured default for the task.
type GenerateOptions struct {
	APIKey string
	Model  string
}

// BundleOption adjusts the context bundle built by the typed helpers.
type BundleOption func(b *core.ContextBundle)

// WithInstructions adds repository-specific instructions to the prompt.
func WithInstructions(instructions []string) BundleOption {
	return func(b *core.ContextBundle) {
		b.Instructions = instructions
	}
}

// Engine renders prompts, calls the model and returns validated results.
type Engine struct {
	prompts   *PromptManager
	generator Generator
	models    map[core.Task]string
	logger    *slog.Logger
}

// NewEngine creates an Engine using the default model per task from cfg.
func NewEngine(prompts *PromptManager, generator Generator, cfg config.AIConfig, logger *slog.Logger) *Engine {
	return &Engine{
		prompts:   prompts,
		generator: generator,
		models: map[core.Task]string{
			core.TaskIssueAnalysis: cfg.IssueModel,
			core.TaskTriage:        cfg.TriageModel,
			core.TaskPRReview:      cfg.ReviewModel,
			core.TaskCIAnalysis:    cfg.CIModel,
			core.TaskDocumentation: cfg.DocsModel,
		},
		logger: logger,
	}
}

// DefaultModel returns the configured model for task.
func (e *Engine) DefaultModel(task core.Task) string {
	return e.models[task]
}

type promptData struct {
	Repo         core.Repository
	Issue        *core.Issue
	PR           *core.PullRequest
	Diff         string
	Files        string
	Logs         string
	Structure    string
	Readme       string
	Feedback     string
	Instructions []string
}

func newPromptData(task core.Task, b *core.ContextBundle) promptData {
	return promptData{
		Repo:         b.Repo,
		Issue:        b.Issue,
		PR:           b.PR,
		Diff:         b.TruncatedDiff(),
		Files:        b.TruncatedFiles(),
		Logs:         b.TruncatedLogs(),
		Structure:    b.TruncatedStructure(task),
		Readme:       b.TruncatedReadme(),
		Feedback:     b.Feedback,
		Instructions: b.Instructions,
	}
}

func checkBundle(task core.Task, b *core.ContextBundle) error {
	if b == nil {
		return &core.ValidationError{Reason: "context bundle is missing"}
	}
	switch task {
	case core.TaskIssueAnalysis, core.TaskTriage:
		if b.Issue == nil {
			return &core.ValidationError{Reason: fmt.Sprintf("%s requires an issue", task)}
		}
	case core.TaskPRReview:
		if b.PR == nil {
			return &core.ValidationError{Reason: "pr_review requires a pull request"}
		}
	case core.TaskCIAnalysis, core.TaskDocumentation:
	default:
		return fmt.Errorf("unknown task %q", task)
	}
	return nil
}

// Generate runs one analysis. The returned result has already passed the
// actionability check, so any fix it carries can be published as-is.
func (e *Engine) Generate(ctx context.Context, task core.Task, bundle *core.ContextBundle, opts GenerateOptions) (core.AnalysisResult, error) {
	if opts.APIKey == "" {
		return nil, &core.ConfigurationError{Field: "AI API key"}
	}
	if err := checkBundle(task, bundle); err != nil {
		return nil, err
	}

	prompt, err := e.prompts.Render(PromptKeyFor(task), DefaultProvider, newPromptData(task, bundle))
	if err != nil {
		return nil, fmt.Errorf("failed to render %s prompt: %w", task, err)
	}
	schema, err := ResponseSchema(task)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s response schema: %w", task, err)
	}

	model := opts.Model
	if model == "" {
		model = e.models[task]
	}

	start := time.Now()
	raw, err := e.generator.Generate(ctx, Request{
		APIKey:         opts.APIKey,
		Model:          model,
		Prompt:         prompt,
		Schema:         schema,
		ThinkingBudget: thinkingBudgets[task],
	})
	if err != nil {
		var provErr *core.AIProviderError
		if errors.As(err, &provErr) {
			return nil, err
		}
		return nil, &core.AIProviderError{Message: err.Error(), Err: err}
	}

	result, err := parseResult(task, raw)
	if err != nil {
		e.logger.Warn("model response could not be parsed", "task", task, "model", model, "error", err)
		return nil, err
	}
	e.logger.Info("analysis generated", "task", task, "model", model, "repo", bundle.Repo.DisplayName(), "duration", time.Since(start))
	return result, nil
}

func generateAs[T core.AnalysisResult](ctx context.Context, e *Engine, task core.Task, bundle *core.ContextBundle, opts GenerateOptions) (T, error) {
	var zero T
	result, err := e.Generate(ctx, task, bundle, opts)
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("unexpected result type %T for %s", result, task)
	}
	return typed, nil
}

func applyOptions(b *core.ContextBundle, opts []BundleOption) *core.ContextBundle {
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AnalyzeIssue proposes an implementation plan, and possibly a fix, for an issue.
// Feedback on a previous proposal is embedded in the prompt when non-empty.
func (e *Engine) AnalyzeIssue(ctx context.Context, issue *core.Issue, repo core.Repository, structure, aiKey, feedback, model string, opts ...BundleOption) (*core.IssueAnalysis, error) {
	bundle := applyOptions(&core.ContextBundle{Repo: repo, Issue: issue, Structure: structure, Feedback: feedback}, opts)
	return generateAs[*core.IssueAnalysis](ctx, e, core.TaskIssueAnalysis, bundle, GenerateOptions{APIKey: aiKey, Model: model})
}

// ReviewPullRequest reviews a pull request whose Diff and Files are already loaded.
func (e *Engine) ReviewPullRequest(ctx context.Context, pr *core.PullRequest, diff string, files []core.FileContext, repo core.Repository, aiKey, model string, opts ...BundleOption) (*core.PRReview, error) {
	bundle := applyOptions(&core.ContextBundle{Repo: repo, PR: pr, Diff: diff, Files: files}, opts)
	return generateAs[*core.PRReview](ctx, e, core.TaskPRReview, bundle, GenerateOptions{APIKey: aiKey, Model: model})
}

// AnalyzeWorkflowFailure finds the root cause of a failed CI job from its logs.
func (e *Engine) AnalyzeWorkflowFailure(ctx context.Context, logs string, repo core.Repository, structure, aiKey, model string, opts ...BundleOption) (*core.CIAnalysis, error) {
	bundle := applyOptions(&core.ContextBundle{Repo: repo, Logs: logs, Structure: structure}, opts)
	return generateAs[*core.CIAnalysis](ctx, e, core.TaskCIAnalysis, bundle, GenerateOptions{APIKey: aiKey, Model: model})
}

// TriageIssue decides whether an issue carries enough information to be worked on.
func (e *Engine) TriageIssue(ctx context.Context, issue *core.Issue, aiKey, model string) (*core.TriageResult, error) {
	bundle := &core.ContextBundle{Issue: issue}
	return generateAs[*core.TriageResult](ctx, e, core.TaskTriage, bundle, GenerateOptions{APIKey: aiKey, Model: model})
}

// GenerateDocumentation writes technical documentation from the README.
func (e *Engine) GenerateDocumentation(ctx context.Context, repo core.Repository, readme, aiKey, model string) (*core.Documentation, error) {
	bundle := &core.ContextBundle{Repo: repo, Readme: readme}
	return generateAs[*core.Documentation](ctx, e, core.TaskDocumentation, bundle, GenerateOptions{APIKey: aiKey, Model: model})
}
