package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sevigo/repo-pilot/internal/app"
	"github.com/sevigo/repo-pilot/internal/core"
	"github.com/sevigo/repo-pilot/internal/gitutil"
	"github.com/sevigo/repo-pilot/internal/logger"
	"github.com/sevigo/repo-pilot/internal/pipeline"
	"github.com/sevigo/repo-pilot/internal/session"
	"github.com/sevigo/repo-pilot/internal/wire"
)

// initializeServicesCmd wires the pipelines. Logs go to the log file so they
// never draw over the UI.
func initializeServicesCmd(overrides session.Overrides) tea.Cmd {
	return func() tea.Msg {
		logFile, err := os.OpenFile(logger.DefaultLogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return servicesReadyMsg{err: fmt.Errorf("failed to open log file: %w", err)}
		}

		services, cleanup, err := wire.InitializeServices(logFile)
		if err != nil {
			_ = logFile.Close()
			return servicesReadyMsg{err: err}
		}
		sess, err := services.Sessions.Resolve(context.Background(), overrides)
		if err != nil {
			cleanup()
			_ = logFile.Close()
			return servicesReadyMsg{err: fmt.Errorf("failed to resolve credentials: %w", err)}
		}
		return servicesReadyMsg{
			services: services,
			sess:     sess,
			cleanup: func() {
				cleanup()
				_ = logFile.Close()
			},
		}
	}
}

// runner binds the services and session to one selected repository.
type runner struct {
	svc  *app.Services
	sess core.Session
	repo gitutil.Target
}

func (r runner) listIssues() tea.Cmd {
	return func() tea.Msg {
		issues, err := r.svc.Pipeline.ListIssues(context.Background(), r.sess, r.repo.Owner, r.repo.Repo)
		if err != nil {
			return errorMsg{err}
		}
		return listLoadedMsg{markdown: issuesMarkdown(r.repo.FullName(), issues)}
	}
}

func (r runner) listPulls() tea.Cmd {
	return func() tea.Msg {
		prs, err := r.svc.Pipeline.ListPullRequests(context.Background(), r.sess, r.repo.Owner, r.repo.Repo)
		if err != nil {
			return errorMsg{err}
		}
		return listLoadedMsg{markdown: pullsMarkdown(r.repo.FullName(), prs)}
	}
}

func (r runner) listRuns() tea.Cmd {
	return func() tea.Msg {
		runs, err := r.svc.Pipeline.ListWorkflowRuns(context.Background(), r.sess, r.repo.Owner, r.repo.Repo)
		if err != nil {
			return errorMsg{err}
		}
		return listLoadedMsg{markdown: runsMarkdown(r.repo.FullName(), runs)}
	}
}

func (r runner) analyzeIssue(number int, feedback string) tea.Cmd {
	return func() tea.Msg {
		a, err := r.svc.Pipeline.AnalyzeIssue(context.Background(), r.sess, r.repo.Owner, r.repo.Repo, number, feedback)
		if err != nil {
			return errorMsg{err}
		}
		return resultMsg{markdown: issueAnalysisMarkdown(number, a), issue: number}
	}
}

func (r runner) review(number int) tea.Cmd {
	return func() tea.Msg {
		review, err := r.svc.Pipeline.ReviewPullRequest(context.Background(), r.sess, r.repo.Owner, r.repo.Repo, number)
		if err != nil {
			return errorMsg{err}
		}
		return resultMsg{markdown: reviewMarkdown(number, review)}
	}
}

func (r runner) analyzeRun(runID int64) tea.Cmd {
	return func() tea.Msg {
		a, err := r.svc.Pipeline.AnalyzeWorkflowRun(context.Background(), r.sess, r.repo.Owner, r.repo.Repo, runID)
		if err != nil {
			return errorMsg{err}
		}
		return resultMsg{markdown: ciMarkdown(runID, a)}
	}
}

func (r runner) docs() tea.Cmd {
	return func() tea.Msg {
		doc, err := r.svc.Pipeline.GenerateDocumentation(context.Background(), r.sess, r.repo.Owner, r.repo.Repo)
		if err != nil {
			return errorMsg{err}
		}
		return resultMsg{markdown: doc.Content}
	}
}

func (r runner) triage(number int) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if number > 0 {
			t, err := r.svc.Pipeline.TriageIssue(ctx, r.sess, r.repo.Owner, r.repo.Repo, number)
			if err != nil {
				return errorMsg{err}
			}
			return resultMsg{markdown: triageMarkdown(number, t)}
		}
		report, err := r.svc.Pipeline.RunTriagePass(ctx, r.sess, r.repo.Owner, r.repo.Repo)
		if err != nil {
			return errorMsg{err}
		}
		return resultMsg{markdown: scanMarkdown("Triage pass", report)}
	}
}

func (r runner) weeklyScan() tea.Cmd {
	return func() tea.Msg {
		report, err := r.svc.Pipeline.RunWeeklyScan(context.Background(), r.sess, r.repo.Owner, r.repo.Repo)
		if err != nil {
			return errorMsg{err}
		}
		return resultMsg{markdown: scanMarkdown("Weekly scan", report)}
	}
}

func (r runner) apply(source pipeline.ProposalSource, number int64) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		proposal, err := r.svc.Pipeline.StoredProposal(ctx, r.repo.Owner, r.repo.Repo, source, number)
		if err != nil {
			return errorMsg{err}
		}
		result, err := r.svc.Pipeline.ApplyFix(ctx, r.sess, r.repo.Owner, r.repo.Repo, proposal)
		if err != nil {
			return errorMsg{err}
		}
		return resultMsg{markdown: publishMarkdown(result)}
	}
}

// show renders a stored analysis without calling the model again.
func (r runner) show(source string, number int64) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		store := r.svc.Store
		switch source {
		case "docs":
			rec, err := store.GetDocumentation(ctx, r.repo.Owner, r.repo.Repo)
			if err != nil {
				return errorMsg{err}
			}
			return resultMsg{markdown: rec.Result.Content}
		case string(pipeline.SourceIssue):
			rec, err := store.GetIssueAnalysis(ctx, r.repo.Owner, r.repo.Repo, int(number))
			if err != nil {
				return errorMsg{err}
			}
			return resultMsg{markdown: issueAnalysisMarkdown(int(number), rec.Result), issue: int(number)}
		case string(pipeline.SourcePR):
			rec, err := store.GetPRReview(ctx, r.repo.Owner, r.repo.Repo, int(number))
			if err != nil {
				return errorMsg{err}
			}
			return resultMsg{markdown: reviewMarkdown(int(number), rec.Result)}
		case string(pipeline.SourceCI):
			rec, err := store.GetCIAnalysis(ctx, r.repo.Owner, r.repo.Repo, number)
			if err != nil {
				return errorMsg{err}
			}
			return resultMsg{markdown: ciMarkdown(number, rec.Result)}
		default:
			return errorMsg{fmt.Errorf("unknown result kind %q, expected issue, pr, ci or docs", source)}
		}
	}
}
