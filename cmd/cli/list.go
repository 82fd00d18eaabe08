package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sevigo/repo-pilot/internal/core"
	"github.com/sevigo/repo-pilot/internal/gitutil"
)

var listCmd = &cobra.Command{
	Use:       "list <issues|pulls|runs> <owner/repo>",
	Short:     "List open issues, open pull requests or recent workflow runs",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"issues", "pulls", "runs"},
	RunE: func(_ *cobra.Command, args []string) error {
		t, err := target(args[1:], gitutil.KindRepo)
		if err != nil {
			return err
		}
		ctx := context.Background()
		return withServices(ctx, func(r *runner) error {
			switch args[0] {
			case "issues":
				issues, err := r.Pipeline.ListIssues(ctx, r.sess, t.Owner, t.Repo)
				if err != nil {
					return fmt.Errorf("failed to list issues: %w", err)
				}
				return printIssues(issues)
			case "pulls":
				prs, err := r.Pipeline.ListPullRequests(ctx, r.sess, t.Owner, t.Repo)
				if err != nil {
					return fmt.Errorf("failed to list pull requests: %w", err)
				}
				return printPullRequests(prs)
			case "runs":
				runs, err := r.Pipeline.ListWorkflowRuns(ctx, r.sess, t.Owner, t.Repo)
				if err != nil {
					return fmt.Errorf("failed to list workflow runs: %w", err)
				}
				return printRuns(runs)
			default:
				return fmt.Errorf("unknown list %q, expected issues, pulls or runs", args[0])
			}
		})
	},
}

func printIssues(issues []*core.Issue) error {
	if outputJSON {
		return printJSON(issues)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NUMBER\tTITLE\tAUTHOR\tLABELS\tOPENED")
	for _, i := range issues {
		labels := ""
		for n, l := range i.Labels {
			if n > 0 {
				labels += ","
			}
			labels += l.Name
		}
		fmt.Fprintf(w, "#%d\t%s\t%s\t%s\t%s\n", i.Number, i.Title, i.User.Login, labels, i.CreatedAt.Format(time.RFC822))
	}
	return w.Flush()
}

func printPullRequests(prs []*core.PullRequest) error {
	if outputJSON {
		return printJSON(prs)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NUMBER\tTITLE\tAUTHOR\tBRANCH")
	for _, pr := range prs {
		fmt.Fprintf(w, "#%d\t%s\t%s\t%s -> %s\n", pr.Number, pr.Title, pr.User.Login, pr.HeadRef, pr.BaseRef)
	}
	return w.Flush()
}

func printRuns(runs []*core.WorkflowRun) error {
	if outputJSON {
		return printJSON(runs)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tWORKFLOW\tBRANCH\tSTATUS\tCONCLUSION\tSTARTED")
	for _, run := range runs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", run.ID, run.Name, run.HeadBranch, run.Status, run.Conclusion, run.CreatedAt.Format(time.RFC822))
	}
	return w.Flush()
}

var showCmd = &cobra.Command{
	Use:   "show <issue|pr|ci|docs> <owner/repo> [number]",
	Short: "Show stored analysis results",
	Long: `Show a stored analysis. Without a number, every stored analysis of that
kind for the repository is listed.`,
	Args:      cobra.RangeArgs(2, 3),
	ValidArgs: []string{"issue", "pr", "ci", "docs"},
	RunE: func(_ *cobra.Command, args []string) error {
		t, err := target(args[1:2], gitutil.KindRepo)
		if err != nil {
			return err
		}
		var number int64
		if len(args) == 3 {
			if number, err = parseNumber(args[2]); err != nil {
				return err
			}
		}
		ctx := context.Background()
		return withServices(ctx, func(r *runner) error {
			return showStored(ctx, r, args[0], t, number)
		})
	},
}

func showStored(ctx context.Context, r *runner, kind string, t gitutil.Target, number int64) error {
	switch {
	case kind == "docs":
		rec, err := r.Store.GetDocumentation(ctx, t.Owner, t.Repo)
		if err != nil {
			return fmt.Errorf("failed to load documentation: %w", err)
		}
		if outputJSON {
			return printJSON(rec)
		}
		dimColor.Printf("Generated %s\n", rec.UpdatedAt.Format(time.RFC822))
		printMarkdown(rec.Result.Content)
	case kind == "issue" && number > 0:
		rec, err := r.Store.GetIssueAnalysis(ctx, t.Owner, t.Repo, int(number))
		if err != nil {
			return fmt.Errorf("failed to load issue analysis: %w", err)
		}
		if outputJSON {
			return printJSON(rec)
		}
		printIssueAnalysis(rec.Result)
	case kind == "pr" && number > 0:
		rec, err := r.Store.GetPRReview(ctx, t.Owner, t.Repo, int(number))
		if err != nil {
			return fmt.Errorf("failed to load review: %w", err)
		}
		if outputJSON {
			return printJSON(rec)
		}
		printReview(rec.Result)
	case kind == "ci" && number > 0:
		rec, err := r.Store.GetCIAnalysis(ctx, t.Owner, t.Repo, number)
		if err != nil {
			return fmt.Errorf("failed to load CI analysis: %w", err)
		}
		if outputJSON {
			return printJSON(rec)
		}
		printCIAnalysis(rec.Result)
	default:
		return listStored(ctx, r, kind, t)
	}
	return nil
}

type storedRow struct {
	Number    int64     `json:"number"`
	Summary   string    `json:"summary"`
	Fix       bool      `json:"fix"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func listStored(ctx context.Context, r *runner, kind string, t gitutil.Target) error {
	var rows []storedRow
	switch kind {
	case "issue":
		recs, err := r.Store.ListIssueAnalyses(ctx, t.Owner, t.Repo)
		if err != nil {
			return fmt.Errorf("failed to list issue analyses: %w", err)
		}
		for _, rec := range recs {
			rows = append(rows, storedRow{rec.Number, string(rec.Result.Complexity), rec.Result.Fix != nil, rec.UpdatedAt})
		}
	case "pr":
		recs, err := r.Store.ListPRReviews(ctx, t.Owner, t.Repo)
		if err != nil {
			return fmt.Errorf("failed to list reviews: %w", err)
		}
		for _, rec := range recs {
			summary := fmt.Sprintf("%s (%d/100)", rec.Result.Status, rec.Result.Score)
			rows = append(rows, storedRow{rec.Number, summary, rec.Result.Fix != nil, rec.UpdatedAt})
		}
	case "ci":
		recs, err := r.Store.ListCIAnalyses(ctx, t.Owner, t.Repo)
		if err != nil {
			return fmt.Errorf("failed to list CI analyses: %w", err)
		}
		for _, rec := range recs {
			rows = append(rows, storedRow{rec.Number, truncate(rec.Result.Analysis, 60), rec.Result.Fix != nil, rec.UpdatedAt})
		}
	default:
		return fmt.Errorf("unknown kind %q, expected issue, pr, ci or docs", kind)
	}

	if outputJSON {
		return printJSON(rows)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NUMBER\tSUMMARY\tFIX\tUPDATED")
	for _, row := range rows {
		fix := "-"
		if row.Fix {
			fix = "yes"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", row.Number, row.Summary, fix, row.UpdatedAt.Format(time.RFC822))
	}
	return w.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func init() { //nolint:gochecknoinits // Cobra command registration
	rootCmd.AddCommand(listCmd, showCmd)
}
