package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/sevigo/repo-pilot/internal/app"
	"github.com/sevigo/repo-pilot/internal/core"
	"github.com/sevigo/repo-pilot/internal/gitutil"
	"github.com/sevigo/repo-pilot/internal/pipeline"
	"github.com/sevigo/repo-pilot/internal/session"
)

const asciiLogo = `
   ██████╗ ███████╗██████╗  ██████╗     ██████╗ ██╗██╗      ██████╗ ████████╗
   ██╔══██╗██╔════╝██╔══██╗██╔═══██╗    ██╔══██╗██║██║     ██╔═══██╗╚══██╔══╝
   ██████╔╝█████╗  ██████╔╝██║   ██║    ██████╔╝██║██║     ██║   ██║   ██║
   ██╔══██╗██╔══╝  ██╔═══╝ ██║   ██║    ██╔═══╝ ██║██║     ██║   ██║   ██║
   ██║  ██║███████╗██║     ╚██████╔╝    ██║     ██║███████╗╚██████╔╝   ██║
   ╚═╝  ╚═╝╚══════╝╚═╝      ╚═════╝     ╚═╝     ╚═╝╚══════╝ ╚═════╝    ╚═╝

                     ISSUES · REVIEWS · CI · FIXES
`

const helpText = `
  /repo [owner/repo]          Select the repository to work on.
  /issues, /pulls, /runs      List open issues, open pull requests or recent runs.
  /issue [number] [feedback]  Analyze an issue, optionally with feedback.
  /review [number]            Review a pull request.
  /ci [run-id]                Find the root cause of a failed workflow run.
  /docs                       Generate documentation from the README.
  /triage [number]            Triage one issue, or every untriaged issue.
  /scan                       Follow up on issues waiting for information.
  /show [issue|pr|ci|docs] [number]  Show a stored result.
  /apply [issue|pr|ci] [number]      Publish a stored fix as a pull request.
  /help                       Show this help message.
  /exit, /quit                Exit Repo Pilot.`

type model struct {
	styles    styles
	theme     ThemeName
	overrides session.Overrides

	services *app.Services
	sess     core.Session
	cleanup  func()

	// UI Components
	viewport  viewport.Model
	textarea  textarea.Model
	spinner   spinner.Model
	renderer  *glamour.TermRenderer
	isLoading bool

	// Session State
	repo      gitutil.Target
	lastIssue int
	history   []string
}

func initialModel(theme ThemeName, overrides session.Overrides) *model {
	styles := GetTheme(theme)
	ta := textarea.New()
	ta.Placeholder = "Enter a command, or feedback on the last issue analysis..."
	ta.Focus()
	ta.Prompt = styles.prompt.Render("► ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(palettes[theme].Primary)

	return &model{
		styles:    styles,
		theme:     theme,
		overrides: overrides,
		textarea:  ta,
		spinner:   sp,
		isLoading: true,
		history:   []string{styles.ascii.Render(asciiLogo), "", "⚙ CONNECTING TO GITHUB AND GEMINI..."},
	}
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(initializeServicesCmd(m.overrides), m.spinner.Tick)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	m.spinner, spCmd = m.spinner.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, m.quit()
		case tea.KeyEnter:
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}

			m.textarea.Reset()
			return m, m.processCommand(input)
		}

	case servicesReadyMsg:
		m.isLoading = false
		if msg.err != nil {
			m.appendLines("", m.styles.error.Render(msg.err.Error()))
			return m, nil
		}
		m.services, m.sess, m.cleanup = msg.services, msg.sess, msg.cleanup
		m.appendLines("", m.styles.success.Render("✓ SYSTEM ONLINE"))
		if m.sess.RequireGitHub() != nil {
			m.appendLines(m.styles.warning.Render("No GitHub token configured. Set GITHUB_TOKEN or use --user with a stored profile."))
		}
		if m.sess.RequireAI() != nil {
			m.appendLines(m.styles.warning.Render("No Gemini API key configured. Analyses will fail until GEMINI_API_KEY is set."))
		}
		m.appendLines("", "Select a repository with /repo owner/repo. Type /help for commands.")
		return m, nil

	case listLoadedMsg:
		m.isLoading = false
		m.appendLines("", m.render(msg.markdown))
		return m, nil

	case resultMsg:
		m.isLoading = false
		if msg.issue > 0 {
			m.lastIssue = msg.issue
		}
		m.appendLines("", m.render(msg.markdown))
		return m, nil

	case errorMsg:
		m.isLoading = false
		m.appendLines("", m.styles.error.Render("⚠ "+msg.err.Error()))
		return m, nil

	case tea.WindowSizeMsg:
		m.styles.header.Width(msg.Width - 4)
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - 10
		m.textarea.SetWidth(msg.Width - 10)
		m.renderer = newRenderer(m.theme, msg.Width-8)
		m.viewport.SetContent(strings.Join(m.history, "\n"))
	}

	return m, tea.Batch(tiCmd, vpCmd, spCmd)
}

func (m *model) View() string {
	if m.services == nil && m.isLoading {
		return fmt.Sprintf("\n  %s BOOTING SYSTEM...\n\n", m.spinner.View())
	}

	var statusParts []string
	if m.repo.Owner != "" {
		statusParts = append(statusParts, "REPO: "+m.repo.FullName())
	} else {
		statusParts = append(statusParts, "REPO: None Selected")
	}
	if m.lastIssue > 0 {
		statusParts = append(statusParts, fmt.Sprintf("FEEDBACK → #%d", m.lastIssue))
	}
	if m.sess.AIModel != "" {
		statusParts = append(statusParts, "🤖 "+m.sess.AIModel)
	} else if m.services != nil {
		statusParts = append(statusParts, "🤖 per-task defaults")
	}
	if m.services != nil && m.services.Cfg.Database.Enabled() {
		statusParts = append(statusParts, m.styles.success.Render("● POSTGRES"))
	} else {
		statusParts = append(statusParts, m.styles.inactive.Render("○ IN-MEMORY"))
	}

	status := m.styles.inactive.Render(strings.Join(statusParts, " │ "))

	var loadingIndicator string
	if m.isLoading {
		loadingIndicator = " " + m.spinner.View() + " " + m.styles.success.Render("PROCESSING...")
	}

	return m.styles.app.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.styles.viewport.Render(m.viewport.View()),
			"",
			m.styles.footer.Render(
				lipgloss.JoinHorizontal(lipgloss.Left,
					m.textarea.View(),
					loadingIndicator,
				),
			),
			status,
		),
	)
}

func (m *model) quit() tea.Cmd {
	if m.cleanup != nil {
		m.cleanup()
		m.cleanup = nil
	}
	return tea.Quit
}

func (m *model) appendLines(lines ...string) {
	m.history = append(m.history, lines...)
	m.viewport.SetContent(strings.Join(m.history, "\n"))
	m.viewport.GotoBottom()
}

func (m *model) render(md string) string {
	if m.renderer == nil {
		return md
	}
	out, err := m.renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func (m *model) usage(text string) tea.Cmd {
	m.appendLines("", m.styles.error.Render("USAGE: "+text))
	return nil
}

// start marks the model busy and runs cmd.
func (m *model) start(note string, cmd tea.Cmd) tea.Cmd {
	m.isLoading = true
	m.appendLines("", m.styles.command.Render("→ "+note))
	return tea.Batch(m.spinner.Tick, cmd)
}

func (m *model) processCommand(input string) tea.Cmd {
	m.appendLines(m.styles.prompt.Render("► ") + input)

	parts := strings.Fields(input)
	command := parts[0]
	args := parts[1:]

	switch command {
	case "/help", "/h":
		m.appendLines("", m.styles.success.Render("AVAILABLE COMMANDS:")+helpText)
		return nil
	case "/exit", "/quit":
		return m.quit()
	}

	if m.services == nil {
		m.appendLines("", m.styles.error.Render("Services are not available. Check the configuration and restart."))
		return nil
	}
	if m.isLoading {
		m.appendLines(m.styles.inactive.Render("Still working on the previous command."))
		return nil
	}

	if command == "/repo" {
		if len(args) != 1 {
			return m.usage("/repo [owner/repo]")
		}
		t, err := gitutil.ParseTarget(args[0])
		if err != nil {
			m.appendLines("", m.styles.error.Render(err.Error()))
			return nil
		}
		t.Kind, t.Number = gitutil.KindRepo, 0
		m.repo, m.lastIssue = t, 0
		m.appendLines(m.styles.success.Render("✓ Context set to repository: " + t.FullName()))
		return m.start("Loading open issues...", m.runner().listIssues())
	}

	if m.repo.Owner == "" {
		m.appendLines("", m.styles.error.Render("No repository is selected. Use '/repo owner/repo' first."))
		return nil
	}
	r := m.runner()

	switch command {
	case "/issues":
		return m.start("Loading open issues...", r.listIssues())
	case "/pulls", "/prs":
		return m.start("Loading open pull requests...", r.listPulls())
	case "/runs":
		return m.start("Loading workflow runs...", r.listRuns())

	case "/issue":
		n, ok := numberArg(args)
		if !ok {
			return m.usage("/issue [number] [feedback]")
		}
		feedback := strings.Join(args[1:], " ")
		return m.start(fmt.Sprintf("Analyzing issue #%d...", n), r.analyzeIssue(int(n), feedback))

	case "/review":
		n, ok := numberArg(args)
		if !ok {
			return m.usage("/review [number]")
		}
		return m.start(fmt.Sprintf("Reviewing pull request #%d...", n), r.review(int(n)))

	case "/ci":
		n, ok := numberArg(args)
		if !ok {
			return m.usage("/ci [run-id]")
		}
		return m.start(fmt.Sprintf("Analyzing workflow run %d...", n), r.analyzeRun(n))

	case "/docs":
		return m.start("Generating documentation...", r.docs())

	case "/triage":
		if len(args) == 0 {
			return m.start("Triaging open issues...", r.triage(0))
		}
		n, ok := numberArg(args)
		if !ok {
			return m.usage("/triage [number]")
		}
		return m.start(fmt.Sprintf("Triaging issue #%d...", n), r.triage(int(n)))

	case "/scan":
		return m.start("Scanning issues waiting for information...", r.weeklyScan())

	case "/show":
		if len(args) == 1 && args[0] == "docs" {
			return m.start("Loading stored documentation...", r.show("docs", 0))
		}
		if len(args) != 2 {
			return m.usage("/show [issue|pr|ci|docs] [number]")
		}
		n, ok := numberArg(args[1:])
		if !ok {
			return m.usage("/show [issue|pr|ci|docs] [number]")
		}
		return m.start("Loading stored result...", r.show(args[0], n))

	case "/apply":
		if len(args) != 2 {
			return m.usage("/apply [issue|pr|ci] [number]")
		}
		source := pipeline.ProposalSource(args[0])
		switch source {
		case pipeline.SourceIssue, pipeline.SourcePR, pipeline.SourceCI:
		default:
			return m.usage("/apply [issue|pr|ci] [number]")
		}
		n, ok := numberArg(args[1:])
		if !ok {
			return m.usage("/apply [issue|pr|ci] [number]")
		}
		return m.start("Publishing fix...", r.apply(source, n))

	default:
		if strings.HasPrefix(command, "/") {
			m.appendLines("", m.styles.error.Render("UNKNOWN COMMAND: "+command), m.styles.inactive.Render("Type /help for assistance."))
			return nil
		}
		// Free text is feedback on the last analyzed issue.
		if m.lastIssue == 0 {
			m.appendLines("", m.styles.inactive.Render("Analyze an issue with /issue first, then type feedback to refine it."))
			return nil
		}
		return m.start(fmt.Sprintf("Re-analyzing issue #%d with your feedback...", m.lastIssue), r.analyzeIssue(m.lastIssue, input))
	}
}

func (m *model) runner() runner {
	return runner{svc: m.services, sess: m.sess, repo: m.repo}
}

func numberArg(args []string) (int64, bool) {
	if len(args) == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
