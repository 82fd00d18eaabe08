package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"slices"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sevigo/repo-pilot/internal/session"
)

func main() {
	themeFlag := flag.String("theme", "", "UI theme (cyan, matrix, amber, dracula, light)")
	listThemes := flag.Bool("list-themes", false, "List all available themes")
	user := flag.String("user", "", "Profile whose stored settings are used")
	model := flag.String("model", "", "Gemini model overriding the per-task default")
	flag.Parse()

	if *listThemes {
		fmt.Println("Available themes:")
		for _, theme := range ListThemes() {
			fmt.Printf("  - %s\n", theme)
		}
		os.Exit(0)
	}

	selectedTheme := *themeFlag
	if selectedTheme == "" {
		selectedTheme = os.Getenv("REPO_PILOT_THEME")
	}
	if selectedTheme == "" {
		selectedTheme = string(ThemeCyan)
	}

	theme := ThemeName(selectedTheme)
	if !slices.Contains(ListThemes(), theme) {
		fmt.Printf("Invalid theme '%s'. Use --list-themes to see available options.\n", theme)
		os.Exit(1)
	}

	overrides := session.Overrides{UserID: *user, AIModel: *model}
	p := tea.NewProgram(initialModel(theme, overrides), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("error running program", "error", err)
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
