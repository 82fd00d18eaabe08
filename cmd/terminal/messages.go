package main

import (
	"github.com/sevigo/repo-pilot/internal/app"
	"github.com/sevigo/repo-pilot/internal/core"
)

// Indicates that the pipelines have been wired and the session resolved.
type servicesReadyMsg struct {
	services *app.Services
	sess     core.Session
	cleanup  func()
	err      error
}

// A listing of issues, pull requests, runs or stored analyses, as markdown.
type listLoadedMsg struct {
	markdown string
}

// A finished analysis. issue is set when the result can take feedback.
type resultMsg struct {
	markdown string
	issue    int
}

// A generic error message for reporting failures from commands.
type errorMsg struct{ err error }

func (e errorMsg) Error() string {
	return e.err.Error()
}
