package core

// Session holds the credentials resolved once per request. It is read only and is
// passed explicitly to every pipeline call.
type Session struct {
	GitHubToken string
	AIAPIKey    string
	AIModel     string
}

// RequireGitHub fails when no hosting token is available.
func (s Session) RequireGitHub() error {
	if s.GitHubToken == "" {
		return &ConfigurationError{Field: "GitHub token"}
	}
	return nil
}

// RequireAI fails when either the hosting token or the AI key is missing.
func (s Session) RequireAI() error {
	if err := s.RequireGitHub(); err != nil {
		return err
	}
	if s.AIAPIKey == "" {
		return &ConfigurationError{Field: "AI API key"}
	}
	return nil
}

// ModelOr returns the session model, or fallback when none was selected.
func (s Session) ModelOr(fallback string) string {
	if s.AIModel != "" {
		return s.AIModel
	}
	return fallback
}
