package config

// LLMConfig configures the text-generation backend.
type LLMConfig struct {
	Provider string `yaml:"provider"` // openai, gemini
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`
}

// JiraConfig configures the Jira requirement source.
type JiraConfig struct {
	// Domain is the Jira site, with or without scheme
	// (e.g. "myteam.atlassian.net" or "https://myteam.atlassian.net").
	Domain   string `yaml:"domain"`
	Email    string `yaml:"email"`
	APIToken string `yaml:"api_token"`
	IssueKey string `yaml:"issue_key"`
	Timeout  string `yaml:"timeout"`
}
