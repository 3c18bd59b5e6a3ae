package requirement

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"qaforge/internal/logging"
)

// JiraClient fetches issues from the Jira Cloud REST API (v3).
type JiraClient struct {
	baseURL    string
	email      string
	token      string
	httpClient *http.Client
}

// NewJiraClient creates a client for the given Jira domain. Domain may be
// given bare ("example.atlassian.net") or with scheme.
func NewJiraClient(domain, email, token string, timeout time.Duration) *JiraClient {
	base := domain
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	base = strings.TrimRight(base, "/")

	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &JiraClient{
		baseURL:    base,
		email:      email,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// issueResponse mirrors the subset of the issue payload we read.
type issueResponse struct {
	Key    string `json:"key"`
	Fields struct {
		Summary     string          `json:"summary"`
		Description json.RawMessage `json:"description"`
	} `json:"fields"`
}

// Fetch retrieves an issue and flattens its description into plain text.
// An issue with no description falls back to the summary.
func (c *JiraClient) Fetch(ctx context.Context, key string) (*Document, error) {
	url := fmt.Sprintf("%s/rest/api/3/issue/%s", c.baseURL, key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("jira request for %s: %w", key, err)
	}
	req.SetBasicAuth(c.email, c.token)
	req.Header.Set("Accept", "application/json")

	logging.Requirement("Fetching Jira issue %s", key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jira fetch %s: %w", key, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("jira fetch %s: read body: %w", key, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jira fetch %s: status %d: %s", key, resp.StatusCode, truncate(string(body), 200))
	}

	var issue issueResponse
	if err := json.Unmarshal(body, &issue); err != nil {
		return nil, fmt.Errorf("jira fetch %s: parse response: %w", key, err)
	}

	text := extractDescription(issue.Fields.Description)
	if text == "" {
		text = issue.Fields.Summary
	}
	if text == "" {
		return nil, fmt.Errorf("jira issue %s has no usable text", key)
	}

	logging.Requirement("Fetched %s: %d chars", key, len(text))

	return &Document{
		Key:       key,
		Summary:   issue.Fields.Summary,
		Text:      text,
		FetchedAt: time.Now(),
	}, nil
}

// extractDescription handles both ADF documents and legacy plain-string
// descriptions.
func extractDescription(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return strings.TrimSpace(plain)
	}

	var node adfNode
	if err := json.Unmarshal(raw, &node); err != nil {
		return ""
	}
	return strings.TrimSpace(extractADFText(&node))
}

// adfNode is a node in an Atlassian Document Format tree.
type adfNode struct {
	Type    string    `json:"type"`
	Text    string    `json:"text"`
	Content []adfNode `json:"content"`
}

// extractADFText walks the ADF tree in document order collecting text nodes.
// Block-level nodes contribute a newline separator.
func extractADFText(node *adfNode) string {
	var sb strings.Builder
	walkADF(node, &sb)
	return sb.String()
}

func walkADF(node *adfNode, sb *strings.Builder) {
	if node.Type == "text" {
		sb.WriteString(node.Text)
		return
	}

	for i := range node.Content {
		walkADF(&node.Content[i], sb)
	}

	switch node.Type {
	case "paragraph", "heading", "listItem", "codeBlock", "blockquote":
		sb.WriteString("\n")
	case "hardBreak":
		sb.WriteString("\n")
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
