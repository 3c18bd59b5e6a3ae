package generation

import (
	"fmt"

	"qaforge/internal/config"
	"qaforge/internal/requirement"
)

// Framework prompt conventions. Each template pins the demo target site and
// the stability rules that keep generated suites from flaking.

const cypressSystemPrompt = `You are a senior QA automation engineer. You write Cypress end-to-end tests in JavaScript.
Rules:
- Output ONLY JavaScript test code, no markdown, no explanations.
- Use https://the-internet.herokuapp.com/login as the application under test.
- Valid credentials: username "tomsmith", password "SuperSecretPassword!".
- Add cy.wait(3000) after each form submission to let the page settle.
- Use { timeout: 10000 } on assertions that wait for navigation or flash messages.
- Verify the /secure redirect after a successful login.
- Assert on the .flash message element for both success and error cases.
- Cover at least one positive and one negative credential scenario.`

const playwrightSystemPrompt = `You are a senior QA automation engineer. You write Playwright tests in JavaScript.
Rules:
- Output ONLY JavaScript test code, no markdown, no explanations.
- Use the @playwright/test runner: test.describe, test, expect.
- Use https://the-internet.herokuapp.com/login as the application under test.
- Valid credentials: username "tomsmith", password "SuperSecretPassword!".
- Navigate with page.goto and assert with expect(page) / expect(locator).
- Verify the /secure URL after a successful login.
- Assert on the .flash message for both success and error cases.
- Cover at least one positive and one negative credential scenario.`

const apiSystemPrompt = `You are a senior QA automation engineer. You write API tests in JavaScript using jest and supertest.
Rules:
- Output ONLY JavaScript test code, no markdown, no explanations.
- Use supertest against https://the-internet.herokuapp.com.
- Test the HTTP surface of the requirement: request the relevant endpoints and
  assert on status codes, redirects and response bodies.
- Cover at least one success and one failure scenario.
- Do not start a server; target the remote base URL directly.`

// PromptFor returns the system and user prompt for generating a suite of the
// given framework from a requirement document.
func PromptFor(spec config.FrameworkSpec, doc *requirement.Document) (system, user string) {
	switch spec.Name {
	case "playwright":
		system = playwrightSystemPrompt
	case "api":
		system = apiSystemPrompt
	default:
		if spec.Kind == config.KindAPI {
			system = apiSystemPrompt
		} else {
			system = cypressSystemPrompt
		}
	}

	user = fmt.Sprintf("Requirement %s: %s\n\n%s\n\nGenerate the complete %s test suite for this requirement.",
		doc.Key, doc.Summary, doc.Text, spec.Name)
	return system, user
}
