package agent

import (
	"fmt"
	"strings"
)

// SignupDetails are the literal values submitted in the sign-up form
type SignupDetails struct {
	SiteURL   string
	FirstName string
	LastName  string
	Email     string
	Username  string
	Password  string
}

// BuildSignupTask renders the fixed instructions handed to the decision-maker
func BuildSignupTask(d SignupDetails) string {
	var b strings.Builder
	step := 0
	add := func(format string, args ...interface{}) {
		step++
		fmt.Fprintf(&b, "%d. %s\n", step, fmt.Sprintf(format, args...))
	}

	b.WriteString("Create a new account on the website using the browser tools.\n\n")
	add("Navigate to %s.", d.SiteURL)
	add("Find the \"Sign Up\" link in the sidebar or navigation and click it (try it as visible text if no CSS selector fits).")
	add("Wait for the registration form to appear. It may be rendered inside an iframe; use find_elements with 'input' to see the fields.")
	add("Take a screenshot of the empty form.")
	if d.FirstName != "" {
		add("Type %q into the first name field.", d.FirstName)
	}
	if d.LastName != "" {
		add("Type %q into the last name field.", d.LastName)
	}
	if d.Username != "" {
		add("Type %q into the username field.", d.Username)
	}
	add("Type %q into the email field.", d.Email)
	add("Type %q into the first password field.", d.Password)
	add("If there is a second password field (confirmation), type %q into it. Target the second field explicitly, e.g. 'input[type=\"password\"] >> nth=1', so the first one is not touched.", d.Password)
	add("Tick any required terms or privacy checkbox.")
	add("Take a screenshot of the filled form.")
	add("Click the submit button (\"Sign Up\", \"Register\" or \"Create account\").")
	add("Wait for a confirmation message or a page change, then take a final screenshot.")

	b.WriteString("\nRules:\n")
	b.WriteString("- Call exactly one tool per turn and read its result before the next call.\n")
	b.WriteString("- A result starting with FAILURE is not fatal: try a different selector, the visible text, or dump_iframe to inspect the frame.\n")
	b.WriteString("- Stay on the site above; navigation elsewhere is refused.\n")
	b.WriteString("- When the account is created or you cannot make further progress, stop calling tools and reply with a short summary.\n")
	return b.String()
}
