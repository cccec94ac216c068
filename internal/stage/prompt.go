package stage

import (
	"fmt"
	"strings"

	"github.com/dmorandini/comedyclub/internal/llm"
	"github.com/dmorandini/comedyclub/internal/persona"
	"github.com/dmorandini/comedyclub/internal/retrieval"
)

// buildPrompt assembles the generation prompt for one performance: persona
// framing, retrieved example jokes, optional current-events context, and a
// strict JSON output contract.
func buildPrompt(p persona.Persona, topic string, ret *retrieval.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, a stand-up comedian: %s.\n", p.Name, p.PersonaLine)
	fmt.Fprintf(&b, "Your style is %s. Your catchphrase is %q.\n\n", p.Style, p.Catchphrase)
	fmt.Fprintf(&b, "Write ONE original joke about: %s\n", topic)

	if ret != nil && len(ret.Jokes) > 0 {
		b.WriteString("\nJokes in your style, for inspiration only (do not copy them):\n")
		for _, joke := range ret.Jokes {
			fmt.Fprintf(&b, "- %s\n", joke.Text)
		}
	}

	if ret != nil && ret.WebContext != "" {
		fmt.Fprintf(&b, "\nTonight's headlines, in case they spark something: %s\n", ret.WebContext)
	}

	b.WriteString("\nRules:\n")
	b.WriteString("- One joke only, setup and punchline, under 40 words.\n")
	b.WriteString("- Stay in character.\n")
	b.WriteString(`- Answer with JSON only: {"joke": "your joke here"}` + "\n")

	return b.String()
}

// extractJoke pulls the joke text out of the model response. The contract
// asks for JSON but models drift, so a non-JSON response is taken verbatim.
func extractJoke(response string) string {
	if parsed := llm.ParseJSONResponse(response); parsed != nil {
		if joke, ok := parsed["joke"].(string); ok && strings.TrimSpace(joke) != "" {
			return strings.TrimSpace(joke)
		}
	}
	return strings.TrimSpace(response)
}
