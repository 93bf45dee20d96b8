package catalog

import (
	"github.com/Cyclone1070/turnkit/internal/agent"
	"github.com/Cyclone1070/turnkit/internal/guardrail"
	"github.com/Cyclone1070/turnkit/internal/guardrail/classifier"
	"github.com/Cyclone1070/turnkit/internal/provider"
	"github.com/Cyclone1070/turnkit/internal/tool/order"
)

// NegativeTerms trip the support input guardrail.
var NegativeTerms = []string{"idiot", "stupid", "hate", "pathetic", "refund", "return"}

const (
	SupportName = "Support Bot"
	HumanName   = "Human Agent"
)

// PoliticalCheck is the verdict of the political content checker.
type PoliticalCheck struct {
	ContainsPolitical bool   `json:"contains_political" description:"true if any political content is present"`
	Reasoning         string `json:"reasoning" description:"why the verdict was reached"`
}

// PoliticalChecker is the classifier agent behind the political guardrail.
func PoliticalChecker() *agent.Agent {
	return agent.New("Political Content Detector",
		agent.WithInstructions("Analyze the text for political content. Look for:\n"+
			"- Political figures (presidents, ministers, senators, governors, etc.)\n"+
			"- Political parties or movements\n"+
			"- Elections, campaigns, or voting\n"+
			"- Government policies or legislation\n"+
			"- Political controversies or debates\n\n"+
			"Return contains_political=true if ANY political content is found, false otherwise.\n"+
			"Provide clear reasoning for your decision."),
		agent.WithOutput(agent.OutputOf[PoliticalCheck]("political_check")),
	)
}

func politicalGuardrail(d Deps) guardrail.Guardrail {
	opts := []classifier.Option{
		classifier.WithPrompt(func(text string) string {
			return "Analyze this text for political content:\n\n" + text
		}),
	}
	if d.FailClosed {
		opts = append(opts, classifier.WithFailClosed())
	}
	return classifier.New("political_content", d.Checker, PoliticalChecker(), "contains_political", opts...)
}

// Support builds the customer support bot. Rude or refund requests are
// stopped by a denylist before the model sees them.
func Support(d Deps) *agent.Agent {
	human := agent.New(HumanName,
		agent.WithHandoffDescription("Escalation point for complex or sensitive customer issues."),
		agent.WithInstructions("You are a helpful human customer support agent. Continue the conversation politely. "+
			"Use clear, simple language and short sentences."),
		agent.WithSettings(provider.ModelSettings{ToolChoice: provider.ToolChoiceNone}),
	)

	opts := []agent.Option{
		agent.WithInstructions("You are a friendly customer support assistant. Answer product FAQs " +
			"(the return policy is 30 days) and use the get_order_status tool to fetch order updates when requested. " +
			"Escalate to the human agent for complex queries."),
		agent.WithTools(order.New()),
		agent.WithHandoffs(agent.HandoffTo(human)),
		agent.WithSettings(provider.ModelSettings{ToolChoice: provider.ToolChoiceAuto}),
		agent.WithInputGuardrails(guardrail.NewDenylist("negative_terms", NegativeTerms)),
	}
	if d.Checker != nil {
		opts = append(opts, agent.WithOutputGuardrails(politicalGuardrail(d)))
	}
	return agent.New(SupportName, opts...)
}
