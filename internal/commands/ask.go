package commands

import (
	"context"

	"github.com/foundrgate/foundrgate/internal/ledger"
	"github.com/foundrgate/foundrgate/internal/reply"
)

// knownExperts is the whitelist of expert bots the ask command routes to.
var knownExperts = map[string]bool{
	"benny": true,
	"felix": true,
	"dean":  true,
}

const askUsage = "Please ask your question in the format: `Expert - Your question`\n" +
	"Available experts: Benny, Felix, Dean\n" +
	"Example: `Benny - How do I approach seed fundraising?`"

// AskCommand routes a question to one of the expert bots and records the
// exchange in the user's chat history.
type AskCommand struct{}

func (c *AskCommand) Definition() Definition {
	return Definition{
		Name:        "ask",
		Description: "Ask one of the expert bots a question",
		Params: []Param{{
			Name:        "message",
			Description: "Expert - Your question",
			Required:    true,
			Placeholder: "Benny - How do I price my product?",
		}},
	}
}

func (c *AskCommand) Execute(ctx context.Context, env *Env, inv Invocation) Result {
	expert, question, ok := splitExpert(inv.Arg("message"))
	if !ok || !knownExperts[expert] {
		// Malformed input gets guidance, not an error; the dispatch itself
		// succeeded.
		return Success(askUsage)
	}

	resp, err := env.Processor.Process(ctx, "ask_"+expert, map[string]string{
		"question": question,
		"user_id":  inv.UserID,
	})
	if err != nil {
		return InternalError(err.Error())
	}

	// The history record carries the routed expert; the reply shows the
	// processor's display name.
	msg := ledger.ChatMessage{
		Role:          ledger.RoleAssistant,
		Content:       resp.Text,
		QuestionAsked: question,
		Timestamp:     env.now(),
		BotName:       expert,
	}
	if err := env.Ledger.StoreChatMessage(ctx, inv.UserID, msg); err != nil {
		return InternalError(err.Error())
	}

	botName := resp.BotName
	if botName == "" {
		botName = expert
	}
	return Success(reply.FormatBotReply(botName, resp.Text))
}
