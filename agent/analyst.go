package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/etnz/shareplan"
	"github.com/etnz/shareplan/docs"
	"github.com/etnz/shareplan/renderer"
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

// creates the facilitator
func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the expert's skill that you can get from the Tools to ask them questions.
			They are at your service and 100% dedicated to you, they keep context of your previous questions.

			The user owns shares from an employee share plan. He is here primarily to understand
			what his plan is worth, what he invested, what he already sold, and how his holdings
			evolved over time.

			Devise a plan of questions to ask to each experts and come up with the best reponse to the user's request.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewAnalyst builds the expert that reads the loaded share-plan engine. All
// its answers come from the engine's own reports, rendered as markdown.
func NewAnalyst(e *shareplan.Engine) *Expert {
	lib := []Function{
		calculationsFunc(e),
		timelineFunc(e),
		breakdownFunc(e),
		currenciesFunc(e),
		topicFunc(),
	}
	return &Expert{
		Name: "Analyst",
		Description: `This is the share-plan Analyst. He has access to the user's employee
		share plan: allocations, sales, prices and exchange rates. Ask him for invested
		amounts, current value, returns, annualized returns, blocked and available shares,
		value over time, and the documentation of how figures are computed.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You are an analyst in charge of the user's employee share plan.
				You know how to use the Tools to extract the plan's figures: invested amounts per
				category, current value, returns, share availability, and the value-over-time series.
				You are part of a team of experts; pardon their approximative language and figure out
				what they meant. Never invent figures: everything you state comes from a tool call.
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

func errorResponse(id, name string, err error) *genai.FunctionResponse {
	return &genai.FunctionResponse{
		ID:       id,
		Name:     name,
		Response: map[string]any{"error": err.Error()},
	}
}

func outputResponse(id, name, output string) *genai.FunctionResponse {
	return &genai.FunctionResponse{
		ID:       id,
		Name:     name,
		Response: map[string]any{"output": output},
	}
}

func calculationsFunc(e *shareplan.Engine) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Calculations",
			Description: `Calculations returns all the headline figures of the plan in the active
			currency: invested amounts per category, current value, total sold, returns,
			annualized returns, and available/blocked share counts.`,
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown report of the plan's figures.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			c, err := e.Calculations()
			if err != nil {
				return errorResponse(id, "Calculations", err)
			}
			return outputResponse(id, "Calculations", renderer.CalculationsMarkdown(c))
		},
	}
}

func timelineFunc(e *shareplan.Engine) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Timeline",
			Description: `Timeline returns the plan's value over time in the active currency,
			one row per known market close, with purchases and sales annotated.`,
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown table of the plan's value over time.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			return outputResponse(id, "Timeline", renderer.TimelineMarkdown(e.Timeline(), e.Currency()))
		},
	}
}

func breakdownFunc(e *shareplan.Engine) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Breakdown",
			Description: `Breakdown returns the audit table behind one headline metric: the
			dated rows that sum up to it.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"metric": {
						Type: genai.TypeString,
						Description: `The metric to break down, one of: "user investment",
						"company match", "free shares", "dividend income", "current value", "total sold".`,
					},
				},
				Required: []string{"metric"},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown table of the metric's rows.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			metric, ok := args["metric"].(string)
			if !ok {
				return errorResponse(id, "Breakdown", fmt.Errorf("argument 'metric' is not a string but %T", args["metric"]))
			}
			c, err := e.Calculations()
			if err != nil {
				return errorResponse(id, "Breakdown", err)
			}
			bd, ok := c.Breakdowns[metric]
			if !ok {
				return errorResponse(id, "Breakdown", fmt.Errorf("unknown metric %q", metric))
			}
			return outputResponse(id, "Breakdown", renderer.BreakdownMarkdown(bd))
		},
	}
}

func currenciesFunc(e *shareplan.Engine) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Currencies",
			Description: `Currencies returns the active display currency and the list of
			currencies the whole plan can be displayed in.`,
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "The active currency and the available ones.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			out := fmt.Sprintf("active: %s, available: %v", e.Currency(), e.AvailableCurrencies())
			return outputResponse(id, "Currencies", out)
		},
	}
}

func topicFunc() *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Topic",
			Description: `Topic returns the documentation of how the figures are computed.
			Use it before explaining a methodology.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"topic": {
						Type:        genai.TypeString,
						Description: fmt.Sprintf(`One of: %s, or "*" for the whole manual.`, strings.Join(docs.Names(), ", ")),
					},
				},
				Required: []string{"topic"},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "The markdown documentation of the topic.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			topic, ok := args["topic"].(string)
			if !ok {
				return errorResponse(id, "Topic", fmt.Errorf("argument 'topic' is not a string but %T", args["topic"]))
			}
			content, err := docs.Topic(topic)
			if err != nil {
				return errorResponse(id, "Topic", err)
			}
			return outputResponse(id, "Topic", content)
		},
	}
}
