package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/Cyclone1070/turnkit/internal/agent"
	"github.com/Cyclone1070/turnkit/internal/guardrail"
	"github.com/Cyclone1070/turnkit/internal/guardrail/classifier"
	"github.com/Cyclone1070/turnkit/internal/tool"
	"github.com/Cyclone1070/turnkit/internal/tool/hotel"
	"github.com/Cyclone1070/turnkit/internal/tool/mathtool"
)

// HotelRefusal is shown when the hotel topic guardrail blocks a query.
const HotelRefusal = "❌ I can only help with hotel-related queries!"

const (
	MathName     = "Math Assistant"
	HotelAssName = "Hotel Assistant"
	ResearchName = "Web Researcher"
)

// Math builds the arithmetic agent.
func Math() *agent.Agent {
	return agent.New(MathName,
		agent.WithInstructions("You are a math assistant. Always use the add, subtract and multiply tools "+
			"for arithmetic and state the final result."),
		agent.WithTools(mathtool.All()...),
	)
}

// TopicCheck is the verdict of the hotel topic checker.
type TopicCheck struct {
	IsHotelQuery bool   `json:"is_hotel_query" description:"true if the query is about hotels"`
	Reason       string `json:"reason" description:"short explanation"`
}

func knownHotels(ctx context.Context) []string {
	d, ok := hotel.FromContext(ctx)
	if !ok {
		return nil
	}
	return d.Names()
}

// HotelChecker classifies queries as hotel related or not.
func HotelChecker() *agent.Agent {
	return agent.New("Hotel Topic Classifier",
		agent.WithDynamicInstructions(func(ctx context.Context, _ *agent.Agent) string {
			var b strings.Builder
			b.WriteString("You are a query classifier. Determine if the user's query is about hotels: " +
				"booking, accommodation, rooms, pricing, or adding and listing hotels.\n")
			if names := knownHotels(ctx); len(names) > 0 {
				fmt.Fprintf(&b, "Known hotels: %s.\n", strings.Join(names, ", "))
			}
			b.WriteString("Return is_hotel_query=false for any other topic like weather, politics or general questions.")
			return b.String()
		}),
		agent.WithOutput(agent.OutputOf[TopicCheck]("topic_check")),
	)
}

// HotelInstructions lists the known hotels so the model reaches for
// get_hotel_details when one is mentioned.
func HotelInstructions(ctx context.Context, _ *agent.Agent) string {
	var b strings.Builder
	b.WriteString("You are a helpful and efficient hotel assistant. You MUST use tools to answer questions.\n")
	b.WriteString("NEVER answer from memory; always use a tool to get the most up-to-date information.\n")

	if names := knownHotels(ctx); len(names) > 0 {
		b.WriteString("\nIMPORTANT: The user might ask about one of the following hotels. ")
		b.WriteString("Use the `get_hotel_details` tool if they mention one of these names.\n")
		fmt.Fprintf(&b, "Known Hotels: %s\n", strings.Join(names, ", "))
	} else {
		b.WriteString("\nThere are currently no hotels in the system. You can add one using the `add_hotel` tool.\n")
	}

	b.WriteString("\nRULES:\n")
	b.WriteString("1. To see all hotels: Use `list_hotels()`.\n")
	b.WriteString("2. For a specific hotel's details: Use `get_hotel_details(hotel_name=...)`.\n")
	b.WriteString("3. To add a new hotel: Use `add_hotel(name=..., location=..., price=..., rooms=...)`.")
	return b.String()
}

// Hotel builds the hotel directory assistant.
func Hotel(d Deps) *agent.Agent {
	opts := []agent.Option{
		agent.WithDynamicInstructions(HotelInstructions),
		agent.WithTools(hotel.Tools()...),
	}
	if d.Checker != nil {
		copts := []classifier.Option{classifier.WithAllowVerdict()}
		if d.FailClosed {
			copts = append(copts, classifier.WithFailClosed())
		}
		opts = append(opts, agent.WithInputGuardrails(
			classifier.New("hotel_topic", d.Checker, HotelChecker(), "is_hotel_query", copts...)))
	}
	return agent.New(HotelAssName, opts...)
}

// ResearchAnswer is the structured answer of the research agent.
type ResearchAnswer struct {
	Response string `json:"response" description:"the answer for the user"`
}

// Research builds the web research agent. Tools missing from d are skipped.
func Research(d Deps) *agent.Agent {
	var tools []tool.Tool
	for _, t := range []tool.Tool{d.Search, d.Weather, d.Clock} {
		if t != nil {
			tools = append(tools, t)
		}
	}

	opts := []agent.Option{
		agent.WithInstructions("You are a helpful research assistant. When users ask for current information, " +
			"recent developments, or latest discoveries, ALWAYS use the web_search tool first. " +
			"Use get_weather and get_time for weather and time questions. " +
			"Then provide a comprehensive response based on the results.\n\n" +
			"IMPORTANT: Avoid political topics, political figures, elections, government policies, " +
			"or partisan content."),
		agent.WithTools(tools...),
		agent.WithOutput(agent.OutputOf[ResearchAnswer]("research_answer")),
		agent.WithInputGuardrails(guardrail.NewMinLength("min_length", 3)),
	}
	if d.Checker != nil {
		opts = append(opts, agent.WithOutputGuardrails(politicalGuardrail(d)))
	}
	return agent.New(ResearchName, opts...)
}
