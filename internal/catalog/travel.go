package catalog

import (
	"github.com/Cyclone1070/turnkit/internal/agent"
	"github.com/Cyclone1070/turnkit/internal/guardrail"
	"github.com/Cyclone1070/turnkit/internal/tool/travel"
)

// Cities screened by the travel guardrails.
var (
	IndianCities = []string{"delhi", "mumbai", "bangalore", "chennai", "kolkata", "hyderabad", "ahmedabad"}
	USCities     = []string{"new york", "los angeles", "chicago", "houston", "phoenix", "philadelphia", "san antonio"}
)

const (
	TriageName  = "TriageAgent"
	WeatherName = "WeatherAgent"
	HotelName   = "HotelAgent"
	FlightName  = "FlightAgent"
)

func usCityCheck() agent.Option {
	return agent.WithOutputGuardrails(guardrail.NewDenylist("us_city", USCities,
		guardrail.WithReason("Contains US city")))
}

func travelGuardrails() []agent.Option {
	return []agent.Option{
		agent.WithInputGuardrails(guardrail.NewDenylist("indian_city", IndianCities,
			guardrail.WithReason("Contains Indian city"))),
		usCityCheck(),
	}
}

// handoffFilter drops tool traffic and keeps the last two messages.
var handoffFilter = agent.Chain(agent.RemoveToolItems, agent.KeepLast(2))

// Triage builds the travel triage graph and returns its entry agent. The
// specialists hand back to triage, so the graph is cyclic and resolved lazily.
func Triage() *agent.Agent {
	var triage *agent.Agent
	back := agent.HandoffLater(TriageName, func() *agent.Agent { return triage },
		agent.WithToolDescription("Hand back to the triage agent for anything outside your speciality."))

	specialist := func(name, desc, instructions string, tools ...agent.Option) *agent.Agent {
		opts := append([]agent.Option{
			agent.WithHandoffDescription(desc),
			agent.WithInstructions(instructions),
			agent.WithHandoffs(back),
		}, tools...)
		return agent.New(name, append(opts, travelGuardrails()...)...)
	}

	weather := specialist(WeatherName, "get the weather of provided city",
		"You are a weather agent. Use the find_weather tool to get the weather of the provided city.",
		agent.WithTools(travel.FindWeather()))
	hotels := specialist(HotelName, "find hotels in city",
		"You are a hotel agent. Find the best and cheapest hotel in the provided city. "+
			"You can also book hotels if requested.",
		agent.WithTools(travel.FindHotels(), travel.BookHotel()))
	flights := specialist(FlightName, "find best flights between two cities",
		"You are a flight agent. Find the best and cheapest flights between two cities.",
		agent.WithTools(travel.FindFlights()))

	triage = agent.New(TriageName,
		agent.WithHandoffDescription("Routes to the flight, hotel or weather agent, otherwise answers directly."),
		agent.WithInstructions("You are a triage agent. Hand off to the flight, hotel or weather agent "+
			"when the user asks for one of those. Otherwise respond yourself."),
		// answers triage writes itself are screened like the specialists'
		usCityCheck(),
		agent.WithHandoffs(
			agent.HandoffTo(weather,
				agent.WithToolName("handoff_weatheragent"),
				agent.WithToolDescription("handoff to weather agent to get the weather information"),
				agent.WithEnabled(CanHandoff),
				agent.WithInputFilter(handoffFilter),
			),
			agent.HandoffTo(hotels),
			agent.HandoffTo(flights),
		),
	)
	return triage
}
