// Package travel provides canned weather, hotel and flight tools for the
// triage demo. Results are fixed text; only the arguments vary.
package travel

import (
	"context"
	"fmt"
	"strings"

	"github.com/Cyclone1070/turnkit/internal/tool"
)

type CityRequest struct {
	City string `json:"city" description:"city name"`
}

func (r CityRequest) String() string { return r.City }

type HotelSearchRequest struct {
	City string `json:"city" description:"city name"`
	Date string `json:"date" description:"check-in date, YYYY-MM-DD"`
}

func (r HotelSearchRequest) String() string { return r.City + " " + r.Date }

type BookingRequest struct {
	City   string `json:"city" description:"city name"`
	Date   string `json:"date" description:"check-in date, YYYY-MM-DD"`
	Nights int    `json:"nights" description:"number of nights"`
	Guests int    `json:"guests" description:"number of guests"`
}

func (r BookingRequest) Validate() error {
	if strings.TrimSpace(r.City) == "" {
		return fmt.Errorf("city must not be empty")
	}
	if r.Nights <= 0 || r.Guests <= 0 {
		return fmt.Errorf("nights and guests must be positive")
	}
	return nil
}

type FlightRequest struct {
	FromCity string `json:"from_city" description:"departure city"`
	ToCity   string `json:"to_city" description:"arrival city"`
	Date     string `json:"date" description:"travel date, YYYY-MM-DD"`
}

func (r FlightRequest) String() string { return r.FromCity + " -> " + r.ToCity }

// Confirmation builds a booking code such as HTL-LON-20250101-32.
func Confirmation(city, date string, nights, guests int) string {
	prefix := strings.ToUpper(strings.TrimSpace(city))
	if r := []rune(prefix); len(r) > 3 {
		prefix = string(r[:3])
	}
	return fmt.Sprintf("HTL-%s-%s-%d%d", prefix, strings.ReplaceAll(date, "-", ""), nights, guests)
}

func FindWeather() tool.Tool {
	return tool.NewFunction("find_weather", "Get the weather of a city.",
		func(_ context.Context, req CityRequest) (string, error) {
			return fmt.Sprintf("%s temperature is 35 degree", req.City), nil
		})
}

func FindHotels() tool.Tool {
	return tool.NewFunction("find_hotels", "Find available hotels in a city on a date.",
		func(_ context.Context, req HotelSearchRequest) (string, error) {
			var b strings.Builder
			fmt.Fprintf(&b, "hotel available on %s in %s are following\n", req.Date, req.City)
			b.WriteString("- PC Hotel, 1 Night stay rent is 15000, Breakfast included, free parking\n")
			b.WriteString("- Marriott, 1 Night stay rent is 13000, Breakfast included, free parking\n")
			b.WriteString("- Movenpick, 1 Night stay rent is 14000, Breakfast included, free wifi\n")
			return b.String(), nil
		})
}

func BookHotel() tool.Tool {
	return tool.NewFunction("book_hotel", "Book a hotel in a city.",
		func(_ context.Context, req BookingRequest) (string, error) {
			return fmt.Sprintf("booking confirmed in %s on %s\nnights: %d\nguests: %d\nconfirmation: %s\n",
				req.City, req.Date, req.Nights, req.Guests,
				Confirmation(req.City, req.Date, req.Nights, req.Guests)), nil
		})
}

func FindFlights() tool.Tool {
	return tool.NewFunction("find_flights", "Find flights between two cities on a date.",
		func(_ context.Context, req FlightRequest) (string, error) {
			return fmt.Sprintf("flight PK100 available from %s to %s on %s\nprice are 28000 PKR\n",
				req.FromCity, req.ToCity, req.Date), nil
		})
}
