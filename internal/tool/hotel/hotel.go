// Package hotel exposes a mutable hotel directory to the model. The
// directory lives in the conversation state, not in the tools.
package hotel

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Cyclone1070/turnkit/internal/runctx"
	"github.com/Cyclone1070/turnkit/internal/tool"
)

// Holder is implemented by conversation states that carry a Directory.
type Holder interface {
	HotelDirectory() *Directory
}

// FromContext finds the Directory in the conversation state, which may be
// the Directory itself or a Holder.
func FromContext(ctx context.Context) (*Directory, bool) {
	if d, ok := runctx.From[*Directory](ctx); ok && d != nil {
		return d, true
	}
	if h, ok := runctx.From[Holder](ctx); ok {
		if d := h.HotelDirectory(); d != nil {
			return d, true
		}
	}
	return nil, false
}

func directory(ctx context.Context) (*Directory, error) {
	d, ok := FromContext(ctx)
	if !ok {
		return nil, tool.Fatal(ErrNoDirectory)
	}
	return d, nil
}

func money(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', 2, 64)
}

type ListRequest struct{}

type DetailsRequest struct {
	HotelName string `json:"hotel_name" description:"name of the hotel"`
}

func (r DetailsRequest) String() string { return r.HotelName }

type AddRequest struct {
	Name     string  `json:"name" description:"hotel name"`
	Location string  `json:"location" description:"city or area"`
	Price    float64 `json:"price" description:"price per night in dollars"`
	Rooms    int     `json:"rooms" description:"number of rooms"`
}

func (r AddRequest) String() string { return r.Name }

// Tools returns list_hotels, get_hotel_details and add_hotel.
func Tools() []tool.Tool {
	return []tool.Tool{ListTool(), DetailsTool(), AddTool()}
}

func ListTool() tool.Tool {
	return tool.NewFunction("list_hotels", "List all available hotels in the system.",
		func(ctx context.Context, _ ListRequest) (string, error) {
			d, err := directory(ctx)
			if err != nil {
				return "", err
			}
			hotels := d.List()
			if len(hotels) == 0 {
				return "No hotels available in the system.", nil
			}
			var b strings.Builder
			b.WriteString("Available Hotels:\n")
			for _, h := range hotels {
				fmt.Fprintf(&b, "- %s in %s (%s/night, %d rooms)\n", h.Name, h.Location, money(h.Price), h.Rooms)
			}
			return b.String(), nil
		})
}

func DetailsTool() tool.Tool {
	return tool.NewFunction("get_hotel_details", "Get detailed information about a specific hotel by name.",
		func(ctx context.Context, req DetailsRequest) (string, error) {
			d, err := directory(ctx)
			if err != nil {
				return "", err
			}
			h, ok := d.Get(req.HotelName)
			if !ok {
				return fmt.Sprintf("Hotel '%s' not found. Available hotels: %s",
					req.HotelName, strings.Join(d.Names(), ", ")), nil
			}
			return fmt.Sprintf("Hotel Details:\nName: %s\nLocation: %s\nPrice: %s/night\nRooms: %d",
				h.Name, h.Location, money(h.Price), h.Rooms), nil
		})
}

func AddTool() tool.Tool {
	return tool.NewFunction("add_hotel", "Add a new hotel to the system.",
		func(ctx context.Context, req AddRequest) (string, error) {
			d, err := directory(ctx)
			if err != nil {
				return "", err
			}
			h := Hotel(req)
			if err := d.Add(h); err != nil {
				return fmt.Sprintf("Could not add hotel: %v.", err), nil
			}
			return fmt.Sprintf("Successfully added %s in %s with %d rooms at %s/night",
				req.Name, req.Location, req.Rooms, money(req.Price)), nil
		})
}
