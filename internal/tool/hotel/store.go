package hotel

import (
	"errors"
	"strings"
	"sync"
)

var (
	ErrEmptyName    = errors.New("hotel name cannot be empty")
	ErrInvalidPrice = errors.New("price must be positive")
	ErrInvalidRooms = errors.New("rooms must be positive")
	ErrNoDirectory  = errors.New("no hotel directory in conversation state")
)

// Hotel is one directory entry.
type Hotel struct {
	Name     string  `json:"name"`
	Location string  `json:"location"`
	Price    float64 `json:"price"`
	Rooms    int     `json:"rooms"`
}

// Directory is an in-memory hotel registry keyed by lowercased name.
// Listing order is insertion order.
type Directory struct {
	mu     sync.RWMutex
	order  []string
	hotels map[string]Hotel
}

// NewDirectory creates a directory holding hotels.
func NewDirectory(hotels ...Hotel) *Directory {
	d := &Directory{hotels: make(map[string]Hotel)}
	for _, h := range hotels {
		_ = d.Add(h)
	}
	return d
}

// SampleDirectory returns the two demo hotels.
func SampleDirectory() *Directory {
	return NewDirectory(
		Hotel{Name: "Grand Hotel", Location: "NYC", Price: 200, Rooms: 50},
		Hotel{Name: "Beach Resort", Location: "Miami", Price: 150, Rooms: 30},
	)
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Add inserts or replaces a hotel.
func (d *Directory) Add(h Hotel) error {
	k := key(h.Name)
	switch {
	case k == "":
		return ErrEmptyName
	case h.Price <= 0:
		return ErrInvalidPrice
	case h.Rooms <= 0:
		return ErrInvalidRooms
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.hotels[k]; !ok {
		d.order = append(d.order, k)
	}
	h.Name = strings.TrimSpace(h.Name)
	d.hotels[k] = h
	return nil
}

// Get looks a hotel up case-insensitively.
func (d *Directory) Get(name string) (Hotel, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	h, ok := d.hotels[key(name)]
	return h, ok
}

// List returns a copy of every hotel in insertion order.
func (d *Directory) List() []Hotel {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Hotel, 0, len(d.order))
	for _, k := range d.order {
		out = append(out, d.hotels[k])
	}
	return out
}

// Names returns the directory keys in insertion order.
func (d *Directory) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]string(nil), d.order...)
}
