package catalog

import (
	"context"

	"github.com/Cyclone1070/turnkit/internal/runctx"
	"github.com/Cyclone1070/turnkit/internal/tool/hotel"
)

// Roles recognised by the handoff permission check.
const (
	RoleAdmin     = "admin"
	RoleSuperUser = "super user"
	RoleBasic     = "basic"
)

// User describes who is chatting.
type User struct {
	Name string
	Role string
	Age  int
}

// State is the conversation state threaded through every run of a chat
// session. The caller owns it; agents only read it through the context.
type State struct {
	User   User
	Hotels *hotel.Directory
}

// NewState creates a session state with the sample hotel directory.
func NewState(u User) *State {
	return &State{User: u, Hotels: hotel.SampleDirectory()}
}

func (s *State) HotelDirectory() *hotel.Directory { return s.Hotels }

// CanHandoff allows specialist handoffs for users older than 25 and for
// super users. Without a State nothing is allowed.
func CanHandoff(ctx context.Context) bool {
	s, ok := runctx.From[*State](ctx)
	if !ok || s == nil {
		return false
	}
	return s.User.Age > 25 || s.User.Role == RoleSuperUser
}
