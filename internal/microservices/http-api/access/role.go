package access

import (
	"fmt"

	"yamdb/internal/microservices/http-api/models"
)

// Role is the closed set of caller roles. The zero value is Anonymous.
type Role int

const (
	Anonymous Role = iota
	User
	Moderator
	Admin
)

func (r Role) String() string {
	switch r {
	case User:
		return models.RoleUser
	case Moderator:
		return models.RoleModerator
	case Admin:
		return models.RoleAdmin
	default:
		return "anonymous"
	}
}

// ParseRole maps a persisted role string to a Role. Anonymous is never persisted.
func ParseRole(s string) (Role, error) {
	switch s {
	case models.RoleUser:
		return User, nil
	case models.RoleModerator:
		return Moderator, nil
	case models.RoleAdmin:
		return Admin, nil
	}
	return Anonymous, fmt.Errorf("unknown role %q", s)
}

// Actor is the caller of a request.
type Actor struct {
	UserID int64
	Role   Role
}

// AnonymousActor is used for requests without credentials.
var AnonymousActor = Actor{}

// ActorFor builds the actor of an authenticated user. Unknown roles fall back to User.
func ActorFor(u *models.User) Actor {
	role, err := ParseRole(u.Role)
	if err != nil {
		role = User
	}
	return Actor{UserID: u.ID, Role: role}
}

func (a Actor) Authenticated() bool {
	return a.Role != Anonymous
}
