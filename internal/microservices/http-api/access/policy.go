package access

import "errors"

var (
	ErrUnauthenticated = errors.New("authentication credentials were not provided")
	ErrForbidden       = errors.New("you do not have permission to perform this action")
)

type Action int

const (
	Read Action = iota
	Create
	Update
	Delete
)

type Resource int

const (
	ResourceCategory Resource = iota
	ResourceGenre
	ResourceTitle
	ResourceUser
	ResourceReview
	ResourceComment
)

// authored resources can be changed by their author as well as by staff
func authored(res Resource) bool {
	return res == ResourceReview || res == ResourceComment
}

// Can is the single capability check of the API. ownerID is the author of the
// resource for Update/Delete on reviews and comments and is ignored otherwise.
func Can(actor Actor, action Action, res Resource, ownerID int64) bool {
	if action == Read {
		if res == ResourceUser {
			return actor.Role == Admin
		}
		return true
	}

	if !actor.Authenticated() {
		return false
	}
	if actor.Role == Admin {
		return true
	}
	if !authored(res) {
		return false
	}

	switch action {
	case Create:
		return true
	case Update, Delete:
		return actor.Role == Moderator || actor.UserID == ownerID
	}
	return false
}

// Authorize is Can turned into an error: ErrUnauthenticated for anonymous
// callers, ErrForbidden for authenticated ones.
func Authorize(actor Actor, action Action, res Resource, ownerID int64) error {
	if Can(actor, action, res, ownerID) {
		return nil
	}
	if !actor.Authenticated() {
		return ErrUnauthenticated
	}
	return ErrForbidden
}
