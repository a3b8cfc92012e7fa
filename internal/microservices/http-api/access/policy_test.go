package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"yamdb/internal/microservices/http-api/models"
)

func TestCan(t *testing.T) {
	anon := AnonymousActor
	alice := Actor{UserID: 1, Role: User}
	bob := Actor{UserID: 2, Role: User}
	mod := Actor{UserID: 3, Role: Moderator}
	admin := Actor{UserID: 4, Role: Admin}

	tests := []struct {
		name   string
		actor  Actor
		action Action
		res    Resource
		owner  int64
		want   bool
	}{
		{"anonymous reads titles", anon, Read, ResourceTitle, 0, true},
		{"anonymous reads reviews", anon, Read, ResourceReview, 0, true},
		{"anonymous cannot create title", anon, Create, ResourceTitle, 0, false},
		{"anonymous cannot create review", anon, Create, ResourceReview, 0, false},
		{"anonymous cannot list users", anon, Read, ResourceUser, 0, false},
		{"user cannot list users", alice, Read, ResourceUser, 0, false},
		{"user cannot create genre", alice, Create, ResourceGenre, 0, false},
		{"user cannot delete category", alice, Delete, ResourceCategory, 0, false},
		{"user cannot update title", alice, Update, ResourceTitle, 0, false},
		{"user creates review", alice, Create, ResourceReview, 0, true},
		{"user creates comment", alice, Create, ResourceComment, 0, true},
		{"author updates own review", alice, Update, ResourceReview, 1, true},
		{"author deletes own comment", alice, Delete, ResourceComment, 1, true},
		{"other user cannot update review", bob, Update, ResourceReview, 1, false},
		{"other user cannot delete comment", bob, Delete, ResourceComment, 1, false},
		{"moderator updates any review", mod, Update, ResourceReview, 1, true},
		{"moderator deletes any comment", mod, Delete, ResourceComment, 1, true},
		{"moderator cannot create title", mod, Create, ResourceTitle, 0, false},
		{"moderator cannot manage users", mod, Update, ResourceUser, 0, false},
		{"admin creates title", admin, Create, ResourceTitle, 0, true},
		{"admin manages users", admin, Delete, ResourceUser, 0, true},
		{"admin lists users", admin, Read, ResourceUser, 0, true},
		{"admin updates any review", admin, Update, ResourceReview, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Can(tt.actor, tt.action, tt.res, tt.owner))
		})
	}
}

func TestAuthorize(t *testing.T) {
	assert.NoError(t, Authorize(Actor{UserID: 1, Role: Admin}, Create, ResourceTitle, 0))
	assert.ErrorIs(t, Authorize(AnonymousActor, Create, ResourceTitle, 0), ErrUnauthenticated)
	assert.ErrorIs(t, Authorize(Actor{UserID: 1, Role: User}, Create, ResourceTitle, 0), ErrForbidden)
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("moderator")
	assert.NoError(t, err)
	assert.Equal(t, Moderator, r)
	assert.Equal(t, "moderator", r.String())

	_, err = ParseRole("superhero")
	assert.Error(t, err)
}

func TestActorFor(t *testing.T) {
	a := ActorFor(&models.User{ID: 7, Role: "admin"})
	assert.Equal(t, Actor{UserID: 7, Role: Admin}, a)
	assert.True(t, a.Authenticated())

	// a corrupted role never escalates
	a = ActorFor(&models.User{ID: 8, Role: "root"})
	assert.Equal(t, User, a.Role)
	assert.False(t, AnonymousActor.Authenticated())
}
