package validation

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsername(t *testing.T) {
	for _, ok := range []string{"alice", "a.b@c+d-e_f", strings.Repeat("x", 150)} {
		_, valid := Username(ok)
		assert.True(t, valid, ok)
	}
	for _, bad := range []string{"", "me", "white space", "semi;colon", strings.Repeat("x", 151)} {
		msg, valid := Username(bad)
		assert.False(t, valid, bad)
		assert.NotEmpty(t, msg)
	}
}

func TestSlug(t *testing.T) {
	_, ok := Slug("sci-fi_2")
	assert.True(t, ok)
	_, ok = Slug("sci fi")
	assert.False(t, ok)
	_, ok = Slug(strings.Repeat("s", 51))
	assert.False(t, ok)
}

func TestYearAndScore(t *testing.T) {
	_, ok := Year(2026, 2026)
	assert.True(t, ok)
	_, ok = Year(2027, 2026)
	assert.False(t, ok)
	_, ok = Year(0, 2026)
	assert.False(t, ok)

	for _, s := range []int{1, 5, 10} {
		_, ok := Score(s)
		assert.True(t, ok)
	}
	for _, s := range []int{0, 11, -3} {
		_, ok := Score(s)
		assert.False(t, ok)
	}
}

type signupForm struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email"`
	Slug     string `json:"slug" validate:"omitempty,slug"`
}

func TestRegisterAndMessages(t *testing.T) {
	v := validator.New()
	require.NoError(t, Register(v))

	err := v.Struct(signupForm{Username: "me", Email: "nope", Slug: "bad slug"})
	require.Error(t, err)

	fields := Messages(err.(validator.ValidationErrors))
	assert.Equal(t, `username "me" is not allowed`, fields["username"])
	assert.Equal(t, "enter a valid email address", fields["email"])
	assert.Contains(t, fields, "slug")

	assert.NoError(t, v.Struct(signupForm{Username: "alice", Email: "a@x.com"}))
}
