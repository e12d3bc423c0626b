package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusCreated, StatusShipped, true},
		{StatusCreated, StatusCancelled, true},
		{StatusShipped, StatusCancelled, false},
		{StatusShipped, StatusCreated, false},
		{StatusCancelled, StatusCancelled, false},
		{StatusCancelled, StatusCreated, false},
		{StatusShipped, StatusShipped, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestErrorCode(t *testing.T) {
	err := Errorf(EINSUFFICIENTSTOCK, "only %d left", 2)
	assert.Equal(t, EINSUFFICIENTSTOCK, ErrorCode(err))
	assert.Equal(t, "only 2 left", ErrorMessage(err))

	assert.Equal(t, EINTERNAL, ErrorCode(assert.AnError))
	assert.Equal(t, "internal error", ErrorMessage(assert.AnError))
	assert.Equal(t, "", ErrorCode(nil))
}
