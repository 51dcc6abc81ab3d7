package serr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_New_noCauses(t *testing.T) {
	err := New("something went wrong")
	assert.Equal(t, "something went wrong", err.Error())
	assert.False(t, errors.Is(err, ErrNotFound))
}

func Test_New_withCause(t *testing.T) {
	err := New("could not find user", ErrNotFound)
	assert.Equal(t, "could not find user: "+ErrNotFound.Error(), err.Error())
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrBadArgument))
}

func Test_New_emptyMessageWithCause(t *testing.T) {
	err := New("", ErrBadCredentials)
	assert.Equal(t, ErrBadCredentials.Error(), err.Error())
}

func Test_WrapDB(t *testing.T) {
	underlying := errors.New("connection refused")
	err := WrapDB("", underlying)

	assert.True(t, errors.Is(err, ErrDB))
	assert.True(t, errors.Is(err, underlying))
}

func Test_Error_Is_multipleCauses(t *testing.T) {
	err := New("bad request", ErrBadArgument, ErrPermissions)

	assert.True(t, errors.Is(err, ErrBadArgument))
	assert.True(t, errors.Is(err, ErrPermissions))
	assert.False(t, errors.Is(err, ErrNotFound))
}
