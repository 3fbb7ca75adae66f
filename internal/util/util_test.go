package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeref(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 7, Deref(Pointer(7), 1))
	assert.Equal(t, 1, Deref[int](nil, 1))
	assert.Equal(t, "", Deref(Pointer(""), "fallback"), "a set zero value wins over the fallback")
}
