package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "juan", escapeLike("juan"))
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `juan\_perez`, escapeLike("juan_perez"))
	assert.Equal(t, `a\\b`, escapeLike(`a\b`))
}
