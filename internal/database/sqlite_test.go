package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFoldCase(t *testing.T) {
	lower := foldCase(strings.ToLower)
	assert.Equal(t, "éclair", lower("ÉCLAIR"))
	assert.Equal(t, "éclair", lower([]byte("ÉCLAIR")))
	assert.Nil(t, lower([]byte(nil)))
	assert.Equal(t, int64(7), lower(int64(7)))
}
