package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemoveDuplicateStrings(t *testing.T) {
	assert.Equal(t, []string{"b", "a"}, RemoveDuplicateStrings([]string{"b", "", "a", "b", "c"}, []string{"c"}))
	assert.Nil(t, RemoveDuplicateStrings(nil, nil))
}

func TestGetEnvironmentVariables(t *testing.T) {
	t.Setenv("BISON_TEST_VARIABLE", "a=b")

	assert.Equal(t, "a=b", GetEnvironmentVariables()["BISON_TEST_VARIABLE"])

	t.Setenv("BISON_TEST_EMPTY", "")

	value, ok := GetEnvironmentVariables()["BISON_TEST_EMPTY"]
	assert.True(t, ok)
	assert.Empty(t, value)
	assert.NotContains(t, GetEnvironmentVariables(), "")
}
