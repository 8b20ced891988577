package vantha

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePollOptions(t *testing.T) {
	t.Parallel()

	assert.Nil(t, parsePollOptions(""))
	assert.Nil(t, parsePollOptions(" , ,, "))
	assert.Equal(t, []string{"pizza"}, parsePollOptions("pizza"))
	assert.Equal(
		t,
		[]string{"pizza", "tacos", "sushi"},
		parsePollOptions(" pizza , tacos,sushi,"),
	)
}

func TestPollNumberEmojisCoverMaxOptions(t *testing.T) {
	t.Parallel()
	assert.Len(t, pollNumberEmojis, pollMaxOptions)
}
