package vantha

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderWelcome(t *testing.T) {
	t.Parallel()

	assert.Equal(
		t,
		"Welcome <@user1> to **My Server**! You are member #42.",
		renderWelcome(DefaultWelcomeTemplate, "user1", "alice", "My Server", 42),
	)
	assert.Equal(
		t,
		"Hey alice (<@user1>)!",
		renderWelcome("Hey {username} ({user})!", "user1", "alice", "My Server", 42),
	)
	// Templates without placeholders pass through untouched.
	assert.Equal(
		t,
		"hello",
		renderWelcome("hello", "user1", "alice", "My Server", 42),
	)
}
