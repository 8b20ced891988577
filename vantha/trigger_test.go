package vantha

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchTrigger(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	require.True(t, store.AddTriggerRule("guild1", "hello", "Hi there!"))

	trigger, response, ok := store.MatchTrigger("guild1", "hello everyone")
	require.True(t, ok)
	assert.Equal(t, "hello", trigger)
	assert.Equal(t, "Hi there!", response)

	// Case-insensitive, substring anywhere in the message.
	_, response, ok = store.MatchTrigger("guild1", "well HELLO friend")
	require.True(t, ok)
	assert.Equal(t, "Hi there!", response)

	_, _, ok = store.MatchTrigger("guild1", "goodbye")
	assert.False(t, ok)

	// Rules are scoped to their guild.
	_, _, ok = store.MatchTrigger("guild2", "hello")
	assert.False(t, ok)
}

func TestTriggerUseCounting(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	require.True(t, store.AddTriggerRule("guild1", "hello", "Hi there!"))

	// Matching alone must not move the counter: a match that gets rate
	// limited before sending is not a use.
	for n := 0; n < 3; n++ {
		_, _, ok := store.MatchTrigger("guild1", "hello everyone")
		require.True(t, ok)
	}
	assert.Equal(t, int64(0), store.TriggerRules("guild1")["hello"].Uses)

	assert.True(t, store.RecordTriggerUse("guild1", "hello"))
	assert.True(t, store.RecordTriggerUse("guild1", "hello"))
	assert.Equal(t, int64(2), store.TriggerRules("guild1")["hello"].Uses)

	// Recording against a removed or unknown rule is a no-op.
	assert.False(t, store.RecordTriggerUse("guild1", "absent"))
	assert.False(t, store.RecordTriggerUse("guild-without-rules", "hello"))
}

func TestMatchTriggerLongestWins(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	require.True(t, store.AddTriggerRule("guild1", "help", "Generic help"))
	require.True(t, store.AddTriggerRule("guild1", "help me", "Specific help"))

	// Both triggers appear in the message; the longer, more specific one
	// matches.
	trigger, response, ok := store.MatchTrigger("guild1", "can someone help me please")
	require.True(t, ok)
	assert.Equal(t, "help me", trigger)
	assert.Equal(t, "Specific help", response)
}

func TestAddTriggerRuleValidation(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	assert.False(t, store.AddTriggerRule("guild1", "", "response"))
	assert.False(t, store.AddTriggerRule("guild1", "   ", "response"))
	assert.False(t, store.AddTriggerRule("guild1", "trigger", ""))
	assert.False(
		t,
		store.AddTriggerRule(
			"guild1", "trigger",
			strings.Repeat("x", DefaultTriggerMaxLength+1),
		),
	)
	assert.True(
		t,
		store.AddTriggerRule(
			"guild1", "trigger",
			strings.Repeat("x", DefaultTriggerMaxLength),
		),
	)

	// Triggers are normalized: trimmed and lowercased.
	require.True(t, store.AddTriggerRule("guild1", "  MiXeD  ", "normalized"))
	_, response, ok := store.MatchTrigger("guild1", "some mixed message")
	require.True(t, ok)
	assert.Equal(t, "normalized", response)
}

func TestAddTriggerRuleOverwrites(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	require.True(t, store.AddTriggerRule("guild1", "ping", "pong"))
	require.True(t, store.AddTriggerRule("guild1", "ping", "PONG!"))

	_, response, ok := store.MatchTrigger("guild1", "ping")
	require.True(t, ok)
	assert.Equal(t, "PONG!", response)
	assert.Len(t, store.TriggerList("guild1"), 1)
}

func TestRemoveTriggerRule(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	assert.False(t, store.RemoveTriggerRule("guild1", "absent"))

	require.True(t, store.AddTriggerRule("guild1", "bye", "See you!"))
	assert.True(t, store.RemoveTriggerRule("guild1", "BYE"))
	assert.False(t, store.RemoveTriggerRule("guild1", "bye"))

	_, _, ok := store.MatchTrigger("guild1", "bye")
	assert.False(t, ok)
}

func TestTriggerListSorted(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	for _, trigger := range []string{"zebra", "apple", "mango"} {
		require.True(t, store.AddTriggerRule("guild1", trigger, "r"))
	}
	assert.Equal(t, []string{"apple", "mango", "zebra"}, store.TriggerList("guild1"))
	assert.Empty(t, store.TriggerList("guild-without-rules"))
}
