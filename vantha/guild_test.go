package vantha

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuildConfigDefaults(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	settings := store.GuildConfig("guild1")
	require.NotNil(t, settings)
	assert.Empty(t, settings.ModLogChannelID)
	assert.Empty(t, settings.WelcomeTemplate)
	assert.NotNil(t, settings.Mutes)
}

func TestMergeGuildConfigPartial(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	muteRole := "role-123"
	welcome := "chan-456"
	store.MergeGuildConfig(
		"guild1", GuildSettingsPatch{
			MuteRoleID:       &muteRole,
			WelcomeChannelID: &welcome,
		},
	)

	// A later patch touching one field leaves the others alone.
	prefix := "?"
	updated := store.MergeGuildConfig("guild1", GuildSettingsPatch{Prefix: &prefix})
	assert.Equal(t, "role-123", updated.MuteRoleID)
	assert.Equal(t, "chan-456", updated.WelcomeChannelID)
	assert.Equal(t, "?", updated.Prefix)

	// Explicitly patching to empty clears a field; a nil field does not.
	empty := ""
	cleared := store.MergeGuildConfig("guild1", GuildSettingsPatch{MuteRoleID: &empty})
	assert.Empty(t, cleared.MuteRoleID)
	assert.Equal(t, "?", cleared.Prefix)
}

func TestMuteLifecycle(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	assert.False(t, store.Muted("guild1", "user1"))

	store.SetMute("guild1", "user1", 0)
	assert.True(t, store.Muted("guild1", "user1"))

	// Other guilds are unaffected.
	assert.False(t, store.Muted("guild2", "user1"))

	assert.True(t, store.ClearMute("guild1", "user1"))
	assert.False(t, store.Muted("guild1", "user1"))

	// The timed-unmute path relies on this returning false once a
	// moderator already lifted the mute.
	assert.False(t, store.ClearMute("guild1", "user1"))
}

func TestGuildConfigCloneIsolation(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	store.SetMute("guild1", "user1", 12345)
	settings := store.GuildConfig("guild1")
	settings.Prefix = "hacked"
	settings.Mutes["user2"] = 99999

	fresh := store.GuildConfig("guild1")
	assert.Empty(t, fresh.Prefix)
	assert.NotContains(t, fresh.Mutes, "user2")
	assert.Equal(t, int64(12345), fresh.Mutes["user1"])
}
