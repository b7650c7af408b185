package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenUnset(t *testing.T) {
	os.Unsetenv("TLSCORE_PREFERRED_GROUPS")
	os.Unsetenv("TLSCORE_FIPS_MODE")
	c, err := Load(nil)
	require.NoError(t, err)
	require.Nil(t, c.PreferredGroups())
	require.False(t, c.FIPSMode())
}

func TestLoad_ParsesPreferredGroupsAndFIPSMode(t *testing.T) {
	t.Setenv("TLSCORE_PREFERRED_GROUPS", `secp256r1, "secp384r1" ,secp521r1`)
	t.Setenv("TLSCORE_FIPS_MODE", "true")

	c, err := Load(nil)
	require.NoError(t, err)
	require.Equal(t, []string{"secp256r1", "secp384r1", "secp521r1"}, c.PreferredGroups())
	require.True(t, c.FIPSMode())
}
