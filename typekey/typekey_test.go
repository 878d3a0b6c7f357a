package typekey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name        string
		raw         string
		expectErr   bool
		expectedKey Key
	}{
		{
			name:        "namespaced key",
			raw:         "acme/pipeline",
			expectedKey: Key{Namespace: "acme", Name: "pipeline"},
		},
		{
			name:        "shorthand key gets default namespace",
			raw:         "assets",
			expectedKey: Key{Namespace: "core", Name: "assets"},
		},
		{
			name:        "underscored name",
			raw:         "core/model_project",
			expectedKey: Key{Namespace: "core", Name: "model_project"},
		},
		{
			name:      "error - empty string",
			raw:       "",
			expectErr: true,
		},
		{
			name:      "error - too many parts",
			raw:       "a/b/c",
			expectErr: true,
		},
		{
			name:      "error - uppercase name",
			raw:       "core/Assets",
			expectErr: true,
		},
		{
			name:      "error - leading digit",
			raw:       "core/1assets",
			expectErr: true,
		},
		{
			name:      "error - empty namespace",
			raw:       "/assets",
			expectErr: true,
		},
		{
			name:      "error - empty name",
			raw:       "core/",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			k, err := Parse(tc.raw)

			if tc.expectErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expectedKey, k)
		})
	}
}

func TestKey_RoundTrip(t *testing.T) {
	keys := []string{
		"core/assets",
		"acme/model_project",
		"test/counting",
	}

	for _, raw := range keys {
		t.Run(raw, func(t *testing.T) {
			k, err := Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, raw, k.String())

			again, err := Parse(k.String())
			require.NoError(t, err)
			assert.Equal(t, k, again)
		})
	}
}

func TestKey_Shorthand_StringIsCanonical(t *testing.T) {
	k := MustParse("assets")
	assert.Equal(t, "core/assets", k.String())
}

func TestKey_MapKey(t *testing.T) {
	m := map[Key]int{
		MustParse("core/assets"): 1,
		MustParse("acme/assets"): 2,
		MustParse("core/other"):  3,
		MustParse("assets"):      4, // same as core/assets, overwrites
	}
	assert.Len(t, m, 3)
	assert.Equal(t, 4, m[Key{Namespace: "core", Name: "assets"}])
}

func TestMustParse_PanicsOnInvalid(t *testing.T) {
	assert.Panics(t, func() { MustParse("not/a/key") })
}

func TestKey_IsZero(t *testing.T) {
	assert.True(t, Key{}.IsZero())
	assert.False(t, MustParse("core/assets").IsZero())
}
