package typeid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndValidate(t *testing.T) {
	id := NewSceneID()
	assert.True(t, strings.HasPrefix(id, PrefixScene+"_"))
	require.NoError(t, Validate(id, PrefixScene))
	assert.Error(t, Validate(id, PrefixAsset))
	assert.Error(t, Validate("scene_not-a-typeid", PrefixScene))
	assert.NotEqual(t, NewModuleID(), NewModuleID())
}
