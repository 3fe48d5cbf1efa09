package syncedstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	t.Run("struct is merged one level deep", func(t *testing.T) {
		type display struct {
			Mode   string            `json:"mode"`
			Panels map[string]string `json:"panels"`
		}
		def := display{Mode: "full", Panels: map[string]string{"a": "1", "b": "2"}}

		got, err := decode(def, []byte(`{"panels":{"b":"3"}}`))
		require.NoError(t, err)
		assert.Equal(t, "full", got.Mode)
		assert.Equal(t, map[string]string{"b": "3"}, got.Panels, "nested objects are replaced, not merged")
	})

	t.Run("map default is not mutated", func(t *testing.T) {
		def := map[string]string{"a": "1", "b": "2"}

		got, err := decode(def, []byte(`{"b":"3","c":"4"}`))
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"a": "1", "b": "3", "c": "4"}, got)
		assert.Equal(t, map[string]string{"a": "1", "b": "2"}, def)
	})

	t.Run("primitive replaces default", func(t *testing.T) {
		got, err := decode(true, []byte(`false`))
		require.NoError(t, err)
		assert.False(t, got)
	})

	t.Run("type mismatch", func(t *testing.T) {
		_, err := decode(3, []byte(`"x"`))
		assert.Error(t, err)
	})

	t.Run("null", func(t *testing.T) {
		_, err := decode(map[string]string{}, []byte(`null`))
		assert.ErrorIs(t, err, errNull)
	})
}

func TestDecodeLocal(t *testing.T) {
	got, err := decodeLocal("light", "dark")
	require.NoError(t, err)
	assert.Equal(t, "dark", got)

	got, err = decodeLocal("light", `"dark"`)
	require.NoError(t, err)
	assert.Equal(t, "dark", got)

	_, err = decodeLocal(5, "five")
	assert.Error(t, err)
}
