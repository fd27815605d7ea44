package integra

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	require.Equal(t, 376, catalog.Len())

	d, ok := catalog.Lookup(99, false)
	require.True(t, ok)
	require.Equal(t, EventDescription{Category: 1, Text: "Zone violation"}, d)

	d, ok = catalog.Lookup(99, true)
	require.True(t, ok)
	require.Equal(t, "Zone restore", d.Text)

	_, ok = catalog.Lookup(1023, true)
	require.False(t, ok)

	again, err := DefaultCatalog()
	require.NoError(t, err)
	require.Same(t, catalog, again)
}

func TestLoadCatalog(t *testing.T) {
	t.Run("last entry wins", func(t *testing.T) {
		catalog, err := LoadCatalog(strings.NewReader(`
- {code: 1, restore: false, category: 2, text: "first"}
- {code: 1, restore: true, category: 2, text: "restored"}
- {code: 1, restore: false, category: 3, text: "second"}
`))
		require.NoError(t, err)
		require.Equal(t, 2, catalog.Len())

		d, ok := catalog.Lookup(1, false)
		require.True(t, ok)
		require.Equal(t, EventDescription{Category: 3, Text: "second"}, d)
	})

	t.Run("empty", func(t *testing.T) {
		catalog, err := LoadCatalog(strings.NewReader(""))
		require.NoError(t, err)
		require.Zero(t, catalog.Len())
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := LoadCatalog(strings.NewReader("code: [1"))
		require.Error(t, err)
	})
}
