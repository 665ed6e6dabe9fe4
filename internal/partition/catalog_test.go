package partition

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewCatalog(t *testing.T) {
	c, err := NewCatalog("odm", "product", "system_ext")
	require.NoError(t, err)
	require.Equal(t, []Name{"odm", "product", "system_ext"}, c.Names())
	require.Equal(t, 3, c.Len())
	require.True(t, c.Contains("product"))
	require.False(t, c.Contains("vendor"))
}

func TestNewCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		names   []Name
		wantErr string
	}{
		{name: "blank", names: []Name{"odm", " "}, wantErr: "catalog entry 1: partition name is required"},
		{name: "duplicate", names: []Name{"odm", "product", "odm"}, wantErr: `partition "odm" is already listed`},
		{name: "uppercase", names: []Name{"Odm"}, wantErr: "must be lowercase"},
		{name: "path", names: []Name{"../odm"}, wantErr: "must be lowercase"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.names...)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCatalogNamesIsACopy(t *testing.T) {
	c := mustCatalog(t, "odm", "product")
	names := c.Names()
	names[0] = "mutated"
	require.Equal(t, []Name{"odm", "product"}, c.Names())
}

func TestCatalogAppend(t *testing.T) {
	c := mustCatalog(t, "odm", "product")

	next, err := c.Append("system_ext")
	require.NoError(t, err)
	require.Equal(t, []Name{"odm", "product", "system_ext"}, next.Names())
	require.Equal(t, []Name{"odm", "product"}, c.Names())

	_, err = next.Append("odm")
	require.Error(t, err)
}

func TestCatalogCheckSuperset(t *testing.T) {
	previous := mustCatalog(t, "odm", "product", "system_ext")

	require.NoError(t, mustCatalog(t, "odm", "product", "system_ext", "vendor_dlkm").CheckSuperset(previous))
	require.NoError(t, mustCatalog(t, "system_ext", "odm", "product").CheckSuperset(previous))

	err := mustCatalog(t, "product").CheckSuperset(previous)
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "odm, system_ext"), err.Error())
}

func mustCatalog(t *testing.T, names ...Name) Catalog {
	t.Helper()
	c, err := NewCatalog(names...)
	require.NoError(t, err)
	return c
}
