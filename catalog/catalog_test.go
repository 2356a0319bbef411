package catalog_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lattice-substrate/cryptval/catalog"
	"github.com/lattice-substrate/cryptval/valerr"
)

func pass() (bool, error) { return true, nil }

func TestRegisterPreservesOrder(t *testing.T) {
	c := catalog.New()
	names := []string{"SHA", "AES", "CRC32", "RSA", "BLAKE2b"}
	for _, n := range names {
		require.NoError(t, c.Register(catalog.Simple(n, pass)))
	}
	require.Equal(t, names, c.Names())
	require.Equal(t, len(names), c.Len())

	all := c.All()
	require.Len(t, all, len(names))
	for i, e := range all {
		require.Equal(t, names[i], e.Name())
	}

	// All returns a copy.
	all[0] = catalog.Simple("mutated", pass)
	require.Equal(t, "SHA", c.All()[0].Name())
}

func TestRegisterDuplicate(t *testing.T) {
	c := catalog.New()
	require.NoError(t, c.Register(catalog.Simple("SHA", pass)))
	err := c.Register(catalog.Thorough("SHA", func(bool) (bool, error) { return true, nil }))
	require.True(t, valerr.Is(err, valerr.DuplicateValidator), "got %v", err)
	require.Equal(t, 1, c.Len())
}

func TestRegisterInvalid(t *testing.T) {
	c := catalog.New()
	err := c.Register(catalog.Simple("", pass))
	require.True(t, valerr.Is(err, valerr.InvalidConfig), "got %v", err)

	err = c.Register(catalog.Simple("nil-func", nil))
	require.True(t, valerr.Is(err, valerr.InvalidConfig), "got %v", err)

	err = c.Register(catalog.Entry{})
	require.True(t, valerr.Is(err, valerr.InvalidConfig), "got %v", err)
}

func TestLookup(t *testing.T) {
	c := catalog.New()
	c.MustRegister(
		catalog.Simple("MD5", pass),
		catalog.Thorough("DSA", func(bool) (bool, error) { return true, nil }),
	)

	e, err := c.Lookup("DSA")
	require.NoError(t, err)
	require.Equal(t, "DSA", e.Name())
	require.Equal(t, catalog.KindThorough, e.Kind())
	require.True(t, c.Contains("MD5"))

	_, err = c.Lookup("X")
	require.True(t, valerr.Is(err, valerr.UnknownValidator), "got %v", err)
	require.False(t, c.Contains("X"))
}

func TestSealRejectsRegistration(t *testing.T) {
	c := catalog.New()
	c.MustRegister(catalog.Simple("A", pass))
	c.Seal()
	c.Seal()
	require.True(t, c.Sealed())
	err := c.Register(catalog.Simple("B", pass))
	require.True(t, valerr.Is(err, valerr.CatalogSealed), "got %v", err)
	require.Equal(t, []string{"A"}, c.Names())
}

func TestMustRegisterPanicsOnDuplicate(t *testing.T) {
	c := catalog.New()
	require.Panics(t, func() {
		c.MustRegister(catalog.Simple("A", pass), catalog.Simple("A", pass))
	})
}

func TestEntryRunPassesThoroughOnlyToThoroughKind(t *testing.T) {
	var seen []bool
	thorough := catalog.Thorough("T", func(th bool) (bool, error) {
		seen = append(seen, th)
		return th, nil
	})
	ok, err := thorough.Run(true)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = thorough.Run(false)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, []bool{true, false}, seen)

	calls := 0
	simple := catalog.Simple("S", func() (bool, error) {
		calls++
		return false, errors.New("boom")
	})
	ok, err = simple.Run(true)
	require.False(t, ok)
	require.EqualError(t, err, "boom")
	require.Equal(t, 1, calls)
	require.Equal(t, catalog.KindSimple, simple.Kind())
	require.Equal(t, "simple", simple.Kind().String())
	require.Equal(t, "thorough", thorough.Kind().String())
}
