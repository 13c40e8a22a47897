package org

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mizan-erp/mizan/internal/shared"
)

func TestStoreCurrentSelection(t *testing.T) {
	store := NewStore(testEntities())

	_, ok := store.Current()
	require.False(t, ok)

	require.NoError(t, store.SetCurrent("UNIT-001"))
	current, ok := store.Current()
	require.True(t, ok)
	require.Equal(t, "UNIT-001", current.ID)

	err := store.SetCurrent("UNIT-999")
	require.Error(t, err)
	require.Equal(t, shared.KindNotFound, shared.KindOf(err))
	// A failed switch leaves the previous selection intact.
	current, ok = store.Current()
	require.True(t, ok)
	require.Equal(t, "UNIT-001", current.ID)
}

func TestStoreObserversFireOnSwitch(t *testing.T) {
	store := NewStore(testEntities())

	var seen []string
	unsubscribe := store.Subscribe(func(e Entity) {
		seen = append(seen, e.ID)
	})

	require.NoError(t, store.SetCurrent("UNIT-001"))
	require.NoError(t, store.SetCurrent("BR-001"))
	require.Equal(t, []string{"UNIT-001", "BR-001"}, seen)

	unsubscribe()
	require.NoError(t, store.SetCurrent("HOLD-001"))
	require.Len(t, seen, 2)
}

func TestStoreRemoveClearsSelection(t *testing.T) {
	store := NewStore(testEntities())
	require.NoError(t, store.SetCurrent("BR-002"))
	store.Remove("BR-002")
	_, ok := store.Current()
	require.False(t, ok)
}

func TestThemeColorInheritance(t *testing.T) {
	entities := testEntities()
	for i := range entities {
		if entities[i].ID == "UNIT-001" {
			entities[i].ThemeColor = "#aa3311"
		}
		if entities[i].ID == "BR-002" {
			entities[i].ThemeColor = "#0011ff"
		}
	}
	store := NewStore(entities)

	// Own color wins.
	require.Equal(t, "#0011ff", store.ThemeColor("BR-002"))
	// A branch without a color inherits its parent unit's.
	require.Equal(t, "#aa3311", store.ThemeColor("BR-001"))
	// No color anywhere in the chain falls back to the default.
	require.Equal(t, DefaultThemeColor, store.ThemeColor("BR-003"))
	require.Equal(t, DefaultThemeColor, store.ThemeColor("UNIT-002"))
	// Unknown ids never fail.
	require.Equal(t, DefaultThemeColor, store.ThemeColor("UNIT-404"))
}

func TestStoreUpdateLogoKeepsSelectionFresh(t *testing.T) {
	store := NewStore(testEntities())
	require.NoError(t, store.SetCurrent("UNIT-001"))

	logo := []byte{0x89, 0x50, 0x4e, 0x47}
	require.NoError(t, store.UpdateLogo("UNIT-001", logo))

	current, ok := store.Current()
	require.True(t, ok)
	require.Equal(t, logo, current.Logo)

	err := store.UpdateLogo("UNIT-404", logo)
	require.Equal(t, shared.KindNotFound, shared.KindOf(err))
}
