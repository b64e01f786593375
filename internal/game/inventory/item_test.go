package inventory_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/petcare/internal/game/inventory"
)

func TestItemDef_Validate_RejectsEmptyID(t *testing.T) {
	d := &inventory.ItemDef{Name: "Bone", Kind: inventory.KindBait, MaxStack: 64}
	if err := d.Validate(); err == nil {
		t.Fatal("expected error for empty ID, got nil")
	}
}

func TestItemDef_Validate_RejectsInvalidKind(t *testing.T) {
	d := &inventory.ItemDef{ID: "bone", Name: "Bone", Kind: "weapon", MaxStack: 64}
	if err := d.Validate(); err == nil {
		t.Fatal("expected error for invalid Kind, got nil")
	}
}

func TestItemDef_Validate_RejectsZeroMaxStack(t *testing.T) {
	d := &inventory.ItemDef{ID: "bone", Name: "Bone", Kind: inventory.KindBait}
	if err := d.Validate(); err == nil {
		t.Fatal("expected error for MaxStack==0, got nil")
	}
}

func TestItemDef_Validate_FoodRequiresNutrition(t *testing.T) {
	d := &inventory.ItemDef{ID: "cod", Name: "Cod", Kind: inventory.KindFood, MaxStack: 64}
	assert.Error(t, d.Validate())
	d.Nutrition = 2
	assert.NoError(t, d.Validate())
}

func TestLoadItems(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bone.yaml"), []byte(`
id: bone
name: Bone
kind: bait
max_stack: 64
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "beef.yml"), []byte(`
id: cooked_beef
name: Steak
kind: food
nutrition: 8
max_stack: 64
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	items, err := inventory.LoadItems(dir)
	require.NoError(t, err)
	require.Len(t, items, 2)

	reg := inventory.NewRegistry()
	for _, it := range items {
		require.NoError(t, reg.RegisterItem(it))
	}
	assert.Equal(t, 8, reg.Nutrition("cooked_beef"))
	assert.Equal(t, 0, reg.Nutrition("bone"))
	assert.Equal(t, 0, reg.Nutrition("missing"))
}

func TestLoadItems_RejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("id: x\nkind: food\n"), 0644))
	_, err := inventory.LoadItems(dir)
	assert.Error(t, err)
}

func TestRegistry_RejectsDuplicate(t *testing.T) {
	reg := inventory.NewRegistry()
	d := &inventory.ItemDef{ID: "bone", Name: "Bone", Kind: inventory.KindBait, MaxStack: 64}
	require.NoError(t, reg.RegisterItem(d))
	assert.Error(t, reg.RegisterItem(d))
	assert.Len(t, reg.AllItems(), 1)
}

func TestPropertySetContainsExactlyMembers(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ids := rapid.SliceOf(rapid.StringMatching(`[a-z]{1,8}`)).Draw(rt, "ids")
		probe := rapid.StringMatching(`[a-z]{1,8}`).Draw(rt, "probe")
		set := inventory.NewSet(ids...)
		want := false
		for _, id := range ids {
			if id == probe {
				want = true
			}
		}
		if set.Contains(probe) != want {
			rt.Fatalf("Contains(%q) = %v, want %v", probe, !want, want)
		}
	})
}
