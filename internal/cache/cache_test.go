package cache

import (
	"fmt"
	"math/rand"
	"slices"
	"testing"

	"github.com/abgdnv/checklist/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func p(id, brand string, checked bool) model.Product {
	return model.Product{ID: id, Name: "name" + id, Brand: brand, Checked: checked}
}

func Test_ProductCache_Upsert(t *testing.T) {
	testCases := []struct {
		name     string
		upserts  []model.Product
		expected []model.Product
	}{
		{
			name:     "Insert - unseen ids appended in order",
			upserts:  []model.Product{p("1", "X", false), p("2", "Y", false)},
			expected: []model.Product{p("1", "X", false), p("2", "Y", false)},
		},
		{
			name:     "Replace - position preserved, latest fields win",
			upserts:  []model.Product{p("1", "X", false), p("2", "Y", false), p("1", "Z", true)},
			expected: []model.Product{p("1", "Z", true), p("2", "Y", false)},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			c := New()
			// when
			for _, up := range tc.upserts {
				c.Upsert(up)
			}
			// then
			assert.Equal(t, tc.expected, c.All())
		})
	}
}

func Test_ProductCache_Upsert_RandomSequences(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for round := 0; round < 50; round++ {
		c := New()
		latest := make(map[string]model.Product)
		for i := 0; i < 40; i++ {
			id := fmt.Sprintf("%d", rnd.Intn(8))
			up := model.Product{ID: id, Name: fmt.Sprintf("n%d", i), Brand: "B", Checked: rnd.Intn(2) == 0}
			c.Upsert(up)
			latest[id] = up
		}

		all := c.All()
		require.Len(t, all, len(latest), "exactly one record per distinct id")
		for _, got := range all {
			assert.Equal(t, latest[got.ID], got, "fields must come from the most recent upsert")
		}
	}
}

func Test_ProductCache_ReplaceAll(t *testing.T) {
	// given
	c := New()
	c.Upsert(p("old", "X", false))

	// when
	c.ReplaceAll([]model.Product{p("2", "Y", true), p("1", "X", false), p("2", "Y", false)})

	// then
	assert.Equal(t, []model.Product{p("2", "Y", false), p("1", "X", false)}, c.All())
	_, found := c.Get("old")
	assert.False(t, found, "prior contents must be discarded")
}

func Test_ProductCache_Replace(t *testing.T) {
	// given
	c := New()
	c.Upsert(p("1", "X", false))

	// when
	replaced := c.Replace(p("1", "X", true))
	inserted := c.Replace(p("2", "Y", true))

	// then
	assert.True(t, replaced)
	assert.False(t, inserted)
	assert.Equal(t, []model.Product{p("1", "X", true)}, c.All())
}

func Test_ProductCache_Remove(t *testing.T) {
	// given
	c := New()
	c.ReplaceAll([]model.Product{p("1", "X", false), p("2", "Y", false), p("3", "X", false)})

	// when
	c.Remove("2")
	c.Remove("missing")

	// then
	assert.Equal(t, []model.Product{p("1", "X", false), p("3", "X", false)}, c.All())
	got, found := c.Get("3")
	require.True(t, found, "index must follow the shifted records")
	assert.Equal(t, p("3", "X", false), got)
	c.Upsert(p("3", "Z", true))
	assert.Equal(t, []model.Product{p("1", "X", false), p("3", "Z", true)}, c.All())
}

func Test_ProductCache_FilterByBrand(t *testing.T) {
	c := New()
	c.ReplaceAll([]model.Product{p("1", "X", false), p("2", "Y", true), p("3", "X", true), p("4", "Y", false)})

	testCases := []struct {
		name     string
		brand    string
		expected []model.Product
	}{
		{
			name:     "Empty brand - full set in stored order",
			brand:    "",
			expected: c.All(),
		},
		{
			name:     "Brand X - subset, same relative order",
			brand:    "X",
			expected: []model.Product{p("1", "X", false), p("3", "X", true)},
		},
		{
			name:     "Unknown brand - empty",
			brand:    "nope",
			expected: []model.Product{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			got := c.FilterByBrand(tc.brand).Collect()
			// then
			assert.Equal(t, tc.expected, got)
		})
	}
}

func Test_ProductCache_FilterByBrand_SnapshotIsolation(t *testing.T) {
	// given
	c := New()
	c.ReplaceAll([]model.Product{p("1", "X", false)})
	view := c.FilterByBrand("")

	// when
	c.Upsert(p("2", "X", false))

	// then
	assert.Equal(t, []model.Product{p("1", "X", false)}, view.Collect())
}

func Test_UncheckedOf(t *testing.T) {
	// given
	c := New()
	c.ReplaceAll([]model.Product{p("1", "X", false), p("2", "Y", true), p("3", "X", false)})

	// when
	once := UncheckedOf(c.FilterByBrand("")).Collect()
	twice := UncheckedOf(UncheckedOf(c.FilterByBrand(""))).Collect()

	// then
	assert.Equal(t, []model.Product{p("1", "X", false), p("3", "X", false)}, once)
	assert.Equal(t, once, twice, "reapplying must be idempotent")
	assert.Empty(t, UncheckedOf(nil).Collect())
}

func Test_ProductCache_DistinctBrands(t *testing.T) {
	// given
	c := New()
	c.ReplaceAll([]model.Product{p("1", "Y", false), p("2", "X", true), p("3", "Y", false), p("4", "A", false)})

	// when
	brands := c.DistinctBrands()

	// then
	assert.Equal(t, []string{"A", "X", "Y"}, brands)
	assert.True(t, slices.IsSorted(brands))
}

func Test_ProductCache_Scenario(t *testing.T) {
	// given
	c := New()
	c.ReplaceAll([]model.Product{
		{ID: "1", Name: "name1", Brand: "X", Checked: false},
		{ID: "2", Name: "name2", Brand: "Y", Checked: true},
	})

	// then
	assert.Equal(t, []string{"X", "Y"}, c.DistinctBrands())
	assert.Equal(t, []model.Product{{ID: "2", Name: "name2", Brand: "Y", Checked: true}}, c.FilterByBrand("Y").Collect())
	assert.Equal(t, []model.Product{{ID: "1", Name: "name1", Brand: "X"}}, UncheckedOf(c.FilterByBrand("")).Collect())
}
