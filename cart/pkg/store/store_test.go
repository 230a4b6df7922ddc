package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/focushoney/cart/pkg/response"
	commonErrors "github.com/Alturino/focushoney/internal/common/errors"
	"github.com/Alturino/focushoney/internal/common/money"
)

type fakePersister struct {
	mu        sync.Mutex
	target    string
	items     []response.CartItem
	found     bool
	loadErr   error
	saveErr   error
	deleteErr error
	saves     int
	deletes   int
}

func (f *fakePersister) Load(c context.Context) ([]response.CartItem, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, false, f.loadErr
	}
	return response.Clone(f.items), f.found, nil
}

func (f *fakePersister) Save(c context.Context, items []response.CartItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.items = response.Clone(items)
	f.found = true
	return nil
}

func (f *fakePersister) Delete(c context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletes++
	f.items = nil
	f.found = false
	return nil
}

func (f *fakePersister) Target() string { return f.target }

func honey(id string, price int64) response.CartItem {
	return response.CartItem{
		ID:    id,
		Name:  "Honey " + id,
		Price: money.NewPrice(decimal.NewFromInt(price)),
		Image: "/images/p" + id + ".png",
	}
}

func TestStoreAdd(t *testing.T) {
	tests := []struct {
		name             string
		adds             []response.CartItem
		expectedIDs      []string
		expectedQuantity []int
	}{
		{
			name:             "given new product should append with quantity 1",
			adds:             []response.CartItem{honey("1", 50)},
			expectedIDs:      []string{"1"},
			expectedQuantity: []int{1},
		},
		{
			name:             "given same product twice should increment quantity",
			adds:             []response.CartItem{honey("1", 50), honey("1", 50)},
			expectedIDs:      []string{"1"},
			expectedQuantity: []int{2},
		},
		{
			name:             "given distinct products should keep insertion order",
			adds:             []response.CartItem{honey("2", 60), honey("1", 50), honey("2", 60)},
			expectedIDs:      []string{"2", "1"},
			expectedQuantity: []int{2, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := context.Background()
			local := &fakePersister{target: TargetLocal}
			s := New(local)

			var items []response.CartItem
			var err error
			for _, item := range tt.adds {
				items, err = s.Add(c, item)
				require.NoError(t, err)
			}

			ids := []string{}
			quantities := []int{}
			for _, item := range items {
				ids = append(ids, item.ID)
				quantities = append(quantities, item.Quantity)
			}
			assert.Equal(t, tt.expectedIDs, ids)
			assert.Equal(t, tt.expectedQuantity, quantities)
			assert.Equal(t, len(tt.adds), local.saves)
			assert.Equal(t, items, local.items)
		})
	}
}

func TestStoreRemoveAndSetQuantity(t *testing.T) {
	c := context.Background()
	local := &fakePersister{target: TargetLocal, found: true, items: []response.CartItem{
		func() response.CartItem { i := honey("1", 50); i.Quantity = 2; return i }(),
		func() response.CartItem { i := honey("2", 60); i.Quantity = 1; return i }(),
	}}
	s := New(local)

	items, err := s.Remove(c, "missing")
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 0, local.saves, "removing an absent id must not write")

	items, err = s.SetQuantity(c, "1", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, items[0].Quantity)

	items, err = s.SetQuantity(c, "2", 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "1", items[0].ID)

	items, err = s.SetQuantity(c, "1", -3)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 3, local.saves)
}

func TestStoreTotal(t *testing.T) {
	c := context.Background()
	raw := honey("1", 50)
	raw.Quantity = 2
	hibiscus := response.CartItem{ID: "3", Name: "Hibiscus Honey - 250ml", Quantity: 3}
	require.NoError(t, hibiscus.Price.UnmarshalJSON([]byte(`"Ghc 45.50"`)))

	s := New(&fakePersister{target: TargetLocal, found: true, items: []response.CartItem{raw, hibiscus}})

	total, err := s.Total(c)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("236.5").Equal(total), total.String())

	count, err := s.Count(c)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestStorePersistenceFailure(t *testing.T) {
	c := context.Background()
	local := &fakePersister{target: TargetLocal, found: true, items: []response.CartItem{honey("1", 50)}}
	local.items[0].Quantity = 1
	s := New(local)

	_, err := s.Items(c)
	require.NoError(t, err)

	local.saveErr = errors.New("disk full")
	_, err = s.Add(c, honey("2", 60))
	assert.ErrorIs(t, err, commonErrors.ErrPersistence)

	items, err := s.Items(c)
	require.NoError(t, err)
	require.Len(t, items, 1, "a failed write must leave the cart unchanged")

	local.saveErr = nil
	items, err = s.Add(c, honey("2", 60))
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestStoreStaleReload(t *testing.T) {
	c := context.Background()
	remote := &fakePersister{target: TargetRemote, loadErr: errors.New("unavailable")}
	s := New(remote)

	_, err := s.Add(c, honey("1", 50))
	assert.ErrorIs(t, err, commonErrors.ErrPersistence)
	assert.Equal(t, 0, remote.saves, "a store that failed to load must not write")

	remote.loadErr = nil
	remote.found = true
	remote.items = []response.CartItem{honey("2", 60)}
	remote.items[0].Quantity = 1

	items, err := s.Add(c, honey("1", 50))
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestStoreClear(t *testing.T) {
	c := context.Background()

	t.Run("given remote and local targets should delete both", func(t *testing.T) {
		remote := &fakePersister{target: TargetRemote, found: true, items: []response.CartItem{honey("1", 50)}}
		local := &fakePersister{target: TargetLocal, found: true, items: []response.CartItem{honey("2", 60)}}
		s := New(remote, local)

		require.NoError(t, s.Clear(c))
		assert.Equal(t, 1, remote.deletes)
		assert.Equal(t, 1, local.deletes)

		items, err := s.Items(c)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("given active delete failure should keep items", func(t *testing.T) {
		local := &fakePersister{target: TargetLocal, found: true, items: []response.CartItem{honey("1", 50)}}
		s := New(local)
		_, err := s.Items(c)
		require.NoError(t, err)

		local.deleteErr = errors.New("unavailable")
		assert.ErrorIs(t, s.Clear(c), commonErrors.ErrPersistence)

		items, err := s.Items(c)
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})
}

func TestStoreSwitchReplaces(t *testing.T) {
	c := context.Background()
	local := &fakePersister{target: TargetLocal, found: true, items: []response.CartItem{honey("A", 50)}}
	remote := &fakePersister{target: TargetRemote, found: true, items: []response.CartItem{honey("B", 60)}}
	s := New(local)

	_, err := s.Items(c)
	require.NoError(t, err)

	items, err := s.Switch(c, remote, local)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "B", items[0].ID)
	assert.Equal(t, TargetRemote, s.Target())
}

func TestMerge(t *testing.T) {
	a := honey("A", 50)
	a.Quantity = 1
	b := honey("B", 60)
	b.Quantity = 2
	a2 := honey("A", 50)
	a2.Quantity = 3

	merged := Merge([]response.CartItem{a, b}, []response.CartItem{a2, honey("C", 45)})

	require.Len(t, merged, 3)
	assert.Equal(t, 4, merged[0].Quantity)
	assert.Equal(t, "B", merged[1].ID)
	assert.Equal(t, "C", merged[2].ID)
	assert.Equal(t, 1, a.Quantity, "merge must not mutate its input")
}
