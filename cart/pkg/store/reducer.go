package store

import "github.com/Alturino/focushoney/cart/pkg/response"

// The reducers never modify their input slice.

func addItem(items []response.CartItem, item response.CartItem) []response.CartItem {
	next := response.Clone(items)
	for i := range next {
		if next[i].ID == item.ID {
			next[i].Quantity++
			return next
		}
	}
	item.Quantity = 1
	return append(next, item)
}

func removeItem(items []response.CartItem, id string) ([]response.CartItem, bool) {
	next := make([]response.CartItem, 0, len(items))
	removed := false
	for _, item := range items {
		if item.ID == id {
			removed = true
			continue
		}
		next = append(next, item)
	}
	return next, removed
}

// setQuantity drops the entry when quantity is zero or negative.
func setQuantity(items []response.CartItem, id string, quantity int) ([]response.CartItem, bool) {
	if quantity <= 0 {
		return removeItem(items, id)
	}
	next := response.Clone(items)
	for i := range next {
		if next[i].ID == id {
			if next[i].Quantity == quantity {
				return next, false
			}
			next[i].Quantity = quantity
			return next, true
		}
	}
	return next, false
}

// Merge unions two carts by product id, summing quantities. Order follows base, then
// the entries only present in incoming.
func Merge(base []response.CartItem, incoming []response.CartItem) []response.CartItem {
	merged := response.Clone(base)
	index := make(map[string]int, len(merged))
	for i, item := range merged {
		index[item.ID] = i
	}
	for _, item := range incoming {
		if i, ok := index[item.ID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ID] = len(merged)
		merged = append(merged, item)
	}
	return merged
}
