package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartAddAndTotal(t *testing.T) {
	cart := NewCart()
	cart.Add("shop-1", "item-samosa", "Samosa", 20, 3)

	lines := cart.Lines("shop-1")
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, 20.0, lines[0].Price)
	assert.Equal(t, 60.0, cart.ShopTotal("shop-1"))
}

func TestCartMergesSameItem(t *testing.T) {
	cart := NewCart()
	cart.Add("shop-1", "item-chai", "Chai", 10, 1)
	cart.Add("shop-1", "item-chai", "Chai", 10, 2)

	lines := cart.Lines("shop-1")
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
}

func TestCartIsScopedByShop(t *testing.T) {
	cart := NewCart()
	cart.Add("shop-1", "item-1", "Samosa", 20, 1)
	cart.Add("shop-2", "item-1", "Samosa", 25, 2)

	assert.Equal(t, 20.0, cart.ShopTotal("shop-1"))
	assert.Equal(t, 50.0, cart.ShopTotal("shop-2"))
	assert.Equal(t, 3, cart.ItemCount())

	cart.ClearShop("shop-1")
	assert.Empty(t, cart.Lines("shop-1"))
	require.Len(t, cart.Lines("shop-2"), 1)
}

func TestCartUpdateQuantity(t *testing.T) {
	cart := NewCart()
	cart.Add("shop-1", "item-1", "Dosa", 60, 2)

	cart.UpdateQuantity("shop-1", "item-1", 5)
	assert.Equal(t, 300.0, cart.ShopTotal("shop-1"))

	// zero removes the line
	cart.UpdateQuantity("shop-1", "item-1", 0)
	assert.Empty(t, cart.Lines("shop-1"))

	// updating an absent line is a no-op, not an insert
	cart.UpdateQuantity("shop-1", "item-1", 4)
	assert.Empty(t, cart.Lines("shop-1"))
}

func TestCartIgnoresNonPositiveAdds(t *testing.T) {
	cart := NewCart()
	cart.Add("shop-1", "item-1", "Thali", 90, 0)
	cart.Add("shop-1", "item-1", "Thali", 90, -2)
	assert.Empty(t, cart.Lines("shop-1"))
}

func TestCartRemove(t *testing.T) {
	cart := NewCart()
	cart.Add("shop-1", "item-1", "Samosa", 20, 1)
	cart.Add("shop-1", "item-2", "Chai", 10, 1)

	cart.Remove("shop-1", "item-1")
	lines := cart.Lines("shop-1")
	require.Len(t, lines, 1)
	assert.Equal(t, "Chai", lines[0].Name)
}
