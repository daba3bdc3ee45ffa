package cart

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/money"
)

// ItemView is a cart line as returned to clients.
type ItemView struct {
	ID                uuid.UUID         `json:"id"`
	ProductID         uuid.UUID         `json:"product_id"`
	VariantID         *uuid.UUID        `json:"variant_id,omitempty"`
	ProductName       string            `json:"product_name"`
	ProductSKU        string            `json:"product_sku"`
	VariantAttributes map[string]string `json:"variant_attributes,omitempty"`
	Quantity          int               `json:"quantity"`
	UnitPrice         money.Money       `json:"unit_price"`
	LineTotal         money.Money       `json:"line_total"`
}

// View is the cart plus its computed subtotal.
type View struct {
	ID        uuid.UUID   `json:"id"`
	Items     []ItemView  `json:"items"`
	ItemCount int         `json:"item_count"`
	Subtotal  money.Money `json:"subtotal"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Subtotal sums unit price times quantity over the cart's lines.
func Subtotal(items []models.CartItem) money.Money {
	total := money.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

func viewFromModel(cart *models.Cart) *View {
	view := &View{
		ID:        cart.ID,
		Items:     make([]ItemView, 0, len(cart.Items)),
		Subtotal:  Subtotal(cart.Items),
		UpdatedAt: cart.UpdatedAt,
	}
	for _, item := range cart.Items {
		line := ItemView{
			ID:        item.ID,
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPriceCents,
			LineTotal: item.LineTotal(),
		}
		if item.Product != nil {
			line.ProductName = item.Product.Name
			line.ProductSKU = item.Product.SKU
		}
		if item.Variant != nil {
			line.ProductSKU = item.Variant.SKU
			line.VariantAttributes = item.Variant.Attributes
		}
		view.ItemCount += item.Quantity
		view.Items = append(view.Items, line)
	}
	return view
}
