package mongostore

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	cartResponse "github.com/Alturino/focushoney/cart/pkg/response"
	"github.com/Alturino/focushoney/internal/common/money"
	"github.com/Alturino/focushoney/internal/repository"
	orderResponse "github.com/Alturino/focushoney/order/pkg/response"
)

const (
	collectionUsers  = "users"
	collectionCarts  = "carts"
	collectionOrders = "orders"
)

type userDocument struct {
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
	ID          string    `bson:"_id"`
	Email       string    `bson:"email"`
	DisplayName string    `bson:"displayName"`
	Password    string    `bson:"password"`
}

func (d userDocument) user() (repository.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return repository.User{}, err
	}
	user := repository.User{
		ID:          id,
		Email:       d.Email,
		DisplayName: d.DisplayName,
		Password:    d.Password,
	}
	user.CreatedAt.Time, user.CreatedAt.Valid = d.CreatedAt, true
	user.UpdatedAt.Time, user.UpdatedAt.Valid = d.UpdatedAt, true
	return user, nil
}

type cartItemDocument struct {
	ID       string `bson:"id"`
	Name     string `bson:"name"`
	Price    string `bson:"price"`
	Image    string `bson:"image"`
	Alt      string `bson:"alt,omitempty"`
	Quantity int    `bson:"quantity"`
}

type cartDocument struct {
	UpdatedAt time.Time          `bson:"updatedAt"`
	UserID    string             `bson:"_id"`
	Items     []cartItemDocument `bson:"items"`
}

func newCartDocument(userID uuid.UUID, items []cartResponse.CartItem, now time.Time) cartDocument {
	doc := cartDocument{UserID: userID.String(), UpdatedAt: now, Items: make([]cartItemDocument, 0, len(items))}
	for _, item := range items {
		doc.Items = append(doc.Items, cartItemDocument{
			ID:       item.ID,
			Name:     item.Name,
			Price:    item.Price.String(),
			Image:    item.Image,
			Alt:      item.Alt,
			Quantity: item.Quantity,
		})
	}
	return doc
}

func (d cartDocument) items() ([]cartResponse.CartItem, error) {
	items := make([]cartResponse.CartItem, 0, len(d.Items))
	for _, item := range d.Items {
		price, err := money.Parse(item.Price)
		if err != nil {
			return nil, err
		}
		items = append(items, cartResponse.CartItem{
			ID:       item.ID,
			Name:     item.Name,
			Price:    money.NewPrice(price),
			Image:    item.Image,
			Alt:      item.Alt,
			Quantity: item.Quantity,
		})
	}
	return items, nil
}

type orderItemDocument struct {
	Name     string `bson:"name"`
	Quantity int    `bson:"qty"`
	Price    string `bson:"price"`
	Image    string `bson:"image"`
	Product  string `bson:"product"`
}

type shippingDocument struct {
	Name    string `bson:"name"`
	Phone   string `bson:"phone"`
	Address string `bson:"address"`
	Note    string `bson:"note"`
}

type orderDocument struct {
	CreatedAt       time.Time           `bson:"createdAt"`
	ID              string              `bson:"_id"`
	UserID          string              `bson:"userId"`
	OrderItems      []orderItemDocument `bson:"orderItems"`
	ShippingAddress shippingDocument    `bson:"shippingAddress"`
	PaymentMethod   string              `bson:"paymentMethod"`
	PaymentRef      string              `bson:"paymentRef,omitempty"`
	Status          string              `bson:"status"`
	TotalPrice      string              `bson:"totalPrice"`
}

func newOrderDocument(o orderResponse.Order) orderDocument {
	doc := orderDocument{
		CreatedAt:  o.CreatedAt,
		ID:         o.ID.String(),
		UserID:     o.UserID.String(),
		OrderItems: make([]orderItemDocument, 0, len(o.OrderItems)),
		ShippingAddress: shippingDocument{
			Name:    o.ShippingAddress.Name,
			Phone:   o.ShippingAddress.Phone,
			Address: o.ShippingAddress.Address,
			Note:    o.ShippingAddress.Note,
		},
		PaymentMethod: o.PaymentMethod,
		PaymentRef:    o.PaymentRef,
		Status:        o.Status,
		TotalPrice:    o.TotalPrice.String(),
	}
	for _, item := range o.OrderItems {
		doc.OrderItems = append(doc.OrderItems, orderItemDocument{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price.String(),
			Image:    item.Image,
			Product:  item.Product,
		})
	}
	return doc
}

func (d orderDocument) order() (orderResponse.Order, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return orderResponse.Order{}, err
	}
	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return orderResponse.Order{}, err
	}
	total, err := decimal.NewFromString(d.TotalPrice)
	if err != nil {
		return orderResponse.Order{}, err
	}

	order := orderResponse.Order{
		CreatedAt:  d.CreatedAt,
		ID:         id,
		UserID:     userID,
		OrderItems: make([]orderResponse.OrderItem, 0, len(d.OrderItems)),
		ShippingAddress: orderResponse.ShippingDetails{
			Name:    d.ShippingAddress.Name,
			Phone:   d.ShippingAddress.Phone,
			Address: d.ShippingAddress.Address,
			Note:    d.ShippingAddress.Note,
		},
		PaymentMethod: d.PaymentMethod,
		PaymentRef:    d.PaymentRef,
		Status:        d.Status,
		TotalPrice:    total,
	}
	for _, item := range d.OrderItems {
		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			return orderResponse.Order{}, err
		}
		order.OrderItems = append(order.OrderItems, orderResponse.OrderItem{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    price,
			Image:    item.Image,
			Product:  item.Product,
		})
	}
	return order, nil
}
