package mongostore

import (
	"time"

	"github.com/Zhima-Mochi/minishop-marketplace/internal/domain/identity"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/domain/payment"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/domain/review"
)

type profileDoc struct {
	Email     string    `bson:"_id"`
	Role      string    `bson:"role"`
	Name      string    `bson:"name"`
	Phone     string    `bson:"phone"`
	Address   string    `bson:"address"`
	Education string    `bson:"education"`
	LinkedIn  string    `bson:"linkedin"`
	Image     string    `bson:"image"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (d profileDoc) toDomain() *identity.Profile {
	return &identity.Profile{
		Email:     d.Email,
		Role:      identity.Role(d.Role),
		Name:      d.Name,
		Phone:     d.Phone,
		Address:   d.Address,
		Education: d.Education,
		LinkedIn:  d.LinkedIn,
		Image:     d.Image,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

type productDoc struct {
	ID                string    `bson:"_id"`
	OwnerEmail        string    `bson:"owner_email"`
	Name              string    `bson:"name"`
	Description       string    `bson:"description"`
	Image             string    `bson:"image"`
	Price             int64     `bson:"price"`
	MinimumOrder      int       `bson:"minimum_order"`
	AvailableQuantity int       `bson:"available_quantity"`
	CreatedAt         time.Time `bson:"created_at"`
	UpdatedAt         time.Time `bson:"updated_at"`
}

func productDocFrom(p *product.Product) productDoc {
	return productDoc{
		ID:                p.ID,
		OwnerEmail:        p.OwnerEmail,
		Name:              p.Name,
		Description:       p.Description,
		Image:             p.Image,
		Price:             p.Price,
		MinimumOrder:      p.MinimumOrder,
		AvailableQuantity: p.AvailableQuantity,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func (d productDoc) toDomain() *product.Product {
	return &product.Product{
		ID:                d.ID,
		OwnerEmail:        d.OwnerEmail,
		Name:              d.Name,
		Description:       d.Description,
		Image:             d.Image,
		Price:             d.Price,
		MinimumOrder:      d.MinimumOrder,
		AvailableQuantity: d.AvailableQuantity,
		CreatedAt:         d.CreatedAt.UTC(),
		UpdatedAt:         d.UpdatedAt.UTC(),
	}
}

type contactDoc struct {
	BuyerName string `bson:"buyer_name"`
	Phone     string `bson:"phone"`
	Address   string `bson:"address"`
}

type orderDoc struct {
	ID            string     `bson:"_id"`
	ProductID     string     `bson:"product_id"`
	ProductName   string     `bson:"product_name"`
	BuyerEmail    string     `bson:"buyer_email"`
	Contact       contactDoc `bson:"contact"`
	Quantity      int        `bson:"quantity"`
	Amount        int64      `bson:"amount"`
	Paid          bool       `bson:"paid"`
	Delivery      bool       `bson:"delivery"`
	TransactionID string     `bson:"transaction_id,omitempty"`
	CreatedAt     time.Time  `bson:"created_at"`
	UpdatedAt     time.Time  `bson:"updated_at"`
}

func orderDocFrom(o *order.Order) orderDoc {
	return orderDoc{
		ID:          o.ID,
		ProductID:   o.ProductID,
		ProductName: o.ProductName,
		BuyerEmail:  o.BuyerEmail,
		Contact: contactDoc{
			BuyerName: o.Contact.BuyerName,
			Phone:     o.Contact.Phone,
			Address:   o.Contact.Address,
		},
		Quantity:      o.Quantity,
		Amount:        o.Amount,
		Paid:          o.Paid,
		Delivery:      o.Delivery,
		TransactionID: o.TransactionID,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func (d orderDoc) toDomain() *order.Order {
	return &order.Order{
		ID:          d.ID,
		ProductID:   d.ProductID,
		ProductName: d.ProductName,
		BuyerEmail:  d.BuyerEmail,
		Contact: order.Contact{
			BuyerName: d.Contact.BuyerName,
			Phone:     d.Contact.Phone,
			Address:   d.Contact.Address,
		},
		Quantity:      d.Quantity,
		Amount:        d.Amount,
		Paid:          d.Paid,
		Delivery:      d.Delivery,
		TransactionID: d.TransactionID,
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
	}
}

type paymentDoc struct {
	TransactionID string    `bson:"_id"`
	OrderID       string    `bson:"order_id"`
	BuyerEmail    string    `bson:"buyer_email"`
	Amount        int64     `bson:"amount"`
	Currency      string    `bson:"currency"`
	CreatedAt     time.Time `bson:"created_at"`
}

func paymentDocFrom(p *payment.Payment) paymentDoc {
	return paymentDoc{
		TransactionID: p.TransactionID,
		OrderID:       p.OrderID,
		BuyerEmail:    p.BuyerEmail,
		Amount:        p.Amount,
		Currency:      p.Currency,
		CreatedAt:     p.CreatedAt,
	}
}

func (d paymentDoc) toDomain() *payment.Payment {
	return &payment.Payment{
		TransactionID: d.TransactionID,
		OrderID:       d.OrderID,
		BuyerEmail:    d.BuyerEmail,
		Amount:        d.Amount,
		Currency:      d.Currency,
		CreatedAt:     d.CreatedAt.UTC(),
	}
}

type reviewDoc struct {
	ID          string    `bson:"_id"`
	AuthorEmail string    `bson:"author_email"`
	Name        string    `bson:"name"`
	Rating      int       `bson:"rating"`
	Comment     string    `bson:"comment"`
	CreatedAt   time.Time `bson:"created_at"`
}

func (d reviewDoc) toDomain() *review.Review {
	return &review.Review{
		ID:          d.ID,
		AuthorEmail: d.AuthorEmail,
		Name:        d.Name,
		Rating:      d.Rating,
		Comment:     d.Comment,
		CreatedAt:   d.CreatedAt.UTC(),
	}
}
