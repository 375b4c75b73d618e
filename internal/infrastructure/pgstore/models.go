package pgstore

import (
	"time"

	"github.com/Zhima-Mochi/minishop-marketplace/internal/domain/identity"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/domain/payment"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/domain/review"
)

type profileModel struct {
	Email     string `gorm:"primaryKey"`
	Role      string `gorm:"not null;default:''"`
	Name      string
	Phone     string
	Address   string
	Education string
	LinkedIn  string `gorm:"column:linkedin"`
	Image     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (profileModel) TableName() string { return "profiles" }

func (m profileModel) toDomain() *identity.Profile {
	return &identity.Profile{
		Email:     m.Email,
		Role:      identity.Role(m.Role),
		Name:      m.Name,
		Phone:     m.Phone,
		Address:   m.Address,
		Education: m.Education,
		LinkedIn:  m.LinkedIn,
		Image:     m.Image,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

type productModel struct {
	ID                string `gorm:"primaryKey"`
	OwnerEmail        string `gorm:"index;not null"`
	Name              string `gorm:"not null"`
	Description       string
	Image             string
	Price             int64
	MinimumOrder      int
	AvailableQuantity int `gorm:"not null;check:available_quantity >= 0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (productModel) TableName() string { return "products" }

func productModelFrom(p *product.Product) productModel {
	return productModel{
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

func (m productModel) toDomain() *product.Product {
	return &product.Product{
		ID:                m.ID,
		OwnerEmail:        m.OwnerEmail,
		Name:              m.Name,
		Description:       m.Description,
		Image:             m.Image,
		Price:             m.Price,
		MinimumOrder:      m.MinimumOrder,
		AvailableQuantity: m.AvailableQuantity,
		CreatedAt:         m.CreatedAt.UTC(),
		UpdatedAt:         m.UpdatedAt.UTC(),
	}
}

type orderModel struct {
	ID            string `gorm:"primaryKey"`
	ProductID     string `gorm:"index;not null"`
	ProductName   string
	BuyerEmail    string `gorm:"index;not null"`
	BuyerName     string
	Phone         string
	Address       string
	Quantity      int
	Amount        int64
	Paid          bool `gorm:"not null;default:false"`
	Delivery      bool `gorm:"not null;default:false"`
	TransactionID string
	CreatedAt     time.Time `gorm:"index"`
	UpdatedAt     time.Time
}

func (orderModel) TableName() string { return "orders" }

func orderModelFrom(o *order.Order) orderModel {
	return orderModel{
		ID:            o.ID,
		ProductID:     o.ProductID,
		ProductName:   o.ProductName,
		BuyerEmail:    o.BuyerEmail,
		BuyerName:     o.Contact.BuyerName,
		Phone:         o.Contact.Phone,
		Address:       o.Contact.Address,
		Quantity:      o.Quantity,
		Amount:        o.Amount,
		Paid:          o.Paid,
		Delivery:      o.Delivery,
		TransactionID: o.TransactionID,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func (m orderModel) toDomain() *order.Order {
	return &order.Order{
		ID:          m.ID,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		BuyerEmail:  m.BuyerEmail,
		Contact: order.Contact{
			BuyerName: m.BuyerName,
			Phone:     m.Phone,
			Address:   m.Address,
		},
		Quantity:      m.Quantity,
		Amount:        m.Amount,
		Paid:          m.Paid,
		Delivery:      m.Delivery,
		TransactionID: m.TransactionID,
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

type paymentModel struct {
	TransactionID string `gorm:"primaryKey"`
	OrderID       string `gorm:"uniqueIndex;not null"`
	BuyerEmail    string
	Amount        int64
	Currency      string
	CreatedAt     time.Time
}

func (paymentModel) TableName() string { return "payments" }

func paymentModelFrom(p *payment.Payment) paymentModel {
	return paymentModel{
		TransactionID: p.TransactionID,
		OrderID:       p.OrderID,
		BuyerEmail:    p.BuyerEmail,
		Amount:        p.Amount,
		Currency:      p.Currency,
		CreatedAt:     p.CreatedAt,
	}
}

func (m paymentModel) toDomain() *payment.Payment {
	return &payment.Payment{
		TransactionID: m.TransactionID,
		OrderID:       m.OrderID,
		BuyerEmail:    m.BuyerEmail,
		Amount:        m.Amount,
		Currency:      m.Currency,
		CreatedAt:     m.CreatedAt.UTC(),
	}
}

type reviewModel struct {
	ID          string `gorm:"primaryKey"`
	AuthorEmail string `gorm:"index;not null"`
	Name        string
	Rating      int
	Comment     string
	CreatedAt   time.Time `gorm:"index"`
}

func (reviewModel) TableName() string { return "reviews" }

func (m reviewModel) toDomain() *review.Review {
	return &review.Review{
		ID:          m.ID,
		AuthorEmail: m.AuthorEmail,
		Name:        m.Name,
		Rating:      m.Rating,
		Comment:     m.Comment,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}
