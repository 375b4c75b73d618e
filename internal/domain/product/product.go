package product

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound          = errors.New("product: not found")
	ErrInvalidQuantity   = errors.New("product: quantity must not be negative")
	ErrInvalidAmount     = errors.New("product: amount must be greater than zero")
	ErrInvalidPrice      = errors.New("product: price must not be negative")
	ErrNameRequired      = errors.New("product: name is required")
	ErrInsufficientStock = errors.New("product: insufficient stock")
)

// Product is a catalog entry. Price is in minor currency units.
type Product struct {
	ID                string
	OwnerEmail        string
	Name              string
	Description       string
	Image             string
	Price             int64
	MinimumOrder      int
	AvailableQuantity int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Details are the descriptive attributes a product owner may edit.
type Details struct {
	Name         string
	Description  string
	Image        string
	Price        *int64
	MinimumOrder *int
}

func New(id, ownerEmail string, d Details, quantity int) (*Product, error) {
	if strings.TrimSpace(d.Name) == "" {
		return nil, ErrNameRequired
	}
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	p := &Product{
		ID:                id,
		OwnerEmail:        ownerEmail,
		AvailableQuantity: quantity,
	}
	if err := p.Apply(d); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	return p, nil
}

// Apply merges non-empty details. Quantity and owner are never touched here.
func (p *Product) Apply(d Details) error {
	if d.Price != nil && *d.Price < 0 {
		return ErrInvalidPrice
	}
	if d.MinimumOrder != nil && *d.MinimumOrder < 0 {
		return ErrInvalidQuantity
	}
	if v := strings.TrimSpace(d.Name); v != "" {
		p.Name = v
	}
	if v := strings.TrimSpace(d.Description); v != "" {
		p.Description = v
	}
	if v := strings.TrimSpace(d.Image); v != "" {
		p.Image = v
	}
	if d.Price != nil {
		p.Price = *d.Price
	}
	if d.MinimumOrder != nil {
		p.MinimumOrder = *d.MinimumOrder
	}
	p.touch()
	return nil
}

// Deduct removes amount units; stores use it under their own lock or as
// the reference semantics for their conditional update.
func (p *Product) Deduct(amount int) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount > p.AvailableQuantity {
		return ErrInsufficientStock
	}
	p.AvailableQuantity -= amount
	p.touch()
	return nil
}

func (p *Product) Restock(amount int) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	p.AvailableQuantity += amount
	p.touch()
	return nil
}

func (p *Product) SetQuantity(quantity int) error {
	if quantity < 0 {
		return ErrInvalidQuantity
	}
	p.AvailableQuantity = quantity
	p.touch()
	return nil
}

func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func (p *Product) touch() {
	p.UpdatedAt = time.Now().UTC()
}
