package httppresentation

import (
	"time"

	domidentity "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/identity"
	domorder "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/order"
	domproduct "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/product"
	domreview "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/review"
)

type profileRequest struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Education string `json:"education"`
	LinkedIn  string `json:"linkedin"`
	Image     string `json:"image"`
}

func (p profileRequest) fields() domidentity.Fields {
	return domidentity.Fields{
		Name:      p.Name,
		Phone:     p.Phone,
		Address:   p.Address,
		Education: p.Education,
		LinkedIn:  p.LinkedIn,
		Image:     p.Image,
	}
}

type profileResponse struct {
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Name      string    `json:"name,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Education string    `json:"education,omitempty"`
	LinkedIn  string    `json:"linkedin,omitempty"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func toProfileResponse(p *domidentity.Profile) profileResponse {
	return profileResponse{
		Email:     p.Email,
		Role:      p.Role.String(),
		Name:      p.Name,
		Phone:     p.Phone,
		Address:   p.Address,
		Education: p.Education,
		LinkedIn:  p.LinkedIn,
		Image:     p.Image,
		CreatedAt: p.CreatedAt,
	}
}

type upsertProfileResponse struct {
	Profile  profileResponse `json:"profile"`
	Inserted bool            `json:"inserted"`
	Token    string          `json:"token"`
}

type adminResponse struct {
	Admin bool `json:"admin"`
}

type productRequest struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	Image             string `json:"image"`
	Price             *int64 `json:"price"`
	MinimumOrder      *int   `json:"minimumOrder"`
	AvailableQuantity int    `json:"availableQuantity"`
}

func (p productRequest) details() domproduct.Details {
	return domproduct.Details{
		Name:         p.Name,
		Description:  p.Description,
		Image:        p.Image,
		Price:        p.Price,
		MinimumOrder: p.MinimumOrder,
	}
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type decrementRequest struct {
	Amount int `json:"amount"`
}

type productResponse struct {
	ID                string    `json:"id"`
	OwnerEmail        string    `json:"ownerEmail"`
	Name              string    `json:"name"`
	Description       string    `json:"description,omitempty"`
	Image             string    `json:"image,omitempty"`
	Price             int64     `json:"price"`
	MinimumOrder      int       `json:"minimumOrder"`
	AvailableQuantity int       `json:"availableQuantity"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func toProductResponse(p *domproduct.Product) productResponse {
	return productResponse{
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

type createOrderRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	BuyerName string `json:"buyerName"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

type recordPaymentRequest struct {
	TransactionID string `json:"transactionId"`
}

type orderResponse struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"productId"`
	ProductName   string    `json:"productName"`
	BuyerEmail    string    `json:"buyerEmail"`
	BuyerName     string    `json:"buyerName,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Address       string    `json:"address,omitempty"`
	Quantity      int       `json:"quantity"`
	Amount        int64     `json:"amount"`
	Status        string    `json:"status"`
	Paid          bool      `json:"paid"`
	Delivery      bool      `json:"delivery"`
	TransactionID string    `json:"transactionId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func toOrderResponse(o *domorder.Order) orderResponse {
	return orderResponse{
		ID:            o.ID,
		ProductID:     o.ProductID,
		ProductName:   o.ProductName,
		BuyerEmail:    o.BuyerEmail,
		BuyerName:     o.Contact.BuyerName,
		Phone:         o.Contact.Phone,
		Address:       o.Contact.Address,
		Quantity:      o.Quantity,
		Amount:        o.Amount,
		Status:        string(o.Status()),
		Paid:          o.Paid,
		Delivery:      o.Delivery,
		TransactionID: o.TransactionID,
		CreatedAt:     o.CreatedAt,
	}
}

type paymentIntentResponse struct {
	CaptureHandle string `json:"captureHandle"`
	ClientSecret  string `json:"clientSecret"`
}

type reviewRequest struct {
	Name    string `json:"name"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type reviewResponse struct {
	ID          string    `json:"id"`
	AuthorEmail string    `json:"authorEmail"`
	Name        string    `json:"name,omitempty"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toReviewResponse(r *domreview.Review) reviewResponse {
	return reviewResponse{
		ID:          r.ID,
		AuthorEmail: r.AuthorEmail,
		Name:        r.Name,
		Rating:      r.Rating,
		Comment:     r.Comment,
		CreatedAt:   r.CreatedAt,
	}
}

type reconcileRequest struct {
	DryRun bool `json:"dryRun"`
}

func mapSlice[T, R any](in []T, fn func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
