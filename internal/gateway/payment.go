package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrInvalidAmount is returned for a non-positive charge amount. Amounts
// are integer cents; there is no fractional currency anywhere in the
// system.
var ErrInvalidAmount = errors.New("invalid amount: must be positive integer cents")

// PaymentIntentRequest describes a one-off charge.
type PaymentIntentRequest struct {
	AmountCents  int64
	Currency     string
	Description  string
	ReceiptEmail string
}

// PaymentIntent is the provider's handle for a created charge.
type PaymentIntent struct {
	ID           string
	ClientSecret string
}

// ProductSyncRequest describes a sellable listing to mirror into the
// payment provider. ProductRef is empty on first publish; set on
// re-publish so the provider updates the existing product.
type ProductSyncRequest struct {
	Name        string
	Description string
	PriceCents  int64
	Currency    string
	ProductRef  string
}

// ProductSync is the provider's identifiers for a synced listing. A new
// PriceRef is minted on every sync because provider prices are immutable.
type ProductSync struct {
	ProductRef string
	PriceRef   string
}

// PaymentGateway is the payment provider seam.
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (PaymentIntent, error)
	SyncProduct(ctx context.Context, req ProductSyncRequest) (ProductSync, error)
}

// SimulatedGateway is an in-memory PaymentGateway with deterministic
// identifiers. It enforces the same validation the real provider endpoint
// would: positive integer cents and a non-empty product name.
type SimulatedGateway struct {
	mu      sync.Mutex
	intents int64
	prods   int64
	prices  int64

	// Intents records every created intent for test assertions.
	Intents []PaymentIntentRequest
}

// NewSimulatedGateway creates an empty simulated provider.
func NewSimulatedGateway() *SimulatedGateway {
	return &SimulatedGateway{}
}

// CreatePaymentIntent validates the amount and returns a deterministic
// intent handle.
func (g *SimulatedGateway) CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (PaymentIntent, error) {
	if req.AmountCents <= 0 {
		return PaymentIntent{}, ErrInvalidAmount
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.intents++
	g.Intents = append(g.Intents, req)

	id := fmt.Sprintf("pi_sim_%06d", g.intents)
	return PaymentIntent{
		ID:           id,
		ClientSecret: id + "_secret",
	}, nil
}

// SyncProduct validates the listing and returns deterministic product and
// price identifiers. A request carrying an existing ProductRef keeps it and
// only mints a new price.
func (g *SimulatedGateway) SyncProduct(ctx context.Context, req ProductSyncRequest) (ProductSync, error) {
	if req.Name == "" {
		return ProductSync{}, errors.New("invalid product: name required")
	}
	if req.PriceCents <= 0 {
		return ProductSync{}, ErrInvalidAmount
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	productRef := req.ProductRef
	if productRef == "" {
		g.prods++
		productRef = fmt.Sprintf("prod_sim_%06d", g.prods)
	}
	g.prices++
	return ProductSync{
		ProductRef: productRef,
		PriceRef:   fmt.Sprintf("price_sim_%06d", g.prices),
	}, nil
}
