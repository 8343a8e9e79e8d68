package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePaymentIntent(t *testing.T) {
	g := NewSimulatedGateway()
	ctx := context.Background()

	first, err := g.CreatePaymentIntent(ctx, PaymentIntentRequest{
		AmountCents: 999, Currency: "usd", Description: "Starter Pack",
	})
	require.NoError(t, err)
	assert.Equal(t, "pi_sim_000001", first.ID)
	assert.Equal(t, "pi_sim_000001_secret", first.ClientSecret)

	second, err := g.CreatePaymentIntent(ctx, PaymentIntentRequest{AmountCents: 1})
	require.NoError(t, err)
	assert.Equal(t, "pi_sim_000002", second.ID)

	require.Len(t, g.Intents, 2)
	assert.Equal(t, "Starter Pack", g.Intents[0].Description)
}

func TestCreatePaymentIntentRejectsNonPositiveAmounts(t *testing.T) {
	g := NewSimulatedGateway()
	ctx := context.Background()

	_, err := g.CreatePaymentIntent(ctx, PaymentIntentRequest{AmountCents: 0})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = g.CreatePaymentIntent(ctx, PaymentIntentRequest{AmountCents: -500})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	assert.Empty(t, g.Intents)
}

func TestSyncProductMintsRefs(t *testing.T) {
	g := NewSimulatedGateway()
	ctx := context.Background()

	first, err := g.SyncProduct(ctx, ProductSyncRequest{Name: "Templates", PriceCents: 1299})
	require.NoError(t, err)
	assert.Equal(t, "prod_sim_000001", first.ProductRef)
	assert.Equal(t, "price_sim_000001", first.PriceRef)

	// re-sync keeps the product ref but prices are immutable, so a new one
	// is minted every time
	second, err := g.SyncProduct(ctx, ProductSyncRequest{
		Name: "Templates", PriceCents: 1499, ProductRef: first.ProductRef,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ProductRef, second.ProductRef)
	assert.Equal(t, "price_sim_000002", second.PriceRef)
}

func TestSyncProductValidation(t *testing.T) {
	g := NewSimulatedGateway()
	ctx := context.Background()

	_, err := g.SyncProduct(ctx, ProductSyncRequest{Name: "", PriceCents: 999})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name required")

	_, err = g.SyncProduct(ctx, ProductSyncRequest{Name: "Templates", PriceCents: 0})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}
