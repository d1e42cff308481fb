package migration

import (
	"context"
	"testing"
	"time"

	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/repository/memory"
	timeprovider "github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/time"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedCatalogIsIdempotent(t *testing.T) {
	ctx := context.Background()
	log := logger.NewNoopLogger()
	store := memory.NewStore(timeprovider.NewManualTimeProvider(time.Now()), log)
	items := store.GetItemRepository(ctx)

	created, err := SeedCatalog(ctx, items, log)
	require.NoError(t, err)
	assert.Equal(t, len(defaultCatalog), created)

	created, err = SeedCatalog(ctx, items, log)
	require.NoError(t, err)
	assert.Zero(t, created)

	burger, err := items.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "ITEM-BURGER-001", burger.SKU)
	assert.True(t, burger.Price.Equal(decimal.RequireFromString("129.00")))
	assert.Equal(t, 120, burger.Stock)
	assert.True(t, burger.IsActive)
}
