package supply

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/inventory-agent/internal/cache"
	"github.com/andresuchdata/inventory-agent/internal/domain"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func validInput() InputRequest {
	return InputRequest{
		ProductID:     "STEEL_SHEETS",
		CurrentStock:  floatPtr(150),
		DemandHistory: []float64{100, 120, 110},
		LeadTimeDays:  intPtr(7),
	}
}

func TestFromRequestDefaults(t *testing.T) {
	dc, err := FromRequest(validInput())
	require.NoError(t, err)

	assert.Equal(t, "STEEL_SHEETS", dc.ProductID)
	assert.Equal(t, 150.0, dc.CurrentStock)
	assert.Equal(t, 7, dc.LeadTimeDays)
	assert.Equal(t, DefaultServiceLevel, dc.ServiceLevel)
	assert.Equal(t, DefaultUnitPrice, dc.UnitPrice)
}

func TestFromRequestOverrides(t *testing.T) {
	req := validInput()
	req.ServiceLevel = floatPtr(0.9)
	req.UnitPrice = floatPtr(250)

	dc, err := FromRequest(req)
	require.NoError(t, err)
	assert.Equal(t, 0.9, dc.ServiceLevel)
	assert.Equal(t, 250.0, dc.UnitPrice)
}

func TestFromRequestValidation(t *testing.T) {
	t.Run("missing current stock", func(t *testing.T) {
		req := validInput()
		req.CurrentStock = nil
		_, err := FromRequest(req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "current_stock")
	})

	t.Run("zero current stock is valid", func(t *testing.T) {
		req := validInput()
		req.CurrentStock = floatPtr(0)
		dc, err := FromRequest(req)
		require.NoError(t, err)
		assert.Zero(t, dc.CurrentStock)
	})

	t.Run("short demand history", func(t *testing.T) {
		req := validInput()
		req.DemandHistory = []float64{100, 120}
		_, err := FromRequest(req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "demand_history")
	})

	t.Run("missing lead time", func(t *testing.T) {
		req := validInput()
		req.LeadTimeDays = nil
		_, err := FromRequest(req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "lead_time_days")
	})
}

func writeMockData(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	inventory := "product_id,current_stock,lead_time_days,service_level,unit_price\n" +
		"STEEL_SHEETS,150,7,0.95,500\n" +
		"NO_DEMAND,80,5,0.95,120\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mock_inventory.csv"), []byte(inventory), 0o644))

	demand := "product_id,quantity\n"
	for _, q := range []string{"100", "120", "110", "130", "125", "115", "140"} {
		demand += "STEEL_SHEETS," + q + "\n"
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mock_demand.csv"), []byte(demand), 0o644))

	return dir
}

func TestMockSupplierSupply(t *testing.T) {
	s := NewMockSupplier(writeMockData(t), nil)

	dc, err := s.Supply(context.Background(), "STEEL_SHEETS", ModeMock)
	require.NoError(t, err)

	assert.Equal(t, "STEEL_SHEETS", dc.ProductID)
	assert.Equal(t, 150.0, dc.CurrentStock)
	assert.Equal(t, 7, dc.LeadTimeDays)
	assert.Equal(t, 0.95, dc.ServiceLevel)
	assert.Equal(t, 500.0, dc.UnitPrice)
	assert.Equal(t, []float64{100, 120, 110, 130, 125, 115, 140}, dc.DemandHistory)
}

func TestMockSupplierUnknownProduct(t *testing.T) {
	s := NewMockSupplier(writeMockData(t), nil)

	_, err := s.Supply(context.Background(), "UNOBTAINIUM", ModeMock)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestMockSupplierNoDemandHistory(t *testing.T) {
	s := NewMockSupplier(writeMockData(t), nil)

	_, err := s.Supply(context.Background(), "NO_DEMAND", ModeMock)
	assert.ErrorIs(t, err, ErrNoDemandHistory)
}

func TestMockSupplierMissingDataDir(t *testing.T) {
	s := NewMockSupplier(filepath.Join(t.TempDir(), "nope"), nil)

	_, err := s.Supply(context.Background(), "STEEL_SHEETS", ModeMock)
	assert.Error(t, err)
}

// countingCache records lookups to verify memoization wiring.
type countingCache struct {
	store map[string]domain.DemandContext
	gets  int
	sets  int
}

func newCountingCache() *countingCache {
	return &countingCache{store: make(map[string]domain.DemandContext)}
}

func (c *countingCache) Get(_ context.Context, productID string) (domain.DemandContext, bool, error) {
	c.gets++
	dc, ok := c.store[productID]
	return dc, ok, nil
}

func (c *countingCache) Set(_ context.Context, productID string, dc domain.DemandContext) error {
	c.sets++
	c.store[productID] = dc
	return nil
}

var _ cache.SupplyCache = (*countingCache)(nil)

func TestMockSupplierUsesCache(t *testing.T) {
	cc := newCountingCache()
	s := NewMockSupplier(writeMockData(t), cc)

	first, err := s.Supply(context.Background(), "STEEL_SHEETS", ModeMock)
	require.NoError(t, err)
	second, err := s.Supply(context.Background(), "STEEL_SHEETS", ModeMock)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, cc.gets)
	assert.Equal(t, 1, cc.sets, "second lookup must be served from cache")
}
