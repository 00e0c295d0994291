package supply

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/inventory-agent/internal/cache"
	"github.com/andresuchdata/inventory-agent/internal/domain"
)

// MockSupplier serves demand contexts from the bundled CSV files
// (mock_inventory.csv and mock_demand.csv). Files are parsed lazily on
// first use; an optional cache memoizes per-product lookups.
type MockSupplier struct {
	dataDir string
	cache   cache.SupplyCache

	mu        sync.Mutex
	loaded    bool
	inventory map[string]inventoryRow
	demand    map[string][]float64
}

type inventoryRow struct {
	currentStock float64
	leadTimeDays int
	serviceLevel float64
	unitPrice    float64
}

// NewMockSupplier creates a supplier reading from dataDir. cacheImpl may be
// nil; a noop cache is substituted.
func NewMockSupplier(dataDir string, cacheImpl cache.SupplyCache) *MockSupplier {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopSupplyCache()
	}
	return &MockSupplier{dataDir: dataDir, cache: cacheImpl}
}

// Supply loads the demand context for productID. The mode argument is
// accepted for interface compatibility; this supplier always serves mock
// data.
func (s *MockSupplier) Supply(ctx context.Context, productID, mode string) (domain.DemandContext, error) {
	if dc, ok, err := s.cache.Get(ctx, productID); err == nil && ok {
		return dc, nil
	} else if err != nil {
		log.Warn().Err(err).Str("product_id", productID).Msg("supply cache get failed")
	}

	if err := s.load(); err != nil {
		return domain.DemandContext{}, err
	}

	inv, ok := s.inventory[productID]
	if !ok {
		return domain.DemandContext{}, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}

	history, ok := s.demand[productID]
	if !ok || len(history) == 0 {
		return domain.DemandContext{}, fmt.Errorf("%w: %s", ErrNoDemandHistory, productID)
	}

	dc := domain.DemandContext{
		ProductID:     productID,
		DemandHistory: history,
		LeadTimeDays:  inv.leadTimeDays,
		ServiceLevel:  inv.serviceLevel,
		CurrentStock:  inv.currentStock,
		UnitPrice:     inv.unitPrice,
	}

	if err := s.cache.Set(ctx, productID, dc); err != nil {
		log.Warn().Err(err).Str("product_id", productID).Msg("supply cache set failed")
	}

	return dc, nil
}

func (s *MockSupplier) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return nil
	}

	inventory, err := s.loadInventory(filepath.Join(s.dataDir, "mock_inventory.csv"))
	if err != nil {
		return err
	}

	demand, err := s.loadDemand(filepath.Join(s.dataDir, "mock_demand.csv"))
	if err != nil {
		return err
	}

	s.inventory = inventory
	s.demand = demand
	s.loaded = true
	return nil
}

// loadInventory parses rows of:
// product_id,current_stock,lead_time_days,service_level,unit_price
func (s *MockSupplier) loadInventory(path string) (map[string]inventoryRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mock inventory data not found at %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory header: %w", err)
	}
	col := indexColumns(header)

	rows := make(map[string]inventoryRow)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read inventory row: %w", err)
		}

		row := inventoryRow{
			currentStock: parseFloat(record, col, "current_stock", 0),
			leadTimeDays: int(parseFloat(record, col, "lead_time_days", 1)),
			serviceLevel: parseFloat(record, col, "service_level", DefaultServiceLevel),
			unitPrice:    parseFloat(record, col, "unit_price", DefaultUnitPrice),
		}
		rows[field(record, col, "product_id")] = row
	}

	return rows, nil
}

// loadDemand parses rows of: product_id,quantity — one observation per row,
// in chronological order.
func (s *MockSupplier) loadDemand(path string) (map[string][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mock demand data not found at %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read demand header: %w", err)
	}
	col := indexColumns(header)

	rows := make(map[string][]float64)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read demand row: %w", err)
		}

		id := field(record, col, "product_id")
		rows[id] = append(rows[id], parseFloat(record, col, "quantity", 0))
	}

	return rows, nil
}

func indexColumns(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	return col
}

func field(record []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

func parseFloat(record []string, col map[string]int, name string, fallback float64) float64 {
	raw := field(record, col, name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}
