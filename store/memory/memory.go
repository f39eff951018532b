// Package memory provides an in-memory property.Store for tests and dev.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hauswart/settlement-engine/billing"
	"github.com/hauswart/settlement-engine/property"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Store struct {
	mu sync.RWMutex

	buildings   map[string]property.Building
	apartments  map[string]property.Apartment
	tenants     []billing.Tenant
	meters      []billing.WaterMeter
	readings    []billing.MeterReading
	costItems   map[costKey][]billing.CostItem
	prepayments []property.Prepayment
	waterCost   map[costKey]decimal.Decimal
	waterVolume map[costKey]decimal.Decimal
	statements  []*property.Statement
}

type costKey struct {
	BuildingID string
	Year       int
}

func New() *Store {
	return &Store{
		buildings:   map[string]property.Building{},
		apartments:  map[string]property.Apartment{},
		costItems:   map[costKey][]billing.CostItem{},
		waterCost:   map[costKey]decimal.Decimal{},
		waterVolume: map[costKey]decimal.Decimal{},
	}
}

func (s *Store) AddBuilding(b property.Building) property.Building {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	s.buildings[b.ID] = b
	return b
}

func (s *Store) AddApartment(a property.Apartment) property.Apartment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	s.apartments[a.ID] = a
	return a
}

func (s *Store) AddTenant(t billing.Tenant) billing.Tenant {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	s.tenants = append(s.tenants, t)
	return t
}

func (s *Store) AddMeter(m billing.WaterMeter)         { s.mu.Lock(); defer s.mu.Unlock(); s.meters = append(s.meters, m) }
func (s *Store) AddReading(r billing.MeterReading)     { s.mu.Lock(); defer s.mu.Unlock(); s.readings = append(s.readings, r) }
func (s *Store) AddPrepayment(p property.Prepayment)   { s.mu.Lock(); defer s.mu.Unlock(); s.prepayments = append(s.prepayments, p) }

func (s *Store) AddCostItem(buildingID string, year int, item billing.CostItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := costKey{buildingID, year}
	s.costItems[k] = append(s.costItems[k], item)
}

func (s *Store) SetWaterTotals(buildingID string, year int, cost, consumption decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := costKey{buildingID, year}
	s.waterCost[k] = cost
	s.waterVolume[k] = consumption
}

// =============================================================================
// property.Store implementation
// =============================================================================

func (s *Store) GetBuilding(_ context.Context, id string) (property.Building, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.buildings[id]
	if !ok {
		return b, fmt.Errorf("building %s not found", id)
	}
	return b, nil
}

func (s *Store) ListBuildings(_ context.Context) ([]property.Building, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var buildings []property.Building
	for _, b := range s.buildings {
		buildings = append(buildings, b)
	}
	return buildings, nil
}

func (s *Store) ListTenants(_ context.Context, buildingID string) ([]billing.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var tenants []billing.Tenant
	for _, t := range s.tenants {
		apt, ok := s.apartments[t.ApartmentID]
		if !ok || apt.BuildingID != buildingID {
			continue
		}
		t.AreaSqm = apt.AreaSqm
		tenants = append(tenants, t)
	}
	return tenants, nil
}

func (s *Store) ListCostItems(_ context.Context, buildingID string, year int) ([]billing.CostItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.costItems[costKey{buildingID, year}], nil
}

func (s *Store) ListMeters(_ context.Context, buildingID string) ([]billing.WaterMeter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var meters []billing.WaterMeter
	for _, m := range s.meters {
		if apt, ok := s.apartments[m.ApartmentID]; ok && apt.BuildingID == buildingID {
			meters = append(meters, m)
		}
	}
	return meters, nil
}

func (s *Store) ListReadings(_ context.Context, buildingID string) ([]billing.MeterReading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meterBuilding := map[string]string{}
	for _, m := range s.meters {
		if apt, ok := s.apartments[m.ApartmentID]; ok {
			meterBuilding[m.ID] = apt.BuildingID
		}
	}
	var readings []billing.MeterReading
	for _, r := range s.readings {
		if meterBuilding[r.MeterID] == buildingID {
			readings = append(readings, r)
		}
	}
	return readings, nil
}

func (s *Store) ListPrepayments(_ context.Context, buildingID string) ([]property.Prepayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tenantBuilding := map[string]string{}
	for _, t := range s.tenants {
		if apt, ok := s.apartments[t.ApartmentID]; ok {
			tenantBuilding[t.ID] = apt.BuildingID
		}
	}
	var prepayments []property.Prepayment
	for _, p := range s.prepayments {
		if tenantBuilding[p.TenantID] == buildingID {
			prepayments = append(prepayments, p)
		}
	}
	return prepayments, nil
}

func (s *Store) GetWaterTotals(_ context.Context, buildingID string, year int) (decimal.Decimal, decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k := costKey{buildingID, year}
	return s.waterCost[k], s.waterVolume[k], nil
}

func (s *Store) SaveStatement(_ context.Context, st *property.Statement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	s.statements = append(s.statements, st)
	return nil
}

// HasStatement reports whether a statement's period starts in the given year.
func (s *Store) HasStatement(_ context.Context, buildingID string, year int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.statements {
		if st.BuildingID == buildingID && st.Period.Start.Year() == year {
			return true, nil
		}
	}
	return false, nil
}

// Statements returns everything saved so far (test helper).
func (s *Store) Statements() []*property.Statement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*property.Statement(nil), s.statements...)
}
