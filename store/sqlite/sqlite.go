/*
Package sqlite provides the SQLite-backed persistence layer.

PURPOSE:
  Stores the property records the settlement engine consumes (buildings,
  apartments, tenants, meters, readings, cost items, prepayments, water
  totals, finance entries) and the generated statements. The billing core
  never touches this package; it receives plain records.

KEY TABLES:
  buildings, apartments, tenants:  master data
  water_meters, meter_readings:    metering
  cost_items, water_totals:        per-year statement configuration
  prepayments:                     tenant advance payments
  statements:                      generated statement payloads (JSON)
  finance_entries:                 dashboard income/expense lines

STORAGE CONVENTIONS:
  Dates are ISO text (YYYY-MM-DD); empty string means "not set".
  Decimal amounts are stored as text to avoid float drift.

WAL MODE:
  SQLite is opened with WAL for better read concurrency. A sync.RWMutex
  serializes writers; with PostgreSQL the database would handle this.

USAGE:
  store, err := sqlite.New("./data/hauswart.db")
  ...
  service := property.NewStatementService(store)

SEE ALSO:
  - property/statement.go: the Store interface this implements
  - store/memory: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/hauswart/settlement-engine/billing"
	"github.com/hauswart/settlement-engine/property"
	"github.com/hauswart/settlement-engine/summary"
)

// Store implements property.Store plus the CRUD surface the API needs.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store. Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS buildings (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT
	);

	CREATE TABLE IF NOT EXISTS apartments (
		id TEXT PRIMARY KEY,
		building_id TEXT NOT NULL REFERENCES buildings(id),
		label TEXT,
		area_sqm TEXT NOT NULL DEFAULT '0'
	);
	CREATE INDEX IF NOT EXISTS idx_apartments_building ON apartments(building_id);

	CREATE TABLE IF NOT EXISTS tenants (
		id TEXT PRIMARY KEY,
		apartment_id TEXT REFERENCES apartments(id),
		name TEXT NOT NULL,
		move_in TEXT NOT NULL DEFAULT '',
		move_out TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_tenants_apartment ON tenants(apartment_id);

	CREATE TABLE IF NOT EXISTS water_meters (
		id TEXT PRIMARY KEY,
		apartment_id TEXT NOT NULL REFERENCES apartments(id),
		custom_id TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_meters_apartment ON water_meters(apartment_id);

	CREATE TABLE IF NOT EXISTS meter_readings (
		id TEXT PRIMARY KEY,
		meter_id TEXT NOT NULL REFERENCES water_meters(id),
		reading_date TEXT NOT NULL,
		consumption TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_readings_meter_date ON meter_readings(meter_id, reading_date);

	CREATE TABLE IF NOT EXISTS cost_items (
		id TEXT PRIMARY KEY,
		building_id TEXT NOT NULL REFERENCES buildings(id),
		year INTEGER NOT NULL,
		name TEXT NOT NULL,
		amount TEXT NOT NULL,
		policy_label TEXT NOT NULL,
		individual_json TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_cost_items_building_year ON cost_items(building_id, year);

	CREATE TABLE IF NOT EXISTS prepayments (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL REFERENCES tenants(id),
		paid_at TEXT NOT NULL,
		amount TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_prepayments_tenant ON prepayments(tenant_id);

	CREATE TABLE IF NOT EXISTS water_totals (
		building_id TEXT NOT NULL REFERENCES buildings(id),
		year INTEGER NOT NULL,
		total_cost TEXT NOT NULL,
		total_consumption TEXT NOT NULL,
		PRIMARY KEY (building_id, year)
	);

	CREATE TABLE IF NOT EXISTS statements (
		id TEXT PRIMARY KEY,
		building_id TEXT NOT NULL REFERENCES buildings(id),
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		generated_at TEXT NOT NULL,
		draft INTEGER NOT NULL DEFAULT 0,
		payload TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_statements_building ON statements(building_id, period_start);

	CREATE TABLE IF NOT EXISTS finance_entries (
		id TEXT PRIMARY KEY,
		building_id TEXT NOT NULL REFERENCES buildings(id),
		booked_at TEXT NOT NULL,
		category TEXT NOT NULL,
		kind TEXT NOT NULL,
		amount TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_finance_building_date ON finance_entries(building_id, booked_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Reset wipes every table. Demo scenarios use it; never call in production.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"finance_entries", "statements", "water_totals", "prepayments",
		"cost_items", "meter_readings", "water_meters", "tenants",
		"apartments", "buildings",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("resetting %s: %w", table, err)
		}
	}
	return nil
}

func ensureID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

func dateText(d billing.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.ISO()
}

func parseDateText(s string) billing.Date {
	if s == "" {
		return billing.Date{}
	}
	d, err := billing.ParseDate(s)
	if err != nil {
		return billing.Date{}
	}
	return d
}

func parseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// =============================================================================
// BUILDINGS / APARTMENTS
// =============================================================================

func (s *Store) CreateBuilding(ctx context.Context, b property.Building) (property.Building, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b.ID = ensureID(b.ID)
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO buildings (id, name, address) VALUES (?, ?, ?)",
		b.ID, b.Name, b.Address)
	return b, err
}

func (s *Store) GetBuilding(ctx context.Context, id string) (property.Building, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var b property.Building
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, COALESCE(address, '') FROM buildings WHERE id = ?", id).
		Scan(&b.ID, &b.Name, &b.Address)
	if err == sql.ErrNoRows {
		return b, fmt.Errorf("building %s not found", id)
	}
	return b, err
}

func (s *Store) ListBuildings(ctx context.Context) ([]property.Building, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, COALESCE(address, '') FROM buildings ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buildings []property.Building
	for rows.Next() {
		var b property.Building
		if err := rows.Scan(&b.ID, &b.Name, &b.Address); err != nil {
			return nil, err
		}
		buildings = append(buildings, b)
	}
	return buildings, rows.Err()
}

func (s *Store) CreateApartment(ctx context.Context, a property.Apartment) (property.Apartment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = ensureID(a.ID)
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO apartments (id, building_id, label, area_sqm) VALUES (?, ?, ?, ?)",
		a.ID, a.BuildingID, a.Label, a.AreaSqm.String())
	return a, err
}

func (s *Store) ListApartments(ctx context.Context, buildingID string) ([]property.Apartment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, building_id, COALESCE(label, ''), area_sqm FROM apartments WHERE building_id = ? ORDER BY label",
		buildingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apartments []property.Apartment
	for rows.Next() {
		var a property.Apartment
		var area string
		if err := rows.Scan(&a.ID, &a.BuildingID, &a.Label, &area); err != nil {
			return nil, err
		}
		a.AreaSqm = parseAmount(area)
		apartments = append(apartments, a)
	}
	return apartments, rows.Err()
}

// =============================================================================
// TENANTS
// =============================================================================

func (s *Store) CreateTenant(ctx context.Context, t billing.Tenant) (billing.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = ensureID(t.ID)
	var apartmentID interface{}
	if t.ApartmentID != "" {
		apartmentID = t.ApartmentID
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO tenants (id, apartment_id, name, move_in, move_out) VALUES (?, ?, ?, ?, ?)",
		t.ID, apartmentID, t.Name, dateText(t.MoveIn), dateText(t.MoveOut))
	return t, err
}

// ListTenants returns a building's tenants with the apartment area joined in,
// ready for the billing core.
func (s *Store) ListTenants(ctx context.Context, buildingID string) ([]billing.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, COALESCE(t.apartment_id, ''), t.name, t.move_in, t.move_out, a.area_sqm
		FROM tenants t
		JOIN apartments a ON a.id = t.apartment_id
		WHERE a.building_id = ?
		ORDER BY t.name`, buildingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []billing.Tenant
	for rows.Next() {
		var t billing.Tenant
		var moveIn, moveOut, area string
		if err := rows.Scan(&t.ID, &t.ApartmentID, &t.Name, &moveIn, &moveOut, &area); err != nil {
			return nil, err
		}
		t.MoveIn = parseDateText(moveIn)
		t.MoveOut = parseDateText(moveOut)
		t.AreaSqm = parseAmount(area)
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

// =============================================================================
// METERS / READINGS
// =============================================================================

func (s *Store) CreateMeter(ctx context.Context, m billing.WaterMeter) (billing.WaterMeter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.ID = ensureID(m.ID)
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO water_meters (id, apartment_id, custom_id) VALUES (?, ?, ?)",
		m.ID, m.ApartmentID, m.CustomID)
	return m, err
}

func (s *Store) ListMeters(ctx context.Context, buildingID string) ([]billing.WaterMeter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.apartment_id, COALESCE(m.custom_id, '')
		FROM water_meters m
		JOIN apartments a ON a.id = m.apartment_id
		WHERE a.building_id = ?`, buildingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meters []billing.WaterMeter
	for rows.Next() {
		var m billing.WaterMeter
		if err := rows.Scan(&m.ID, &m.ApartmentID, &m.CustomID); err != nil {
			return nil, err
		}
		meters = append(meters, m)
	}
	return meters, rows.Err()
}

func (s *Store) AddReading(ctx context.Context, r billing.MeterReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO meter_readings (id, meter_id, reading_date, consumption) VALUES (?, ?, ?, ?)",
		uuid.NewString(), r.MeterID, dateText(r.ReadingDate), r.Consumption.String())
	return err
}

func (s *Store) ListReadings(ctx context.Context, buildingID string) ([]billing.MeterReading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.meter_id, r.reading_date, r.consumption
		FROM meter_readings r
		JOIN water_meters m ON m.id = r.meter_id
		JOIN apartments a ON a.id = m.apartment_id
		WHERE a.building_id = ?
		ORDER BY r.reading_date`, buildingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []billing.MeterReading
	for rows.Next() {
		var r billing.MeterReading
		var readAt, consumption string
		if err := rows.Scan(&r.MeterID, &readAt, &consumption); err != nil {
			return nil, err
		}
		r.ReadingDate = parseDateText(readAt)
		r.Consumption = parseAmount(consumption)
		readings = append(readings, r)
	}
	return readings, rows.Err()
}

// =============================================================================
// COST ITEMS / WATER TOTALS
// =============================================================================

func (s *Store) AddCostItem(ctx context.Context, buildingID string, year int, item billing.CostItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var individual interface{}
	if len(item.Individual) > 0 {
		raw, err := json.Marshal(item.Individual)
		if err != nil {
			return err
		}
		individual = string(raw)
	}

	label := item.PolicyLabel
	if label == "" {
		label = item.Policy.Label()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cost_items (id, building_id, year, name, amount, policy_label, individual_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), buildingID, year, item.Name, item.Total.String(), label, individual)
	return err
}

func (s *Store) ListCostItems(ctx context.Context, buildingID string, year int) ([]billing.CostItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, amount, policy_label, COALESCE(individual_json, '')
		FROM cost_items WHERE building_id = ? AND year = ?
		ORDER BY name`, buildingID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []billing.CostItem
	for rows.Next() {
		var name, amount, label, individualJSON string
		if err := rows.Scan(&name, &amount, &label, &individualJSON); err != nil {
			return nil, err
		}
		item := billing.CostItem{
			Name:        name,
			Total:       parseAmount(amount),
			Policy:      billing.ParseAllocationPolicy(label),
			PolicyLabel: label,
		}
		if individualJSON != "" {
			if err := json.Unmarshal([]byte(individualJSON), &item.Individual); err != nil {
				return nil, fmt.Errorf("cost item %q: %w", name, err)
			}
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) SetWaterTotals(ctx context.Context, buildingID string, year int, cost, consumption decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO water_totals (building_id, year, total_cost, total_consumption)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(building_id, year) DO UPDATE SET
			total_cost = excluded.total_cost,
			total_consumption = excluded.total_consumption`,
		buildingID, year, cost.String(), consumption.String())
	return err
}

// GetWaterTotals returns the building-level water invoice figures for a year.
// Missing figures are zero, not an error; the allocator guards the division.
func (s *Store) GetWaterTotals(ctx context.Context, buildingID string, year int) (decimal.Decimal, decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var cost, consumption string
	err := s.db.QueryRowContext(ctx,
		"SELECT total_cost, total_consumption FROM water_totals WHERE building_id = ? AND year = ?",
		buildingID, year).Scan(&cost, &consumption)
	if err == sql.ErrNoRows {
		return decimal.Zero, decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return parseAmount(cost), parseAmount(consumption), nil
}

// =============================================================================
// PREPAYMENTS
// =============================================================================

func (s *Store) AddPrepayment(ctx context.Context, p property.Prepayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO prepayments (id, tenant_id, paid_at, amount) VALUES (?, ?, ?, ?)",
		uuid.NewString(), p.TenantID, dateText(p.PaidAt), p.Amount.String())
	return err
}

func (s *Store) ListPrepayments(ctx context.Context, buildingID string) ([]property.Prepayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.tenant_id, p.paid_at, p.amount
		FROM prepayments p
		JOIN tenants t ON t.id = p.tenant_id
		JOIN apartments a ON a.id = t.apartment_id
		WHERE a.building_id = ?
		ORDER BY p.paid_at`, buildingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prepayments []property.Prepayment
	for rows.Next() {
		var p property.Prepayment
		var paidAt, amount string
		if err := rows.Scan(&p.TenantID, &paidAt, &amount); err != nil {
			return nil, err
		}
		p.PaidAt = parseDateText(paidAt)
		p.Amount = parseAmount(amount)
		prepayments = append(prepayments, p)
	}
	return prepayments, rows.Err()
}

// =============================================================================
// STATEMENTS
// =============================================================================

func (s *Store) SaveStatement(ctx context.Context, st *property.Statement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	payload, err := json.Marshal(st)
	if err != nil {
		return err
	}

	draft := 0
	if st.Draft {
		draft = 1
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO statements (id, building_id, period_start, period_end, generated_at, draft, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		st.ID, st.BuildingID, st.Period.Start.ISO(), st.Period.End.ISO(),
		st.GeneratedAt.Format(time.RFC3339), draft, string(payload))
	return err
}

func (s *Store) GetStatement(ctx context.Context, id string) (*property.Statement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload string
	err := s.db.QueryRowContext(ctx,
		"SELECT payload FROM statements WHERE id = ?", id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("statement %s not found", id)
	}
	if err != nil {
		return nil, err
	}

	var st property.Statement
	if err := json.Unmarshal([]byte(payload), &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// ListStatements returns all statements of a building, newest first.
func (s *Store) ListStatements(ctx context.Context, buildingID string) ([]*property.Statement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM statements WHERE building_id = ?
		ORDER BY generated_at DESC`, buildingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var statements []*property.Statement
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var st property.Statement
		if err := json.Unmarshal([]byte(payload), &st); err != nil {
			return nil, err
		}
		statements = append(statements, &st)
	}
	return statements, rows.Err()
}

// HasStatement reports whether any statement's period starts in the given
// year for the building. The scheduler uses it to find missing statements.
func (s *Store) HasStatement(ctx context.Context, buildingID string, year int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM statements WHERE building_id = ? AND period_start LIKE ?",
		buildingID, fmt.Sprintf("%04d-%%", year)).Scan(&count)
	return count > 0, err
}

// =============================================================================
// FINANCE ENTRIES
// =============================================================================

func (s *Store) AddFinanceEntry(ctx context.Context, e summary.FinanceEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO finance_entries (id, building_id, booked_at, category, kind, amount)
		VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), e.BuildingID, dateText(e.BookedAt), e.Category, string(e.Kind), e.Amount.String())
	return err
}

func (s *Store) ListFinanceEntries(ctx context.Context, buildingID string) ([]summary.FinanceEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT building_id, booked_at, category, kind, amount
		FROM finance_entries WHERE building_id = ?
		ORDER BY booked_at`, buildingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []summary.FinanceEntry
	for rows.Next() {
		var e summary.FinanceEntry
		var bookedAt, kind, amount string
		if err := rows.Scan(&e.BuildingID, &bookedAt, &e.Category, &kind, &amount); err != nil {
			return nil, err
		}
		e.BookedAt = parseDateText(bookedAt)
		e.Kind = summary.EntryKind(kind)
		e.Amount = parseAmount(amount)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
