// Package simbackend is a development stand-in for the external rental
// backend. It keeps everything in memory (durable storage belongs to the
// real backend) but speaks the same wire protocol, so the client, console
// and integration tests can run against it unchanged.
package simbackend

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/fleetrent/fleetrent-client/internal/rental"
)

var (
	ErrBadCredentials      = errors.New("invalid email or password")
	ErrReservationNotFound = errors.New("reservation not found")
)

// IllegalTransitionError is returned when a requested status change is not
// in the transition table. Its message is what the API sends back verbatim.
type IllegalTransitionError struct {
	From rental.Status
	To   rental.Status
}

func (e *IllegalTransitionError) Error() string {
	switch e.From {
	case rental.StatusCancelled:
		return "Reservation already cancelled"
	case rental.StatusCompleted:
		return "Reservation already completed"
	case rental.StatusNoShow:
		return "Reservation already marked as no-show"
	default:
		return fmt.Sprintf("Cannot move reservation from %s to %s", e.From, e.To)
	}
}

// User is a seeded account.
type User struct {
	ID           uuid.UUID
	Email        string
	Username     string
	Role         string
	PasswordHash []byte
}

// Store is the in-memory state behind the simulator.
type Store struct {
	mu           sync.RWMutex
	users        map[string]*User // keyed by email
	reservations map[int64]*rental.Reservation
	order        []int64 // listing order, newest first
	branches     []rental.Branch
	cars         []rental.Car
	revenues     []rental.Revenue
	expenses     []rental.Expense
	nextID       int64
	table        rental.TransitionTable
}

// NewStore creates an empty store enforcing the given transition table.
func NewStore(table rental.TransitionTable) *Store {
	if table == nil {
		table = rental.DefaultTransitions()
	}
	return &Store{
		users:        make(map[string]*User),
		reservations: make(map[int64]*rental.Reservation),
		nextID:       1,
		table:        table,
	}
}

// AddUser registers an account with a bcrypt-hashed password.
func (s *Store) AddUser(email, username, role, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		Role:         role,
		PasswordHash: hash,
	}

	s.mu.Lock()
	s.users[email] = u
	s.mu.Unlock()
	return u, nil
}

// Authenticate checks credentials and returns the matching user.
func (s *Store) Authenticate(email, password string) (*User, error) {
	s.mu.RLock()
	u, ok := s.users[email]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}
	return u, nil
}

// UserByID looks an account up by id.
func (s *Store) UserByID(id uuid.UUID) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return nil, false
}

// AddReservation stores a reservation and assigns it an id.
func (s *Store) AddReservation(r rental.Reservation) rental.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = s.nextID
	s.nextID++
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	s.reservations[r.ID] = &r
	s.order = append([]int64{r.ID}, s.order...)
	return r
}

// ListQuery narrows and pages the reservation listing.
type ListQuery struct {
	From           string // DateFormat, matched against the start date
	To             string
	Status         rental.Status
	ClientUsername string // non-empty restricts to that client's bookings
	Page           int
	PageSize       int
}

// ListReservations applies the query and returns the requested page.
func (s *Store) ListReservations(q ListQuery) rental.Page[rental.Reservation] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var from, to time.Time
	if q.From != "" {
		from, _ = time.Parse(rental.DateFormat, q.From)
	}
	if q.To != "" {
		to, _ = time.Parse(rental.DateFormat, q.To)
	}

	var matched []rental.Reservation
	for _, id := range s.order {
		r := s.reservations[id]
		if q.Status != "" && r.Status != q.Status {
			continue
		}
		if q.ClientUsername != "" && r.ClientUsername != q.ClientUsername {
			continue
		}
		if !from.IsZero() && r.StartDate.Before(from) {
			continue
		}
		if !to.IsZero() && r.StartDate.After(to.Add(24*time.Hour-time.Nanosecond)) {
			continue
		}
		matched = append(matched, *r)
	}

	return paginate(matched, q.Page, q.PageSize)
}

// TransitionStatus applies a status change when the table allows it.
func (s *Store) TransitionStatus(id int64, target rental.Status) (*rental.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reservations[id]
	if !ok {
		return nil, ErrReservationNotFound
	}
	if !s.table.Allowed(r.Status, target) {
		return nil, &IllegalTransitionError{From: r.Status, To: target}
	}

	r.Status = target
	out := *r
	return &out, nil
}

// SetCatalog replaces the branch and car listings.
func (s *Store) SetCatalog(branches []rental.Branch, cars []rental.Car) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.branches = branches
	s.cars = cars
}

// Branches returns the branch directory.
func (s *Store) Branches() []rental.Branch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]rental.Branch(nil), s.branches...)
}

// Cars returns the fleet list.
func (s *Store) Cars() []rental.Car {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]rental.Car(nil), s.cars...)
}

// SetLedgers replaces the revenue and expense lines.
func (s *Store) SetLedgers(revenues []rental.Revenue, expenses []rental.Expense) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revenues = revenues
	s.expenses = expenses
}

// ListRevenues pages the revenue lines within the date range.
func (s *Store) ListRevenues(from, to string, page, pageSize int) rental.Page[rental.Revenue] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := filterByDate(s.revenues, from, to, func(r rental.Revenue) time.Time { return r.Date })
	return paginate(matched, page, pageSize)
}

// ListExpenses pages the expense lines within the date range.
func (s *Store) ListExpenses(from, to string, page, pageSize int) rental.Page[rental.Expense] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := filterByDate(s.expenses, from, to, func(e rental.Expense) time.Time { return e.Date })
	return paginate(matched, page, pageSize)
}

func filterByDate[T any](items []T, fromStr, toStr string, dateOf func(T) time.Time) []T {
	var from, to time.Time
	if fromStr != "" {
		from, _ = time.Parse(rental.DateFormat, fromStr)
	}
	if toStr != "" {
		to, _ = time.Parse(rental.DateFormat, toStr)
	}

	var matched []T
	for _, item := range items {
		d := dateOf(item)
		if !from.IsZero() && d.Before(from) {
			continue
		}
		if !to.IsZero() && d.After(to.Add(24*time.Hour-time.Nanosecond)) {
			continue
		}
		matched = append(matched, item)
	}
	return matched
}

func paginate[T any](items []T, page, pageSize int) rental.Page[T] {
	if pageSize <= 0 {
		pageSize = 20
	}
	if page < 0 {
		page = 0
	}

	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize

	start := page * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return rental.Page[T]{
		Items:         append([]T(nil), items[start:end]...),
		PageIndex:     page,
		TotalPages:    totalPages,
		TotalElements: int64(total),
	}
}

// SeedDemo loads a small data set good enough to click through every
// screen: two accounts, a few cars and branches, reservations in every
// lifecycle state, and some ledger lines.
func (s *Store) SeedDemo() error {
	if _, err := s.AddUser("manager@fleetrent.dev", "m.petrova", "MANAGER", "manager-pass"); err != nil {
		return err
	}
	if _, err := s.AddUser("client@fleetrent.dev", "j.doe", "CLIENT", "client-pass"); err != nil {
		return err
	}

	s.SetCatalog(
		[]rental.Branch{
			{ID: 1, Name: "Central", Address: "12 Harbor Rd", City: "Valletta", Phone: "+356 2100 0001"},
			{ID: 2, Name: "Airport", Address: "1 Terminal Ave", City: "Luqa", Phone: "+356 2100 0002"},
		},
		[]rental.Car{
			{ID: 1, Brand: "Toyota", Model: "Yaris", LicensePlate: "ABC-123", Year: 2022, Mileage: 24000, PricePerDay: decimal.NewFromInt(35), Category: "ECONOMY", Available: true},
			{ID: 2, Brand: "BMW", Model: "320i", LicensePlate: "XYZ-789", Year: 2023, Mileage: 9000, PricePerDay: decimal.NewFromInt(80), Category: "PREMIUM", Available: false},
		},
	)

	day := 24 * time.Hour
	now := time.Now().UTC().Truncate(day)
	statuses := []rental.Status{
		rental.StatusPending, rental.StatusConfirmed, rental.StatusPaid,
		rental.StatusActive, rental.StatusCompleted, rental.StatusCancelled,
		rental.StatusNoShow,
	}
	for i, status := range statuses {
		s.AddReservation(rental.Reservation{
			CarPlate:       "ABC-123",
			ClientUsername: "j.doe",
			StartDate:      now.Add(time.Duration(i-3) * 7 * day),
			EndDate:        now.Add(time.Duration(i-3)*7*day + 3*day),
			TotalAmount:    decimal.NewFromInt(105),
			Status:         status,
			CreatedAt:      now.Add(-time.Duration(len(statuses)-i) * day),
		})
	}

	s.SetLedgers(
		[]rental.Revenue{
			{ID: 1, CarPlate: "ABC-123", Amount: decimal.NewFromInt(105), Date: now.Add(-14 * day)},
			{ID: 2, CarPlate: "XYZ-789", Amount: decimal.NewFromInt(240), Date: now.Add(-7 * day)},
		},
		[]rental.Expense{
			{ID: 1, BranchName: "Central", Amount: decimal.NewFromInt(60), Date: now.Add(-10 * day), Description: "Tire change"},
			{ID: 2, BranchName: "Airport", Amount: decimal.NewFromInt(130), Date: now.Add(-2 * day), Description: "Quarterly service"},
		},
	)

	return nil
}
