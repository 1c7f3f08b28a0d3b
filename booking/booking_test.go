package booking

import (
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"foodcourt-api/apperr"
	"foodcourt-api/config"
	"foodcourt-api/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.Open(filepath.Join(t.TempDir(), "booking_test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return db
}

type fixture struct {
	customer models.User
	other    models.User
	owner    models.User
	outlet   models.Outlet
	table    models.FoodCourtTable
	table2   models.FoodCourtTable
}

func seed(t *testing.T, db *gorm.DB) fixture {
	t.Helper()
	f := fixture{
		customer: models.User{Name: "Jane", Email: "jane@example.com", PasswordHash: "x", Role: models.RoleCustomer},
		other:    models.User{Name: "John", Email: "john@example.com", PasswordHash: "x", Role: models.RoleCustomer},
		owner:    models.User{Name: "Wanjiku", Email: "wanjiku@example.com", PasswordHash: "x", Role: models.RoleOutlet},
	}
	for _, u := range []*models.User{&f.customer, &f.other, &f.owner} {
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("failed to seed user: %v", err)
		}
	}
	f.outlet = models.Outlet{OwnerID: f.owner.ID, Name: "Mama's Kitchen", Cuisine: models.CuisineKenyan, IsActive: true}
	if err := db.Create(&f.outlet).Error; err != nil {
		t.Fatalf("failed to seed outlet: %v", err)
	}
	f.table = models.FoodCourtTable{OutletID: f.outlet.ID, TableNumber: 4, Capacity: 4, IsAvailable: true}
	f.table2 = models.FoodCourtTable{OutletID: f.outlet.ID, TableNumber: 5, Capacity: 6, IsAvailable: true}
	for _, tb := range []*models.FoodCourtTable{&f.table, &f.table2} {
		if err := db.Create(tb).Error; err != nil {
			t.Fatalf("failed to seed table: %v", err)
		}
	}
	return f
}

func (f fixture) customerIdent() models.Identity {
	return models.Identity{ID: f.customer.ID, Role: models.RoleCustomer}
}

func (f fixture) ownerIdent() models.Identity {
	return models.Identity{ID: f.owner.ID, Role: models.RoleOutlet}
}

// tomorrowAt returns a reservation start safely in the future.
func tomorrowAt(hour, min int) time.Time {
	d := time.Now().AddDate(0, 0, 1)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, min, 0, 0, d.Location())
}

func mustCreate(t *testing.T, db *gorm.DB, ident models.Identity, req CreateRequest) *models.Reservation {
	t.Helper()
	var r *models.Reservation
	err := db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		r, txErr = Create(tx, ident, req)
		return txErr
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	return r
}

func TestCreateReservationOverlap(t *testing.T) {
	db := openTestDB(t)
	f := seed(t, db)

	req := CreateRequest{OutletID: f.outlet.ID, TableID: f.table.ID, StartTime: tomorrowAt(12, 0), PartySize: 2}
	first := mustCreate(t, db, f.customerIdent(), req)
	if first.Status != models.ReservationPending {
		t.Fatalf("expected pending status, got %s", first.Status)
	}
	if !first.EndTime.Equal(first.StartTime.Add(time.Hour)) {
		t.Fatalf("expected 1h window, got end %v", first.EndTime)
	}
	if !first.Fee.Equal(models.ReservationFee) {
		t.Fatalf("expected fee %s, got %s", models.ReservationFee, first.Fee)
	}

	// Overlapping request 30 minutes in must conflict.
	overlapping := req
	overlapping.StartTime = tomorrowAt(12, 30)
	err := db.Transaction(func(tx *gorm.DB) error {
		_, txErr := Create(tx, models.Identity{ID: f.other.ID, Role: models.RoleCustomer}, overlapping)
		return txErr
	})
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// Contiguous window at 13:00 is non-overlapping (half-open intervals).
	contiguous := req
	contiguous.StartTime = tomorrowAt(13, 0)
	mustCreate(t, db, models.Identity{ID: f.other.ID, Role: models.RoleCustomer}, contiguous)
}

func TestCancelFreesWindow(t *testing.T) {
	db := openTestDB(t)
	f := seed(t, db)

	req := CreateRequest{OutletID: f.outlet.ID, TableID: f.table.ID, StartTime: tomorrowAt(18, 0), PartySize: 3}
	first := mustCreate(t, db, f.customerIdent(), req)

	err := db.Transaction(func(tx *gorm.DB) error {
		_, txErr := Cancel(tx, f.customerIdent(), first.ID)
		return txErr
	})
	if err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}

	// Identical window must now succeed; status alone frees the slot.
	mustCreate(t, db, models.Identity{ID: f.other.ID, Role: models.RoleCustomer}, req)

	var table models.FoodCourtTable
	if err := db.First(&table, f.table.ID).Error; err != nil {
		t.Fatalf("failed to reload table: %v", err)
	}
	if table.IsAvailable {
		t.Fatalf("expected legacy flag false while a live reservation holds a future window")
	}
}

func TestCreateValidation(t *testing.T) {
	db := openTestDB(t)
	f := seed(t, db)

	tests := []struct {
		name string
		req  CreateRequest
		kind apperr.Kind
	}{
		{
			name: "party size too small",
			req:  CreateRequest{OutletID: f.outlet.ID, TableID: f.table.ID, StartTime: tomorrowAt(10, 0), PartySize: 0},
			kind: apperr.KindValidation,
		},
		{
			name: "party size too large",
			req:  CreateRequest{OutletID: f.outlet.ID, TableID: f.table.ID, StartTime: tomorrowAt(10, 0), PartySize: 7},
			kind: apperr.KindValidation,
		},
		{
			name: "party exceeds capacity",
			req:  CreateRequest{OutletID: f.outlet.ID, TableID: f.table.ID, StartTime: tomorrowAt(10, 0), PartySize: 5},
			kind: apperr.KindValidation,
		},
		{
			name: "start in the past",
			req:  CreateRequest{OutletID: f.outlet.ID, TableID: f.table.ID, StartTime: time.Now().Add(-time.Hour), PartySize: 2},
			kind: apperr.KindValidation,
		},
		{
			name: "unknown table",
			req:  CreateRequest{OutletID: f.outlet.ID, TableID: 9999, StartTime: tomorrowAt(10, 0), PartySize: 2},
			kind: apperr.KindNotFound,
		},
		{
			name: "unknown outlet",
			req:  CreateRequest{OutletID: 9999, TableID: f.table.ID, StartTime: tomorrowAt(10, 0), PartySize: 2},
			kind: apperr.KindNotFound,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := db.Transaction(func(tx *gorm.DB) error {
				_, txErr := Create(tx, f.customerIdent(), tc.req)
				return txErr
			})
			if !apperr.IsKind(err, tc.kind) {
				t.Fatalf("expected kind %v, got %v", tc.kind, err)
			}
		})
	}
}

func TestConfirmOwnership(t *testing.T) {
	db := openTestDB(t)
	f := seed(t, db)

	r := mustCreate(t, db, f.customerIdent(), CreateRequest{
		OutletID: f.outlet.ID, TableID: f.table.ID, StartTime: tomorrowAt(11, 0), PartySize: 2,
	})

	// A different customer cannot confirm it.
	err := db.Transaction(func(tx *gorm.DB) error {
		_, txErr := Confirm(tx, models.Identity{ID: f.other.ID, Role: models.RoleCustomer}, r.ID)
		return txErr
	})
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	// The owner can, exactly once from pending.
	err = db.Transaction(func(tx *gorm.DB) error {
		_, txErr := Confirm(tx, f.customerIdent(), r.ID)
		return txErr
	})
	if err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		_, txErr := Confirm(tx, f.customerIdent(), r.ID)
		return txErr
	})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestOutletCancelAndComplete(t *testing.T) {
	db := openTestDB(t)
	f := seed(t, db)

	r := mustCreate(t, db, f.customerIdent(), CreateRequest{
		OutletID: f.outlet.ID, TableID: f.table.ID, StartTime: tomorrowAt(14, 0), PartySize: 2,
	})
	if err := db.Model(r).Update("status", models.ReservationConfirmed).Error; err != nil {
		t.Fatalf("failed to confirm fixture: %v", err)
	}

	// Completion is an outlet-only transition from confirmed.
	err := db.Transaction(func(tx *gorm.DB) error {
		_, txErr := Transition(tx, f.ownerIdent(), r.ID, models.ReservationCompleted)
		return txErr
	})
	if err != nil {
		t.Fatalf("Transition to completed returned error: %v", err)
	}

	// A completed reservation no longer blocks its window.
	mustCreate(t, db, f.customerIdent(), CreateRequest{
		OutletID: f.outlet.ID, TableID: f.table.ID, StartTime: tomorrowAt(14, 0), PartySize: 2,
	})
}

func TestReassign(t *testing.T) {
	db := openTestDB(t)
	f := seed(t, db)

	r := mustCreate(t, db, f.customerIdent(), CreateRequest{
		OutletID: f.outlet.ID, TableID: f.table.ID, StartTime: tomorrowAt(19, 0), PartySize: 2,
	})

	// Customers cannot reassign.
	err := db.Transaction(func(tx *gorm.DB) error {
		_, txErr := Reassign(tx, f.customerIdent(), r.ID, f.table2.ID)
		return txErr
	})
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	var moved *models.Reservation
	err = db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		moved, txErr = Reassign(tx, f.ownerIdent(), r.ID, f.table2.ID)
		return txErr
	})
	if err != nil {
		t.Fatalf("Reassign returned error: %v", err)
	}
	if moved.TableID != f.table2.ID {
		t.Fatalf("expected table %d, got %d", f.table2.ID, moved.TableID)
	}
	if !moved.Reassigned || moved.PreviousTableNumber == nil || *moved.PreviousTableNumber != f.table.TableNumber {
		t.Fatalf("expected audit fields set, got reassigned=%v prev=%v", moved.Reassigned, moved.PreviousTableNumber)
	}
	if moved.Status != models.ReservationPending {
		t.Fatalf("reassignment must not change status, got %s", moved.Status)
	}

	// The target table's window is validated: a second reservation there
	// cannot be moved on top of the first.
	other := mustCreate(t, db, models.Identity{ID: f.other.ID, Role: models.RoleCustomer}, CreateRequest{
		OutletID: f.outlet.ID, TableID: f.table.ID, StartTime: tomorrowAt(19, 0), PartySize: 2,
	})
	err = db.Transaction(func(tx *gorm.DB) error {
		_, txErr := Reassign(tx, f.ownerIdent(), other.ID, f.table2.ID)
		return txErr
	})
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestFindOverlapHalfOpen(t *testing.T) {
	db := openTestDB(t)
	f := seed(t, db)

	start := tomorrowAt(12, 0)
	mustCreate(t, db, f.customerIdent(), CreateRequest{
		OutletID: f.outlet.ID, TableID: f.table.ID, StartTime: start, PartySize: 2,
	})

	tests := []struct {
		name     string
		start    time.Time
		conflict bool
	}{
		{"identical window", start, true},
		{"starts mid-window", start.Add(30 * time.Minute), true},
		{"ends at existing start", start.Add(-time.Hour), false},
		{"starts at existing end", start.Add(time.Hour), false},
		{"covers existing", start.Add(-30 * time.Minute), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FindOverlap(db, f.table.ID, tc.start, tc.start.Add(time.Hour), 0)
			if err != nil {
				t.Fatalf("FindOverlap returned error: %v", err)
			}
			if (got != nil) != tc.conflict {
				t.Fatalf("conflict = %v, want %v", got != nil, tc.conflict)
			}
		})
	}
}
