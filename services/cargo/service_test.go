package cargo

import (
	"encoding/base64"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"cargo-delivery/apperrors"
	cargoModel "cargo-delivery/models/cargo"
	"cargo-delivery/models/shipment"
	"cargo-delivery/models/user"
	cargoTypes "cargo-delivery/types/cargo"
	"cargo-delivery/utils"
)

type deliveryMailStub struct {
	sent chan string
}

func (m *deliveryMailStub) SendDeliveryCode(to, username, code string, cargoID uint) error {
	if m.sent != nil {
		m.sent <- code
	}
	return nil
}

func setupEncryptionKey(t *testing.T) {
	t.Helper()
	key := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
	t.Setenv("ENCRYPTION_KEY", key)
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&user.User{}, &cargoModel.Cargo{}, &cargoModel.CargoEvent{}, &shipment.ShipmentSent{}))
	return db
}

var seededUsers atomic.Uint64

func seedUser(t *testing.T, db *gorm.DB, username string, role user.Role) *user.User {
	t.Helper()
	u := &user.User{
		Uuid:     fmt.Sprintf("uuid-%s", username),
		Username: username,
		Mail:     username + "@x.com",
		Phone:    fmt.Sprintf("+111%08d", seededUsers.Add(1)),
		Password: "digest",
		Role:     role,
		Enabled:  true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func cargoRequest() *cargoTypes.CargoRequest {
	return &cargoTypes.CargoRequest{
		Description:  "pallet of books",
		SelfLocation: cargoTypes.Location{Latitude: 41.0, Longitude: 29.0},
		Measure:      cargoTypes.Measure{Weight: 120, Height: 1.4},
		PhoneNumber:  "+11100000001",
	}
}

func storedCode(t *testing.T, db *gorm.DB, cargoID uint) string {
	t.Helper()
	var cg cargoModel.Cargo
	require.NoError(t, db.First(&cg, cargoID).Error)
	require.NotNil(t, cg.VerificationCode)
	code, err := utils.DecryptData(*cg.VerificationCode)
	require.NoError(t, err)
	return code
}

func TestLifecycleEndToEnd(t *testing.T) {
	setupEncryptionKey(t)
	db := testDB(t)
	mail := &deliveryMailStub{sent: make(chan string, 1)}
	svc := NewService(db, mail)

	alice := seedUser(t, db, "alice", user.RoleDistributor)
	bob := seedUser(t, db, "bob", user.RoleDriver)

	// Create with destination unset.
	list, err := svc.AddCargo(alice, cargoRequest())
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, cargoModel.SituationCreated, list[0].CargoSituation)
	require.Nil(t, list[0].TargetLocation)
	cargoID := list[0].ID

	// Edit while CREATED, setting the destination.
	req := cargoRequest()
	req.TargetLocation = &cargoTypes.Location{Latitude: 39.9, Longitude: 32.8}
	updated, err := svc.UpdateCargo(alice, cargoID, req)
	require.NoError(t, err)
	require.NotNil(t, updated.TargetLocation)
	require.Equal(t, 39.9, updated.TargetLocation.Latitude)

	// Pickup assigns bob and issues a non-empty code.
	taken, err := svc.TakeCargo(bob, cargoID)
	require.NoError(t, err)
	require.Equal(t, cargoModel.SituationPickedUp, taken.CargoSituation)

	code := storedCode(t, db, cargoID)
	require.Len(t, code, 6)

	// The code mailed to the distributor is the stored one.
	select {
	case mailed := <-mail.sent:
		require.Equal(t, code, mailed)
	case <-time.After(2 * time.Second):
		t.Fatal("delivery code mail was never dispatched")
	}

	var row cargoModel.Cargo
	require.NoError(t, db.First(&row, cargoID).Error)
	require.NotNil(t, row.DriverID)
	require.Equal(t, bob.ID, *row.DriverID)
	require.NotNil(t, row.TakingTime)

	// Wrong code leaves the state untouched and writes no ledger row.
	err = svc.DeliverCargo(bob, cargoID, "000000")
	require.True(t, errors.Is(err, apperrors.ErrInvalidCode))
	require.NoError(t, db.First(&row, cargoID).Error)
	require.Equal(t, cargoModel.SituationPickedUp, row.Situation)
	var sentCount int64
	require.NoError(t, db.Model(&shipment.ShipmentSent{}).Count(&sentCount).Error)
	require.Zero(t, sentCount)

	// Right code completes the handoff.
	require.NoError(t, svc.DeliverCargo(bob, cargoID, code))
	require.NoError(t, db.First(&row, cargoID).Error)
	require.Equal(t, cargoModel.SituationDelivered, row.Situation)
	require.Nil(t, row.VerificationCode)
	require.NotNil(t, row.DeliveredTime)

	var sent shipment.ShipmentSent
	require.NoError(t, db.Where("cargo_id = ?", cargoID).First(&sent).Error)
	require.Equal(t, alice.ID, sent.DistributorID)
	require.Equal(t, bob.ID, sent.DriverID)

	var events int64
	require.NoError(t, db.Model(&cargoModel.CargoEvent{}).Where("cargo_id = ?", cargoID).Count(&events).Error)
	require.EqualValues(t, 2, events)

	// The code was cleared on success, so a replay finds no deliverable cargo.
	err = svc.DeliverCargo(bob, cargoID, code)
	require.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestTakeCargoSecondPickupFails(t *testing.T) {
	setupEncryptionKey(t)
	db := testDB(t)
	svc := NewService(db, nil)

	alice := seedUser(t, db, "alice", user.RoleDistributor)
	bob := seedUser(t, db, "bob", user.RoleDriver)
	carol := seedUser(t, db, "carol", user.RoleDriver)

	list, err := svc.AddCargo(alice, cargoRequest())
	require.NoError(t, err)
	cargoID := list[0].ID

	_, err = svc.TakeCargo(bob, cargoID)
	require.NoError(t, err)

	_, err = svc.TakeCargo(carol, cargoID)
	require.True(t, errors.Is(err, apperrors.ErrInvalidState))

	// The original assignment survives the losing attempt.
	var row cargoModel.Cargo
	require.NoError(t, db.First(&row, cargoID).Error)
	require.Equal(t, bob.ID, *row.DriverID)
}

func TestTakeCargoMissing(t *testing.T) {
	setupEncryptionKey(t)
	db := testDB(t)
	svc := NewService(db, nil)
	bob := seedUser(t, db, "bob", user.RoleDriver)

	_, err := svc.TakeCargo(bob, 9999)
	require.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestOwnershipBoundary(t *testing.T) {
	setupEncryptionKey(t)
	db := testDB(t)
	svc := NewService(db, nil)

	alice := seedUser(t, db, "alice", user.RoleDistributor)
	mallory := seedUser(t, db, "mallory", user.RoleDistributor)

	list, err := svc.AddCargo(alice, cargoRequest())
	require.NoError(t, err)
	cargoID := list[0].ID

	// Another originator's cargo looks missing, never forbidden.
	_, err = svc.UpdateCargo(mallory, cargoID, cargoRequest())
	require.True(t, errors.Is(err, apperrors.ErrNotFound))
	err = svc.DeleteCargo(mallory, cargoID)
	require.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestUpdateBlockedAfterPickup(t *testing.T) {
	setupEncryptionKey(t)
	db := testDB(t)
	svc := NewService(db, nil)

	alice := seedUser(t, db, "alice", user.RoleDistributor)
	bob := seedUser(t, db, "bob", user.RoleDriver)

	list, err := svc.AddCargo(alice, cargoRequest())
	require.NoError(t, err)
	cargoID := list[0].ID

	_, err = svc.TakeCargo(bob, cargoID)
	require.NoError(t, err)

	_, err = svc.UpdateCargo(alice, cargoID, cargoRequest())
	require.True(t, errors.Is(err, apperrors.ErrInvalidState))
}

func TestDeleteCargoStates(t *testing.T) {
	setupEncryptionKey(t)
	db := testDB(t)
	svc := NewService(db, nil)

	alice := seedUser(t, db, "alice", user.RoleDistributor)
	bob := seedUser(t, db, "bob", user.RoleDriver)

	// Deletable while CREATED.
	list, err := svc.AddCargo(alice, cargoRequest())
	require.NoError(t, err)
	require.NoError(t, svc.DeleteCargo(alice, list[0].ID))

	// Deletable while PICKED_UP.
	list, err = svc.AddCargo(alice, cargoRequest())
	require.NoError(t, err)
	pickedID := list[len(list)-1].ID
	_, err = svc.TakeCargo(bob, pickedID)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteCargo(alice, pickedID))

	// Frozen once DELIVERED.
	list, err = svc.AddCargo(alice, cargoRequest())
	require.NoError(t, err)
	deliveredID := list[len(list)-1].ID
	_, err = svc.TakeCargo(bob, deliveredID)
	require.NoError(t, err)
	require.NoError(t, svc.DeliverCargo(bob, deliveredID, storedCode(t, db, deliveredID)))

	err = svc.DeleteCargo(alice, deliveredID)
	require.True(t, errors.Is(err, apperrors.ErrInvalidState))
}

func TestDeliverCargoRequiresAssignment(t *testing.T) {
	setupEncryptionKey(t)
	db := testDB(t)
	svc := NewService(db, nil)

	alice := seedUser(t, db, "alice", user.RoleDistributor)
	bob := seedUser(t, db, "bob", user.RoleDriver)
	carol := seedUser(t, db, "carol", user.RoleDriver)

	list, err := svc.AddCargo(alice, cargoRequest())
	require.NoError(t, err)
	cargoID := list[0].ID

	// Not picked up yet.
	err = svc.DeliverCargo(bob, cargoID, "123456")
	require.True(t, errors.Is(err, apperrors.ErrNotFound))

	_, err = svc.TakeCargo(bob, cargoID)
	require.NoError(t, err)

	// Assigned to bob, not carol.
	err = svc.DeliverCargo(carol, cargoID, storedCode(t, db, cargoID))
	require.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestPagination(t *testing.T) {
	setupEncryptionKey(t)
	db := testDB(t)
	svc := NewService(db, nil)

	alice := seedUser(t, db, "alice", user.RoleDistributor)
	bob := seedUser(t, db, "bob", user.RoleDriver)
	carol := seedUser(t, db, "carol", user.RoleDriver)

	for i := 0; i < 25; i++ {
		_, err := svc.AddCargo(alice, cargoRequest())
		require.NoError(t, err)
	}

	first, err := svc.AllCargoes(0, 10, "id")
	require.NoError(t, err)
	require.Len(t, first.Data, 10)
	require.EqualValues(t, 25, first.Meta.TotalItems)
	require.True(t, first.Meta.IsFirst)
	require.False(t, first.Meta.IsLast)

	last, err := svc.AllCargoes(2, 10, "id")
	require.NoError(t, err)
	require.Len(t, last.Data, 5)
	require.False(t, last.Meta.IsFirst)
	require.True(t, last.Meta.IsLast)

	// Unknown sort columns fall back instead of reaching the database.
	_, err = svc.AllCargoes(0, 10, "password; DROP TABLE users")
	require.NoError(t, err)

	// MyCargoes only shows the caller's assignments.
	_, err = svc.TakeCargo(bob, first.Data[0].ID)
	require.NoError(t, err)
	_, err = svc.TakeCargo(carol, first.Data[1].ID)
	require.NoError(t, err)

	mine, err := svc.MyCargoes(bob, 0, 10, "id")
	require.NoError(t, err)
	require.Len(t, mine.Data, 1)
	require.Equal(t, first.Data[0].ID, mine.Data[0].ID)
}

func TestDeliveredReport(t *testing.T) {
	setupEncryptionKey(t)
	db := testDB(t)
	svc := NewService(db, nil)

	alice := seedUser(t, db, "alice", user.RoleDistributor)
	bob := seedUser(t, db, "bob", user.RoleDriver)

	list, err := svc.AddCargo(alice, cargoRequest())
	require.NoError(t, err)
	cargoID := list[0].ID
	_, err = svc.TakeCargo(bob, cargoID)
	require.NoError(t, err)
	require.NoError(t, svc.DeliverCargo(bob, cargoID, storedCode(t, db, cargoID)))

	report, err := svc.DeliveredReport(bob, "day")
	require.NoError(t, err)
	require.Equal(t, "day", report.Period)
	require.EqualValues(t, 1, report.Count)
	require.Len(t, report.Shipments, 1)
	require.Equal(t, cargoID, report.Shipments[0].CargoID)

	weekly, err := svc.DeliveredReport(bob, "week")
	require.NoError(t, err)
	require.Equal(t, "week", weekly.Period)
	require.EqualValues(t, 1, weekly.Count)

	// Unknown periods collapse to the daily report.
	fallback, err := svc.DeliveredReport(bob, "fortnight")
	require.NoError(t, err)
	require.Equal(t, "day", fallback.Period)
}
