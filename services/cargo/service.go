// Package cargo implements the shipment lifecycle engine: creation, edits,
// pickup and delivery confirmation, plus the driver listings. Every operation
// takes the resolved caller explicitly so the engine stays testable without a
// request context.
package cargo

import (
	"errors"
	"fmt"
	"time"

	"github.com/jinzhu/now"
	"gorm.io/gorm"

	"cargo-delivery/apperrors"
	"cargo-delivery/logger"
	cargoModel "cargo-delivery/models/cargo"
	"cargo-delivery/models/shipment"
	"cargo-delivery/models/user"
	"cargo-delivery/services/cargoevent"
	"cargo-delivery/services/verification"
	cargoTypes "cargo-delivery/types/cargo"
	driverTypes "cargo-delivery/types/driver"
	"cargo-delivery/utils"
)

const (
	eventTaken     = "taken"
	eventDelivered = "delivered"
)

// CodeMailer notifies the distributor of the delivery code issued at pickup.
// Dispatch is fire-and-forget.
type CodeMailer interface {
	SendDeliveryCode(to, username, code string, cargoID uint) error
}

// Service owns the cargo state machine.
type Service struct {
	db   *gorm.DB
	mail CodeMailer
}

func NewService(db *gorm.DB, mail CodeMailer) *Service {
	return &Service{db: db, mail: mail}
}

// AddCargo creates a CREATED cargo owned by the caller, destination unset,
// and returns the caller's full cargo list.
func (s *Service) AddCargo(caller *user.User, req *cargoTypes.CargoRequest) ([]cargoTypes.CargoResponse, error) {
	cg := cargoModel.Cargo{
		DistributorID: caller.ID,
		Situation:     cargoModel.SituationCreated,
		Description:   req.Description,
		Phone:         req.PhoneNumber,
		SelfLatitude:  req.SelfLocation.Latitude,
		SelfLongitude: req.SelfLocation.Longitude,
		Weight:        req.Measure.Weight,
		Height:        req.Measure.Height,
	}
	if err := s.db.Create(&cg).Error; err != nil {
		return nil, fmt.Errorf("failed to create cargo: %w", err)
	}
	logger.Success(fmt.Sprintf("Cargo created with ID: %d", cg.ID))

	var all []cargoModel.Cargo
	if err := s.db.Where("distributor_id = ?", caller.ID).Order("id").Find(&all).Error; err != nil {
		return nil, fmt.Errorf("failed to list cargoes: %w", err)
	}
	responses := make([]cargoTypes.CargoResponse, 0, len(all))
	for i := range all {
		responses = append(responses, cargoTypes.NewCargoResponse(&all[i]))
	}
	return responses, nil
}

// UpdateCargo overwrites the mutable fields while the cargo is still CREATED.
// Cargoes owned by someone else are reported as missing, never as forbidden.
func (s *Service) UpdateCargo(caller *user.User, cargoID uint, req *cargoTypes.CargoRequest) (*cargoTypes.CargoResponse, error) {
	cg, err := s.findOwned(caller.ID, cargoID)
	if err != nil {
		return nil, err
	}
	if !cg.Situation.CanBeEdited() {
		return nil, apperrors.ErrInvalidState
	}

	cg.Description = req.Description
	cg.Phone = req.PhoneNumber
	cg.SelfLatitude = req.SelfLocation.Latitude
	cg.SelfLongitude = req.SelfLocation.Longitude
	cg.Weight = req.Measure.Weight
	cg.Height = req.Measure.Height
	if req.TargetLocation != nil {
		cg.TargetLatitude = &req.TargetLocation.Latitude
		cg.TargetLongitude = &req.TargetLocation.Longitude
	} else {
		cg.TargetLatitude = nil
		cg.TargetLongitude = nil
	}
	if err := s.db.Save(cg).Error; err != nil {
		return nil, fmt.Errorf("failed to update cargo: %w", err)
	}
	resp := cargoTypes.NewCargoResponse(cg)
	return &resp, nil
}

// DeleteCargo removes a cargo owned by the caller. Delivered cargoes are
// frozen for audit and cannot be deleted.
func (s *Service) DeleteCargo(caller *user.User, cargoID uint) error {
	cg, err := s.findOwned(caller.ID, cargoID)
	if err != nil {
		return err
	}
	if !cg.Situation.CanBeDeleted() {
		return apperrors.ErrInvalidState
	}
	if err := s.db.Delete(cg).Error; err != nil {
		return fmt.Errorf("failed to delete cargo: %w", err)
	}
	return nil
}

// TakeCargo assigns the calling driver and moves the cargo to PICKED_UP with
// a fresh delivery code. The transition is a compare-and-swap on the CREATED
// situation, so a concurrent second pickup fails with ErrInvalidState instead
// of clobbering the first driver.
func (s *Service) TakeCargo(caller *user.User, cargoID uint) (*cargoTypes.CargoResponse, error) {
	var cg cargoModel.Cargo
	if err := s.db.First(&cg, cargoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load cargo: %w", err)
	}

	code, err := verification.Generate()
	if err != nil {
		return nil, err
	}
	encrypted, err := utils.EncryptData(code)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt delivery code: %w", err)
	}

	res := s.db.Model(&cargoModel.Cargo{}).
		Where("id = ? AND cargo_situation = ?", cargoID, cargoModel.SituationCreated).
		Updates(map[string]interface{}{
			"driver_id":         caller.ID,
			"cargo_situation":   cargoModel.SituationPickedUp,
			"verification_code": encrypted,
			"taking_time":       time.Now(),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to take cargo: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Lost the race or the cargo already moved on.
		return nil, apperrors.ErrInvalidState
	}

	if err := s.db.Preload("Distributor").First(&cg, cargoID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload cargo: %w", err)
	}
	if err := cargoevent.Snapshot(s.db, &cg, eventTaken, caller.ID); err != nil {
		logger.Error("Failed to write cargo event (taken)", err)
	}

	if s.mail != nil {
		dist := cg.Distributor
		go func() {
			if err := s.mail.SendDeliveryCode(dist.Mail, dist.Username, code, cg.ID); err != nil {
				logger.Error("Failed to send delivery code mail", err)
			}
		}()
	}

	logger.Success(fmt.Sprintf("Cargo %d picked up by driver %d", cg.ID, caller.ID))
	resp := cargoTypes.NewCargoResponse(&cg)
	return &resp, nil
}

// DeliverCargo confirms delivery with the one-time code, moves the cargo to
// DELIVERED and appends the shipment audit row. A cargo that is not assigned
// to the caller in PICKED_UP is reported as missing, so a second confirmation
// after success fails with ErrNotFound.
func (s *Service) DeliverCargo(caller *user.User, cargoID uint, code string) error {
	var cg cargoModel.Cargo
	err := s.db.
		Where("id = ? AND driver_id = ? AND cargo_situation = ?", cargoID, caller.ID, cargoModel.SituationPickedUp).
		First(&cg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to load cargo: %w", err)
	}

	if cg.VerificationCode == nil {
		return apperrors.ErrInvalidCode
	}
	stored, err := utils.DecryptData(*cg.VerificationCode)
	if err != nil {
		return fmt.Errorf("failed to decrypt delivery code: %w", err)
	}
	if stored != code {
		return apperrors.ErrInvalidCode
	}

	deliveredAt := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&cargoModel.Cargo{}).
			Where("id = ? AND driver_id = ? AND cargo_situation = ?", cargoID, caller.ID, cargoModel.SituationPickedUp).
			Updates(map[string]interface{}{
				"cargo_situation":   cargoModel.SituationDelivered,
				"verification_code": nil,
				"delivered_time":    deliveredAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrInvalidState
		}

		sent := shipment.ShipmentSent{
			DistributorID: cg.DistributorID,
			DriverID:      caller.ID,
			CargoID:       cg.ID,
			Date:          deliveredAt,
		}
		if err := tx.Create(&sent).Error; err != nil {
			return err
		}

		cg.Situation = cargoModel.SituationDelivered
		cg.DeliveredTime = &deliveredAt
		return cargoevent.Snapshot(tx, &cg, eventDelivered, caller.ID)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidState) {
			return err
		}
		return fmt.Errorf("failed to deliver cargo: %w", err)
	}

	logger.Success(fmt.Sprintf("Cargo %d delivered by driver %d", cargoID, caller.ID))
	return nil
}

// MyCargoes returns one page of the cargoes assigned to the calling driver.
func (s *Service) MyCargoes(caller *user.User, page, size int, sortBy string) (*cargoTypes.PagedCargoes, error) {
	return s.pageCargoes("driver_id = ?", []interface{}{caller.ID}, page, size, sortBy)
}

// AllCargoes returns one page over every cargo, for drivers browsing open
// work.
func (s *Service) AllCargoes(page, size int, sortBy string) (*cargoTypes.PagedCargoes, error) {
	return s.pageCargoes("", nil, page, size, sortBy)
}

// DeliveredReport summarises the caller's completed shipments since the
// beginning of the current day or week.
func (s *Service) DeliveredReport(caller *user.User, period string) (*driverTypes.DeliveredReport, error) {
	var since time.Time
	switch period {
	case "week":
		since = now.BeginningOfWeek()
	default:
		period = "day"
		since = now.BeginningOfDay()
	}

	var sent []shipment.ShipmentSent
	err := s.db.Preload("Cargo").Preload("Distributor").
		Where("driver_id = ? AND date >= ?", caller.ID, since).
		Order("date DESC").
		Find(&sent).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load shipment report: %w", err)
	}
	return &driverTypes.DeliveredReport{
		Period:    period,
		Since:     since,
		Count:     int64(len(sent)),
		Shipments: sent,
	}, nil
}

func (s *Service) pageCargoes(where string, args []interface{}, page, size int, sortBy string) (*cargoTypes.PagedCargoes, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 || size > 100 {
		size = 10
	}
	switch sortBy {
	case "id", "created_at", "cargo_situation":
	default:
		sortBy = "id"
	}

	countQuery := s.db.Model(&cargoModel.Cargo{})
	listQuery := s.db.Model(&cargoModel.Cargo{})
	if where != "" {
		countQuery = countQuery.Where(where, args...)
		listQuery = listQuery.Where(where, args...)
	}

	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count cargoes: %w", err)
	}

	var rows []cargoModel.Cargo
	err := listQuery.
		Preload("Distributor").
		Order(sortBy).
		Offset(page * size).
		Limit(size).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cargoes: %w", err)
	}

	items := make([]cargoTypes.CargoListItem, 0, len(rows))
	for i := range rows {
		items = append(items, cargoTypes.NewCargoListItem(&rows[i]))
	}
	lastPage := int((total + int64(size) - 1) / int64(size))
	return &cargoTypes.PagedCargoes{
		Data: items,
		Meta: cargoTypes.PageMeta{
			CurrentPage: page,
			TotalItems:  total,
			PageSize:    size,
			IsFirst:     page == 0,
			IsLast:      page >= lastPage-1,
		},
	}, nil
}

func (s *Service) findOwned(ownerID, cargoID uint) (*cargoModel.Cargo, error) {
	var cg cargoModel.Cargo
	err := s.db.Where("id = ? AND distributor_id = ?", cargoID, ownerID).First(&cg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load cargo: %w", err)
	}
	return &cg, nil
}
