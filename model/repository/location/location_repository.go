package location

import (
	"errors"

	"gorm.io/gorm"

	inventoryEntity "problemsolving.GO/model/entity/inventory"
)

// Outcome of saving one location record.
type Outcome int

const (
	Inserted Outcome = iota
	Updated
	Stale
)

type LocationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// Save stores rec unless the stored record has a strictly newer movement.
// A stored record without a movement time is always overwritten; an incoming record without one
// only replaces a stored record that also lacks it.
func (r *LocationRepository) Save(rec *inventoryEntity.Location) (Outcome, error) {
	existing, err := r.Get(rec.Company, rec.UnitLoadID)
	if err != nil {
		return Stale, err
	}
	if existing == nil {
		return Inserted, r.db.Create(rec).Error
	}
	if existing.LastMovement != nil {
		if rec.LastMovement == nil || rec.LastMovement.Before(*existing.LastMovement) {
			return Stale, nil
		}
	}
	return Updated, r.db.Model(&inventoryEntity.Location{}).
		Where("company = ? AND unit_load_id = ?", rec.Company, rec.UnitLoadID).
		Updates(map[string]interface{}{
			"warehouse":     rec.Warehouse,
			"aisle":         rec.Aisle,
			"col":           rec.Column,
			"level":         rec.Level,
			"slot":          rec.Slot,
			"compartment":   rec.Compartment,
			"position_code": rec.PositionCode,
			"last_movement": rec.LastMovement,
			"last_updated":  rec.LastUpdated,
		}).Error
}

// Get returns the location of a unit-load, or nil when unknown.
func (r *LocationRepository) Get(company, unitLoadID string) (*inventoryEntity.Location, error) {
	var loc inventoryEntity.Location
	err := r.db.Where("company = ? AND unit_load_id = ?", company, unitLoadID).First(&loc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// GetMany returns known locations keyed by unit-load id.
func (r *LocationRepository) GetMany(company string, unitLoadIDs []string) (map[string]inventoryEntity.Location, error) {
	out := make(map[string]inventoryEntity.Location, len(unitLoadIDs))
	if len(unitLoadIDs) == 0 {
		return out, nil
	}
	var rows []inventoryEntity.Location
	if err := r.db.Where("company = ? AND unit_load_id IN ?", company, unitLoadIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.UnitLoadID] = row
	}
	return out, nil
}
