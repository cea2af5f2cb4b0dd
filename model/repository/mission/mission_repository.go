package mission

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"problemsolving.GO/core/apperr"
	missionEntity "problemsolving.GO/model/entity/mission"
)

type MissionRepository struct {
	db *gorm.DB
}

func NewMissionRepository(db *gorm.DB) *MissionRepository {
	return &MissionRepository{db: db}
}

// CheckCounts groups a mission's position checks by status.
type CheckCounts struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Found    int64 `json:"found"`
	NotFound int64 `json:"not_found"`
	Skipped  int64 `json:"skipped"`
}

// Completed is the number of checks in a terminal state.
func (c CheckCounts) Completed() int64 {
	return c.Found + c.NotFound + c.Skipped
}

// ItemCounts holds total and resolved item counts of a mission.
type ItemCounts struct {
	Total    int64 `json:"total"`
	Resolved int64 `json:"resolved"`
}

// FindActive returns the OPEN or IN_PROGRESS mission for (company, basket, reference pick-list), or nil.
func (r *MissionRepository) FindActive(company, basket string, ref *int64) (*missionEntity.Mission, error) {
	q := r.db.Where("company = ? AND basket_code = ? AND status IN ?", company, basket,
		[]string{missionEntity.StatusOpen, missionEntity.StatusInProgress})
	if ref == nil {
		q = q.Where("reference_pick_list_id IS NULL")
	} else {
		q = q.Where("reference_pick_list_id = ?", *ref)
	}
	var m missionEntity.Mission
	err := q.Order("id").First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// codesQuery selects the company's mission codes starting with prefix. The read locks the matching
// rows (FOR UPDATE), so inside a REPEATABLE READ transaction it sees the latest committed codes
// instead of the transaction snapshot. sqlite drops the locking clause.
func (r *MissionRepository) codesQuery(company, prefix string) *gorm.DB {
	return r.db.Model(&missionEntity.Mission{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("company = ? AND mission_code LIKE ?", company, prefix+"%")
}

// MaxCodeSuffix returns the highest numeric suffix among the company's mission codes starting with prefix.
func (r *MissionRepository) MaxCodeSuffix(company, prefix string) (int, error) {
	var codes []string
	err := r.codesQuery(company, prefix).Pluck("mission_code", &codes).Error
	if err != nil {
		return 0, err
	}
	max := 0
	for _, code := range codes {
		n, err := strconv.Atoi(strings.TrimPrefix(code, prefix))
		if err == nil && n > max {
			max = n
		}
	}
	return max, nil
}

func (r *MissionRepository) Create(m *missionEntity.Mission) error {
	return r.db.Omit("Items").Create(m).Error
}

func (r *MissionRepository) CreateItems(items []missionEntity.Item) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.Create(&items).Error
}

// CreateChecks inserts checks in slice order; the resulting ids carry the route tie-break.
func (r *MissionRepository) CreateChecks(checks []missionEntity.Check) error {
	if len(checks) == 0 {
		return nil
	}
	return r.db.CreateInBatches(&checks, 200).Error
}

// FindByID returns the company's mission or an apperr not-found error.
func (r *MissionRepository) FindByID(company string, id uint64) (*missionEntity.Mission, error) {
	var m missionEntity.Mission
	err := r.db.Where("company = ? AND id = ?", company, id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("mission", id)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MissionRepository) FindItem(company string, id uint64) (*missionEntity.Item, error) {
	var it missionEntity.Item
	err := r.db.Where("company = ? AND id = ?", company, id).First(&it).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("mission item", id)
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *MissionRepository) FindCheck(company string, id uint64) (*missionEntity.Check, error) {
	var c missionEntity.Check
	err := r.db.Where("company = ? AND id = ?", company, id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("position check", id)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Items returns a mission's items in creation order.
func (r *MissionRepository) Items(company string, missionID uint64) ([]missionEntity.Item, error) {
	var items []missionEntity.Item
	err := r.db.Where("company = ? AND mission_id = ?", company, missionID).Order("id").Find(&items).Error
	return items, err
}

// Checks returns a mission's checks in route order. Checks are inserted sorted by position code, so
// id order is the byte-wise position order whatever the database collation.
func (r *MissionRepository) Checks(company string, missionID uint64) ([]missionEntity.Check, error) {
	var checks []missionEntity.Check
	err := r.db.Where("company = ? AND mission_id = ?", company, missionID).
		Order("id").Find(&checks).Error
	return checks, err
}

// NextCheck returns the first TO_CHECK check in route order, or nil when the route is exhausted.
func (r *MissionRepository) NextCheck(company string, missionID uint64) (*missionEntity.Check, error) {
	var c missionEntity.Check
	err := r.db.Where("company = ? AND mission_id = ? AND status = ?", company, missionID, missionEntity.CheckToCheck).
		Order("id").First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// TransitionCheck applies updates only while the check is still TO_CHECK.
// It reports false when another writer got there first.
func (r *MissionRepository) TransitionCheck(company string, id uint64, updates map[string]interface{}) (bool, error) {
	res := r.db.Model(&missionEntity.Check{}).
		Where("company = ? AND id = ? AND status = ?", company, id, missionEntity.CheckToCheck).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// AddFound adds qty to the item's cumulative found quantity.
func (r *MissionRepository) AddFound(company string, itemID uint64, qty decimal.Decimal) error {
	return r.db.Model(&missionEntity.Item{}).
		Where("company = ? AND id = ?", company, itemID).
		Update("qty_found", gorm.Expr("qty_found + ?", qty)).Error
}

// Resolve marks an unresolved item resolved. Already resolved items keep their first resolved_at.
func (r *MissionRepository) Resolve(company string, itemID uint64, at time.Time) (bool, error) {
	res := r.db.Model(&missionEntity.Item{}).
		Where("company = ? AND id = ? AND is_resolved = ?", company, itemID, false).
		Updates(map[string]interface{}{"is_resolved": true, "resolved_at": at})
	return res.RowsAffected == 1, res.Error
}

// SkipRemaining moves the item's TO_CHECK checks, except the one given, to SKIPPED_AUTO.
func (r *MissionRepository) SkipRemaining(company string, itemID, exceptCheckID uint64, note string, at time.Time) (int64, error) {
	res := r.db.Model(&missionEntity.Check{}).
		Where("company = ? AND mission_item_id = ? AND id <> ? AND status = ?", company, itemID, exceptCheckID, missionEntity.CheckToCheck).
		Updates(map[string]interface{}{
			"status":     missionEntity.CheckSkippedAuto,
			"checked_at": at,
			"notes":      note,
		})
	return res.RowsAffected, res.Error
}

type statusCount struct {
	MissionID uint64
	Status    string
	N         int64
}

// CheckCounts counts the mission's checks by status.
func (r *MissionRepository) CheckCounts(company string, missionID uint64) (CheckCounts, error) {
	all, err := r.CheckCountsFor(company, []uint64{missionID})
	if err != nil {
		return CheckCounts{}, err
	}
	return all[missionID], nil
}

// CheckCountsFor counts checks by status for several missions in one query.
func (r *MissionRepository) CheckCountsFor(company string, missionIDs []uint64) (map[uint64]CheckCounts, error) {
	out := make(map[uint64]CheckCounts, len(missionIDs))
	if len(missionIDs) == 0 {
		return out, nil
	}
	var rows []statusCount
	err := r.db.Model(&missionEntity.Check{}).
		Select("mission_id, status, COUNT(*) AS n").
		Where("company = ? AND mission_id IN ?", company, missionIDs).
		Group("mission_id, status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		c := out[row.MissionID]
		c.Total += row.N
		switch row.Status {
		case missionEntity.CheckToCheck:
			c.Pending += row.N
		case missionEntity.CheckFound:
			c.Found += row.N
		case missionEntity.CheckNotFound:
			c.NotFound += row.N
		case missionEntity.CheckSkippedAuto:
			c.Skipped += row.N
		}
		out[row.MissionID] = c
	}
	return out, nil
}

type resolvedCount struct {
	MissionID uint64
	Total     int64
	Resolved  int64
}

// ItemCounts counts the mission's total and resolved items.
func (r *MissionRepository) ItemCounts(company string, missionID uint64) (ItemCounts, error) {
	all, err := r.ItemCountsFor(company, []uint64{missionID})
	if err != nil {
		return ItemCounts{}, err
	}
	return all[missionID], nil
}

func (r *MissionRepository) ItemCountsFor(company string, missionIDs []uint64) (map[uint64]ItemCounts, error) {
	out := make(map[uint64]ItemCounts, len(missionIDs))
	if len(missionIDs) == 0 {
		return out, nil
	}
	var rows []resolvedCount
	err := r.db.Model(&missionEntity.Item{}).
		Select("mission_id, COUNT(*) AS total, SUM(CASE WHEN is_resolved THEN 1 ELSE 0 END) AS resolved").
		Where("company = ? AND mission_id IN ?", company, missionIDs).
		Group("mission_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.MissionID] = ItemCounts{Total: row.Total, Resolved: row.Resolved}
	}
	return out, nil
}

// Update writes the given columns of a mission.
func (r *MissionRepository) Update(company string, id uint64, updates map[string]interface{}) error {
	return r.db.Model(&missionEntity.Mission{}).
		Where("company = ? AND id = ?", company, id).
		Updates(updates).Error
}

// Synthetic list filters, derived rather than stored.

const (
	FilterPending     = "PENDING"
	FilterHasNotFound = "HAS_NOT_FOUND"
)

// List returns the company's missions, newest first. filter is empty, a stored status,
// PENDING (OPEN or IN_PROGRESS) or HAS_NOT_FOUND (at least one NOT_FOUND check).
func (r *MissionRepository) List(company, filter string, limit int) ([]missionEntity.Mission, error) {
	q := r.db.Where("company = ?", company)
	switch filter {
	case "":
	case FilterPending:
		q = q.Where("status IN ?", []string{missionEntity.StatusOpen, missionEntity.StatusInProgress})
	case FilterHasNotFound:
		q = q.Where("EXISTS (SELECT 1 FROM position_checks pc WHERE pc.mission_id = missions.id AND pc.company = missions.company AND pc.status = ?)",
			missionEntity.CheckNotFound)
	default:
		q = q.Where("status = ?", filter)
	}
	var out []missionEntity.Mission
	err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&out).Error
	return out, err
}
