package models

import (
	"time"

	"github.com/uptrace/bun"
)

// User represents an authenticated app user.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	Username     string    `bun:"username,unique,notnull" json:"username"`
	FullName     string    `bun:"full_name" json:"full_name"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"`
	Role         string    `bun:"role,notnull" json:"role"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// Session is an opaque login token row used by the auth middleware.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:s"`

	ID        string    `bun:"id,pk"`
	UserID    int64     `bun:"user_id,notnull"`
	User      User      `bun:"rel:belongs-to,join:user_id=id"`
	ExpiresAt time.Time `bun:"expires_at,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// Expired returns true when the session expiry time has passed.
func (s Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Location types.
const (
	LocationTypeStore     = "STORE"
	LocationTypeWarehouse = "WAREHOUSE"
)

// Location is a physical site (store or warehouse) that holds stock.
type Location struct {
	bun.BaseModel `bun:"table:locations,alias:l"`

	ID        int64      `bun:"id,pk,autoincrement" json:"id"`
	Name      string     `bun:"name,notnull" json:"name"`
	Code      string     `bun:"code,unique,notnull" json:"code"`
	Type      string     `bun:"type,notnull" json:"type"`
	CreatedAt time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt *time.Time `bun:"updated_at" json:"updated_at,omitempty"`
}

// Item is the stock-keeping unit master record.
type Item struct {
	bun.BaseModel `bun:"table:items,alias:i"`

	ID        int64      `bun:"id,pk,autoincrement" json:"id"`
	SKU       string     `bun:"sku,unique,notnull" json:"sku"`
	Name      string     `bun:"name,notnull" json:"name"`
	Category  string     `bun:"category" json:"category,omitempty"`
	UOM       string     `bun:"uom,notnull,default:'PCS'" json:"uom"`
	CostPrice float64    `bun:"cost_price,notnull,default:0" json:"cost_price"`
	SellPrice float64    `bun:"sell_price,notnull,default:0" json:"sell_price"`
	IsActive  bool       `bun:"is_active,notnull,default:true" json:"is_active"`
	CreatedAt time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt *time.Time `bun:"updated_at" json:"updated_at,omitempty"`
}

// ItemLocation holds the authoritative current quantity of an item at a
// location. External inventory processes mutate it; opname sessions only
// read it at snapshot time.
type ItemLocation struct {
	bun.BaseModel `bun:"table:item_locations,alias:il"`

	ID         int64   `bun:"id,pk,autoincrement" json:"id"`
	ItemID     int64   `bun:"item_id,notnull" json:"item_id"`
	LocationID int64   `bun:"location_id,notnull" json:"location_id"`
	SystemQty  float64 `bun:"system_qty,notnull,default:0" json:"system_qty"`
}

// RFID tag lifecycle statuses.
const (
	TagStatusActive  = "ACTIVE"
	TagStatusLost    = "LOST"
	TagStatusDamaged = "DAMAGED"
)

// RFIDTag maps a physical tag UID to exactly one item.
type RFIDTag struct {
	bun.BaseModel `bun:"table:rfid_tags,alias:rt"`

	ID         int64      `bun:"id,pk,autoincrement" json:"id"`
	TagUID     string     `bun:"tag_uid,unique,notnull" json:"tag_uid"`
	ItemID     int64      `bun:"item_id,notnull" json:"item_id"`
	LocationID *int64     `bun:"location_id" json:"location_id,omitempty"`
	Status     string     `bun:"status,notnull,default:'ACTIVE'" json:"status"`
	CreatedAt  time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt  *time.Time `bun:"updated_at" json:"updated_at,omitempty"`
}

// Opname session types and lifecycle states.
const (
	SessionTypeFull    = "FULL"
	SessionTypePartial = "PARTIAL"

	SessionStatusPlanned    = "PLANNED"
	SessionStatusInProgress = "IN_PROGRESS"
	SessionStatusReview     = "REVIEW"
	SessionStatusClosed     = "CLOSED"
)

// StockOpnameSession is one inventory-count event for one location.
type StockOpnameSession struct {
	bun.BaseModel `bun:"table:stock_opname_sessions,alias:sos"`

	ID               int64      `bun:"id,pk,autoincrement" json:"id"`
	Code             string     `bun:"code,unique,notnull" json:"code"`
	LocationID       int64      `bun:"location_id,notnull" json:"location_id"`
	Location         *Location  `bun:"rel:belongs-to,join:location_id=id" json:"location,omitempty"`
	SnapshotAt       *time.Time `bun:"snapshot_at" json:"snapshot_at,omitempty"`
	Type             string     `bun:"type,notnull" json:"type"`
	Status           string     `bun:"status,notnull,default:'PLANNED'" json:"status"`
	ScheduledStartAt *time.Time `bun:"scheduled_start_at" json:"scheduled_start_at,omitempty"`
	ScheduledEndAt   *time.Time `bun:"scheduled_end_at" json:"scheduled_end_at,omitempty"`
	StartedAt        *time.Time `bun:"started_at" json:"started_at,omitempty"`
	EndedAt          *time.Time `bun:"ended_at" json:"ended_at,omitempty"`
	TotalItems       int        `bun:"total_items,notnull,default:0" json:"total_items"`
	ItemsScanned     int        `bun:"items_scanned,notnull,default:0" json:"items_scanned"`
	ProgressPercent  float64    `bun:"progress_percent,notnull,default:0" json:"progress_percent"`
	Notes            string     `bun:"notes" json:"notes,omitempty"`
	CreatedBy        *int64     `bun:"created_by" json:"created_by,omitempty"`
	CreatedAt        time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt        *time.Time `bun:"updated_at" json:"updated_at,omitempty"`
}

// Per-item variance statuses within a session.
const (
	OpnameItemStatusOK    = "OK"
	OpnameItemStatusOver  = "OVER"
	OpnameItemStatusShort = "SHORT"
)

// StockOpnameItem is the per-item ledger row within a session.
//
// EffectiveQty always equals SystemQty + MovementQty, and VarianceQty
// always equals CountedQty - EffectiveQty after any update.
type StockOpnameItem struct {
	bun.BaseModel `bun:"table:stock_opname_items,alias:soi"`

	ID            int64   `bun:"id,pk,autoincrement" json:"id"`
	SessionID     int64   `bun:"session_id,notnull" json:"session_id"`
	ItemID        int64   `bun:"item_id,notnull" json:"item_id"`
	SystemQty     float64 `bun:"system_qty,notnull,default:0" json:"system_qty"`
	MovementQty   float64 `bun:"movement_qty,notnull,default:0" json:"movement_qty"`
	EffectiveQty  float64 `bun:"effective_qty,notnull,default:0" json:"effective_qty"`
	CountedQty    float64 `bun:"counted_qty,notnull,default:0" json:"counted_qty"`
	VarianceQty   float64 `bun:"variance_qty,notnull,default:0" json:"variance_qty"`
	VarianceValue float64 `bun:"variance_value,notnull,default:0" json:"variance_value"`
	Status        string  `bun:"status,notnull,default:'OK'" json:"status"`
}

// StockOpnameScan is an immutable audit record of one accepted tag read.
type StockOpnameScan struct {
	bun.BaseModel `bun:"table:stock_opname_scans,alias:ss"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	SessionID int64     `bun:"session_id,notnull" json:"session_id"`
	TagUID    string    `bun:"tag_uid,notnull" json:"tag_uid"`
	ItemID    *int64    `bun:"item_id" json:"item_id,omitempty"`
	Zone      string    `bun:"zone" json:"zone,omitempty"`
	BatchRef  string    `bun:"batch_ref" json:"batch_ref,omitempty"`
	ScannedAt time.Time `bun:"scanned_at,notnull" json:"scanned_at"`
	ScannedBy *int64    `bun:"scanned_by" json:"scanned_by,omitempty"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// Movement reasons.
const (
	MovementReasonSale        = "SALE"
	MovementReasonRestock     = "RESTOCK"
	MovementReasonTransferIn  = "TRANSFER_IN"
	MovementReasonTransferOut = "TRANSFER_OUT"
	MovementReasonReturn      = "RETURN"
	MovementReasonAdjustment  = "ADJUSTMENT"
	MovementReasonCancelled   = "CANCELLED"
	MovementReasonOther       = "OTHER"
)

// InventoryMovement is an append-only signed quantity-change event for an
// item at a location.
type InventoryMovement struct {
	bun.BaseModel `bun:"table:inventory_movements,alias:im"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	ItemID      int64     `bun:"item_id,notnull" json:"item_id"`
	LocationID  int64     `bun:"location_id,notnull" json:"location_id"`
	QtyChange   float64   `bun:"qty_change,notnull" json:"qty_change"`
	Reason      string    `bun:"reason,notnull" json:"reason"`
	ReferenceID string    `bun:"reference_id" json:"reference_id,omitempty"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// ValidMovementReason reports whether reason is one of the known enum values.
func ValidMovementReason(reason string) bool {
	switch reason {
	case MovementReasonSale, MovementReasonRestock, MovementReasonTransferIn,
		MovementReasonTransferOut, MovementReasonReturn, MovementReasonAdjustment,
		MovementReasonCancelled, MovementReasonOther:
		return true
	}
	return false
}

// AuditLog captures immutable change history for key operations.
type AuditLog struct {
	bun.BaseModel `bun:"table:audit_logs,alias:al"`

	ID         int64     `bun:"id,pk,autoincrement"`
	UserID     int64     `bun:"user_id,notnull"`
	Action     string    `bun:"action,notnull"`
	EntityType string    `bun:"entity_type,notnull"`
	EntityID   string    `bun:"entity_id,notnull"`
	BeforeJSON string    `bun:"before_json"`
	AfterJSON  string    `bun:"after_json"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
