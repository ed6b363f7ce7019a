package tracker

// Category classifies a task. Each category maps to exactly one project
// sub-progress figure.
type Category string

const (
	CategoryElectrical       Category = "Electrical"
	CategorySS               Category = "S/S"
	CategoryPlumbing         Category = "Plumbing"
	CategoryAC               Category = "AC"
	CategoryWallTiles        Category = "Wall Tiles"
	CategoryWallPartition    Category = "Wall Partition"
	CategoryFloorTiles       Category = "Floor Tiles"
	CategoryCeiling          Category = "Ceiling"
	CategoryFurniture        Category = "Furniture"
	CategoryFAFF             Category = "FAFF"
	CategoryFireSuppression  Category = "Fire Suppression"
	CategoryIT               Category = "IT"
	CategorySignage          Category = "Signage"
	CategoryExternalWork     Category = "External Work"
	CategoryFireSuppression2 Category = "Fire Suppression2"
	CategoryConstraction     Category = "Constraction"
	CategoryColdRoom         Category = "Cold Room"
	CategoryEquipment        Category = "Equipment"
)

// Categories is the fixed set of recognized task categories. Its length is
// the divisor when overall progress is averaged, so every category counts
// even when no task carries it.
var Categories = []Category{
	CategoryElectrical,
	CategorySS,
	CategoryPlumbing,
	CategoryAC,
	CategoryWallTiles,
	CategoryWallPartition,
	CategoryFloorTiles,
	CategoryCeiling,
	CategoryFurniture,
	CategoryFAFF,
	CategoryFireSuppression,
	CategoryIT,
	CategorySignage,
	CategoryExternalWork,
	CategoryFireSuppression2,
	CategoryConstraction,
	CategoryColdRoom,
	CategoryEquipment,
}

// Valid reports whether c is a recognized category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// PendingStatus is the workflow state of a pending-work item.
type PendingStatus string

const (
	PendingStatusPending    PendingStatus = "Pending"
	PendingStatusInProgress PendingStatus = "In Progress"
	PendingStatusResolved   PendingStatus = "Resolved"
)

func (s PendingStatus) Valid() bool {
	switch s {
	case PendingStatusPending, PendingStatusInProgress, PendingStatusResolved:
		return true
	}
	return false
}

// OrderStatus tracks whether a purchase order has been placed.
type OrderStatus string

const (
	OrderStatusOrdered    OrderStatus = "Ordered"
	OrderStatusNotOrdered OrderStatus = "Not Ordered"
)

func (s OrderStatus) Valid() bool {
	return s == OrderStatusOrdered || s == OrderStatusNotOrdered
}

// LPOStatus tracks the local purchase order paperwork.
type LPOStatus string

const (
	LPOStatusReceived LPOStatus = "LPO Received"
	LPOStatusPending  LPOStatus = "Pending"
	LPOStatusLPOPend  LPOStatus = "LPO Pending"
)

func (s LPOStatus) Valid() bool {
	switch s {
	case LPOStatusReceived, LPOStatusPending, LPOStatusLPOPend:
		return true
	}
	return false
}

// InvoiceStatus tracks how much of an order has been invoiced.
type InvoiceStatus string

const (
	InvoiceStatusNotSubmitted InvoiceStatus = "Not Submitted"
	InvoiceStatus25           InvoiceStatus = "25%"
	InvoiceStatus50           InvoiceStatus = "50%"
	InvoiceStatus100          InvoiceStatus = "100%"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusNotSubmitted, InvoiceStatus25, InvoiceStatus50, InvoiceStatus100:
		return true
	}
	return false
}

// DefaultCompanies and OrderItemCategories are reference lists for the
// ordering UI. Company names stay free text; these are only suggestions.
var DefaultCompanies = []string{
	"No Company Selected", "Al motqeen", "Oriantal", "Himalya", "Richline",
	"Kain", "Al jaz", "A3", "Blue Rhain", "Wize guys", "Eco Air", "Tripode", "Metre",
}

var OrderItemCategories = []string{
	"S/S", "Furniture", "Equipment", "Signage", "Fire Suppression", "Cold Room",
}

// Project is the root entity. SubProgress and OverallProgress are derived by
// the aggregator and never edited directly.
type Project struct {
	ID              int64                `json:"id"`
	Name            string               `json:"name"`
	Notes           string               `json:"notes"`
	SubProgress     map[Category]float64 `json:"sub_progress"`
	OverallProgress float64              `json:"overall_progress"`
}

// Task belongs to exactly one project. Weight is carried in the schema but
// not consumed by aggregation. PendingItems is a free-text summary,
// independent of the structured pending-work rows.
type Task struct {
	ID           int64    `json:"id"`
	ProjectID    int64    `json:"project_id"`
	Name         string   `json:"name"`
	Category     Category `json:"category"`
	Duration     float64  `json:"duration"`
	Weight       float64  `json:"weight"`
	Progress     float64  `json:"progress"`
	ParentTaskID *int64   `json:"parent_task_id,omitempty"`
	PendingItems string   `json:"pending_items"`
}

// PendingWork belongs to one task; ProjectID is carried redundantly and
// always matches the parent task's project.
type PendingWork struct {
	ID          int64         `json:"id"`
	TaskID      int64         `json:"task_id"`
	ProjectID   int64         `json:"project_id"`
	Description string        `json:"description"`
	Status      PendingStatus `json:"status"`
	DueDate     string        `json:"due_date"`
}

// Order belongs to one project. InvoiceCopyPath is an opaque reference;
// empty means no copy uploaded. Date fields are free text by design.
type Order struct {
	ID               int64         `json:"id"`
	ProjectID        int64         `json:"project_id"`
	Company          string        `json:"company"`
	ItemCategory     string        `json:"item_category"`
	OrderStatus      OrderStatus   `json:"order_status"`
	LPOStatus        LPOStatus     `json:"lpo_status"`
	InvoiceStatus    InvoiceStatus `json:"invoice_status"`
	InvoiceCopyPath  string        `json:"invoice_copy_path"`
	MissingItems     string        `json:"missing_items"`
	DeliveryDate     string        `json:"delivery_date"`
	InstallationDate string        `json:"installation_date"`
}

// Snapshot is the whole relational state, persisted as one unit.
type Snapshot struct {
	Projects    []Project
	Tasks       []Task
	PendingWork []PendingWork
	Orders      []Order
}

// NewProject returns a project with every sub-progress figure zeroed.
func NewProject(id int64, name, notes string) Project {
	sub := make(map[Category]float64, len(Categories))
	for _, cat := range Categories {
		sub[cat] = 0
	}
	return Project{ID: id, Name: name, Notes: notes, SubProgress: sub}
}
