package catalog

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus enumerates purchase order lifecycle values.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderReceived  OrderStatus = "received"
	OrderPartial   OrderStatus = "partial"
	OrderDelayed   OrderStatus = "delayed"
	OrderCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every order status.
var OrderStatuses = []OrderStatus{OrderPending, OrderReceived, OrderPartial, OrderDelayed, OrderCancelled}

// SaleStatus enumerates sale lifecycle values.
type SaleStatus string

const (
	SaleCompleted SaleStatus = "completed"
	SalePending   SaleStatus = "pending"
	SaleCancelled SaleStatus = "cancelled"
)

// SaleStatuses lists every sale status.
var SaleStatuses = []SaleStatus{SaleCompleted, SalePending, SaleCancelled}

// PaymentMethod enumerates accepted tenders.
type PaymentMethod string

const (
	PaymentCash      PaymentMethod = "cash"
	PaymentCard      PaymentMethod = "card"
	PaymentInsurance PaymentMethod = "insurance"
)

// AlertType enumerates stock alert kinds.
type AlertType string

const (
	AlertLowStock      AlertType = "low_stock"
	AlertExpiryWarning AlertType = "expiry_warning"
	AlertExpired       AlertType = "expired"
	AlertOutOfStock    AlertType = "out_of_stock"
)

// ActivityType enumerates activity log entry kinds.
type ActivityType string

const (
	ActivitySale        ActivityType = "sale"
	ActivityPurchase    ActivityType = "purchase"
	ActivityStockUpdate ActivityType = "stock_update"
	ActivityAlert       ActivityType = "alert"
)

// ActivityTypes lists every activity kind.
var ActivityTypes = []ActivityType{ActivitySale, ActivityPurchase, ActivityStockUpdate, ActivityAlert}

// Medicine is a catalog entry. Profit margin is derived, never stored.
type Medicine struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	GenericName  string          `json:"generic_name"`
	Brand        string          `json:"brand"`
	Category     string          `json:"category"`
	DosageForm   string          `json:"dosage_form"`
	Strength     string          `json:"strength"`
	Packaging    string          `json:"packaging"`
	Barcode      string          `json:"barcode"`
	SupplierID   string          `json:"supplier_id"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Description  string          `json:"description,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Batch is a received lot of a medicine.
type Batch struct {
	ID              string          `json:"id"`
	MedicineID      string          `json:"medicine_id"`
	BatchNumber     string          `json:"batch_number"`
	ManufactureDate time.Time       `json:"manufacture_date"`
	ExpiryDate      time.Time       `json:"expiry_date"`
	Quantity        int             `json:"quantity"`
	InitialQuantity int             `json:"initial_quantity"`
	Location        string          `json:"location"`
	SupplierID      string          `json:"supplier_id"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Supplier describes a vendor. LeadTime is measured in whole days.
type Supplier struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	LeadTime  int       `json:"lead_time"`
	Rating    float64   `json:"rating"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// PurchaseOrderItem is a single ordered line.
type PurchaseOrderItem struct {
	ID               string          `json:"id"`
	MedicineID       string          `json:"medicine_id"`
	Quantity         int             `json:"quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	ReceivedQuantity int             `json:"received_quantity"`
	TotalCost        decimal.Decimal `json:"total_cost"`
}

// PurchaseOrder is an order placed with a supplier.
type PurchaseOrder struct {
	ID               string              `json:"id"`
	OrderNumber      string              `json:"order_number"`
	SupplierID       string              `json:"supplier_id"`
	Status           OrderStatus         `json:"status"`
	OrderDate        time.Time           `json:"order_date"`
	ExpectedDelivery time.Time           `json:"expected_delivery"`
	ActualDelivery   *time.Time          `json:"actual_delivery,omitempty"`
	TotalAmount      decimal.Decimal     `json:"total_amount"`
	Items            []PurchaseOrderItem `json:"items"`
	Notes            string              `json:"notes,omitempty"`
}

// SaleItem is a dispensed line of a sale.
type SaleItem struct {
	ID                 string          `json:"id"`
	MedicineID         string          `json:"medicine_id"`
	BatchID            string          `json:"batch_id"`
	Quantity           int             `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	TotalPrice         decimal.Decimal `json:"total_price"`
	DosageInstructions string          `json:"dosage_instructions,omitempty"`
}

// Sale records a counter transaction. FinalAmount = TotalAmount - Discount.
type Sale struct {
	ID             string          `json:"id"`
	SaleNumber     string          `json:"sale_number"`
	CustomerName   string          `json:"customer_name,omitempty"`
	CustomerPhone  string          `json:"customer_phone,omitempty"`
	PrescriptionID string          `json:"prescription_id,omitempty"`
	SaleDate       time.Time       `json:"sale_date"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Discount       decimal.Decimal `json:"discount"`
	FinalAmount    decimal.Decimal `json:"final_amount"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	Items          []SaleItem      `json:"items"`
	Status         SaleStatus      `json:"status"`
}

// StockAlert flags a medicine or batch that needs attention.
type StockAlert struct {
	ID         string    `json:"id"`
	Type       AlertType `json:"type"`
	MedicineID string    `json:"medicine_id"`
	BatchID    string    `json:"batch_id,omitempty"`
	Message    string    `json:"message"`
	Severity   Severity  `json:"severity"`
	CreatedAt  time.Time `json:"created_at"`
	IsRead     bool      `json:"is_read"`
}

// ActivityItem is an append-only log entry.
type ActivityItem struct {
	ID          string       `json:"id"`
	Type        ActivityType `json:"type"`
	Description string       `json:"description"`
	Timestamp   time.Time    `json:"timestamp"`
	UserID      string       `json:"user_id"`
}

var (
	// ErrInvalidTransition indicates a status change that the lifecycle forbids.
	ErrInvalidTransition = errors.New("catalog: invalid status transition")
	// ErrInvalidRecord wraps record level validation failures.
	ErrInvalidRecord = errors.New("catalog: invalid record")
)
