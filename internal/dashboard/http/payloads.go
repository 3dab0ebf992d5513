package dashboardhttp

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pharmadesk/pharmadesk/internal/catalog"
	"github.com/pharmadesk/pharmadesk/internal/store"
)

type medicinePayload struct {
	Name         string          `json:"name" validate:"required,max=200"`
	GenericName  string          `json:"generic_name" validate:"max=200"`
	Brand        string          `json:"brand" validate:"max=200"`
	Category     string          `json:"category" validate:"required,max=100"`
	DosageForm   string          `json:"dosage_form"`
	Strength     string          `json:"strength"`
	Packaging    string          `json:"packaging"`
	Barcode      string          `json:"barcode"`
	SupplierID   string          `json:"supplier_id"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Description  string          `json:"description"`
}

func (p medicinePayload) toMedicine() catalog.Medicine {
	return catalog.Medicine{
		Name:         p.Name,
		GenericName:  p.GenericName,
		Brand:        p.Brand,
		Category:     p.Category,
		DosageForm:   p.DosageForm,
		Strength:     p.Strength,
		Packaging:    p.Packaging,
		Barcode:      p.Barcode,
		SupplierID:   p.SupplierID,
		UnitCost:     p.UnitCost,
		SellingPrice: p.SellingPrice,
		Description:  p.Description,
	}
}

type batchPayload struct {
	Quantity *int    `json:"quantity" validate:"omitempty,gte=0"`
	Location *string `json:"location" validate:"omitempty,max=100"`
}

func (p batchPayload) toUpdate() store.BatchUpdate {
	return store.BatchUpdate{Quantity: p.Quantity, Location: p.Location}
}

type supplierPayload struct {
	Name     string  `json:"name" validate:"required,max=200"`
	Contact  string  `json:"contact"`
	Email    string  `json:"email" validate:"omitempty,email"`
	Phone    string  `json:"phone"`
	Address  string  `json:"address"`
	LeadTime int     `json:"lead_time" validate:"gte=0,lte=365"`
	Rating   float64 `json:"rating" validate:"gte=0,lte=5"`
	IsActive *bool   `json:"is_active"`
}

func (p supplierPayload) toSupplier() catalog.Supplier {
	active := true
	if p.IsActive != nil {
		active = *p.IsActive
	}
	return catalog.Supplier{
		Name:     p.Name,
		Contact:  p.Contact,
		Email:    p.Email,
		Phone:    p.Phone,
		Address:  p.Address,
		LeadTime: p.LeadTime,
		Rating:   p.Rating,
		IsActive: active,
	}
}

type orderItemPayload struct {
	MedicineID string          `json:"medicine_id" validate:"required"`
	Quantity   int             `json:"quantity" validate:"required,gt=0"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
}

type orderPayload struct {
	OrderNumber      string             `json:"order_number" validate:"required,max=50"`
	SupplierID       string             `json:"supplier_id" validate:"required"`
	ExpectedDelivery time.Time          `json:"expected_delivery" validate:"required"`
	Notes            string             `json:"notes"`
	Items            []orderItemPayload `json:"items" validate:"required,min=1,dive"`
}

func (p orderPayload) toOrder() catalog.PurchaseOrder {
	items := make([]catalog.PurchaseOrderItem, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, catalog.PurchaseOrderItem{
			MedicineID: it.MedicineID,
			Quantity:   it.Quantity,
			UnitCost:   it.UnitCost,
		})
	}
	return catalog.PurchaseOrder{
		OrderNumber:      p.OrderNumber,
		SupplierID:       p.SupplierID,
		ExpectedDelivery: p.ExpectedDelivery.UTC(),
		Notes:            p.Notes,
		Items:            items,
	}
}

type orderStatusPayload struct {
	Status string `json:"status" validate:"required,oneof=pending received partial delayed cancelled"`
}

type saleItemPayload struct {
	MedicineID         string          `json:"medicine_id" validate:"required"`
	BatchID            string          `json:"batch_id"`
	Quantity           int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	DosageInstructions string          `json:"dosage_instructions"`
}

type salePayload struct {
	SaleNumber     string            `json:"sale_number" validate:"required,max=50"`
	CustomerName   string            `json:"customer_name" validate:"max=200"`
	CustomerPhone  string            `json:"customer_phone"`
	PrescriptionID string            `json:"prescription_id"`
	Discount       decimal.Decimal   `json:"discount"`
	PaymentMethod  string            `json:"payment_method" validate:"required,oneof=cash card insurance"`
	Status         string            `json:"status" validate:"omitempty,oneof=completed pending"`
	Items          []saleItemPayload `json:"items" validate:"required,min=1,dive"`
}

func (p salePayload) toSale() catalog.Sale {
	items := make([]catalog.SaleItem, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, catalog.SaleItem{
			MedicineID:         it.MedicineID,
			BatchID:            it.BatchID,
			Quantity:           it.Quantity,
			UnitPrice:          it.UnitPrice,
			DosageInstructions: it.DosageInstructions,
		})
	}
	return catalog.Sale{
		SaleNumber:     p.SaleNumber,
		CustomerName:   p.CustomerName,
		CustomerPhone:  p.CustomerPhone,
		PrescriptionID: p.PrescriptionID,
		Discount:       p.Discount,
		PaymentMethod:  catalog.PaymentMethod(p.PaymentMethod),
		Status:         catalog.SaleStatus(p.Status),
		Items:          items,
	}
}

type saleStatusPayload struct {
	Status string `json:"status" validate:"required,oneof=completed cancelled"`
}
