package entity

import "time"

// Customer is resolved by exact name at order intake.
type Customer struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	Code      string    `json:"code" gorm:"size:32;uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"size:200;uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"size:200"`
	Phone     string    `json:"phone" gorm:"size:50"`
	Address   string    `json:"address" gorm:"size:500"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Customer) TableName() string {
	return "customers"
}

// Order is a customer job. Immutable after intake except due-date and
// invoice corrections done by administrative review.
type Order struct {
	ID            string     `json:"id" gorm:"primaryKey;size:32"`
	Code          string     `json:"code" gorm:"size:32;uniqueIndex;not null"`
	CustomerID    string     `json:"customer_id" gorm:"size:32;not null;index"`
	DueDate       *time.Time `json:"due_date"`
	InvoiceAmount *float64   `json:"invoice_amount" gorm:"type:decimal(15,2)"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Customer *Customer   `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Lines    []OrderLine `json:"lines,omitempty" gorm:"foreignKey:OrderID"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderLine is one part line within an order. Quantity may be corrected
// once, by the receiving operator at goods receipt.
type OrderLine struct {
	ID              string    `json:"id" gorm:"primaryKey;size:32"`
	OrderID         string    `json:"order_id" gorm:"size:32;not null;index"`
	PartName        string    `json:"part_name" gorm:"size:200;not null"`
	PartType        string    `json:"part_type" gorm:"size:100"`
	Quantity        float64   `json:"quantity" gorm:"type:decimal(10,2);not null"`
	QtyCorrected    bool      `json:"qty_corrected" gorm:"default:false"`
	PartNumber      string    `json:"part_number" gorm:"size:100"`
	Revision        string    `json:"revision" gorm:"size:50"`
	CoatingStandard string    `json:"coating_standard" gorm:"size:100"`
	DrawingRef      string    `json:"drawing_ref" gorm:"size:512;not null"`
	PhotoRef        string    `json:"photo_ref" gorm:"size:512"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Order *Order `json:"order,omitempty" gorm:"foreignKey:OrderID"`
}

func (OrderLine) TableName() string {
	return "order_lines"
}
