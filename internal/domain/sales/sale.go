package sales

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wimotos/backend/internal/domain/shared"
	"github.com/wimotos/backend/internal/domain/shared/valueobject"
)

// SaleStatus is the lifecycle state of a sale
type SaleStatus string

const (
	SaleStatusDraft     SaleStatus = "DRAFT"
	SaleStatusConfirmed SaleStatus = "CONFIRMED"
	SaleStatusCanceled  SaleStatus = "CANCELED"
)

// String implements fmt.Stringer
func (s SaleStatus) String() string {
	return string(s)
}

// IsValid reports whether s is a known sale status
func (s SaleStatus) IsValid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// allowedTransitions is the sale state machine.
// FLAG: CONFIRMED -> CANCELED is intentionally absent. A confirmed sale is immutable
// until the business confirms whether confirmed sales may be canceled.
var allowedTransitions = map[SaleStatus][]SaleStatus{
	SaleStatusDraft:     {SaleStatusConfirmed, SaleStatusCanceled},
	SaleStatusConfirmed: {},
	SaleStatusCanceled:  {},
}

// CanTransitionTo reports whether the state machine allows from -> to
func (s SaleStatus) CanTransitionTo(to SaleStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ParseSaleStatus validates a raw status value
func ParseSaleStatus(raw string) (SaleStatus, error) {
	s := SaleStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", shared.InvalidParameterError("INVALID_SALE_STATUS", "status must be DRAFT, CONFIRMED or CANCELED")
	}
	return s, nil
}

// PaymentType is how the customer pays for the sale
type PaymentType string

const (
	PaymentCash       PaymentType = "CASH"
	PaymentPix        PaymentType = "PIX"
	PaymentCard       PaymentType = "CARD"
	PaymentPromissory PaymentType = "PROMISSORY"
)

// IsValid reports whether p is a known payment type
func (p PaymentType) IsValid() bool {
	switch p {
	case PaymentCash, PaymentPix, PaymentCard, PaymentPromissory:
		return true
	}
	return false
}

// ParsePaymentType validates a raw payment type
func ParsePaymentType(raw string) (PaymentType, error) {
	p := PaymentType(strings.ToUpper(strings.TrimSpace(raw)))
	if !p.IsValid() {
		return "", shared.InvalidParameterError("INVALID_PAYMENT_TYPE", "payment_type must be CASH, PIX, CARD or PROMISSORY")
	}
	return p, nil
}

// Sale is the sale of one product to one client, registered by one staff user
type Sale struct {
	shared.BaseEntity
	PublicID    string
	ClientID    uuid.UUID
	UserID      uuid.UUID
	ProductID   uuid.UUID
	Total       decimal.Decimal
	Discount    decimal.Decimal
	EntryAmount *decimal.Decimal
	PaymentType PaymentType
	Status      SaleStatus
}

// Amounts are the money inputs of a sale before rounding
type Amounts struct {
	Total       decimal.Decimal
	Discount    decimal.Decimal
	EntryAmount *decimal.Decimal
}

// Rounded returns the amounts rounded to cents
func (a Amounts) Rounded() Amounts {
	return Amounts{
		Total:       valueobject.RoundMoney(a.Total),
		Discount:    valueobject.RoundMoney(a.Discount),
		EntryAmount: valueobject.RoundMoneyPtr(a.EntryAmount),
	}
}

// Validate checks total > 0, discount >= 0 and entry >= 0 when present
func (a Amounts) Validate() error {
	if !a.Total.IsPositive() {
		return shared.InvalidParameterError("INVALID_TOTAL", "total must be greater than zero")
	}
	if a.Discount.IsNegative() {
		return shared.InvalidParameterError("NEGATIVE_DISCOUNT", "discount cannot be negative")
	}
	if a.EntryAmount != nil && a.EntryAmount.IsNegative() {
		return shared.InvalidParameterError("NEGATIVE_ENTRY", "entry_amount cannot be negative")
	}
	return nil
}

// Entry returns the entry amount, zero when absent
func (a Amounts) Entry() decimal.Decimal {
	if a.EntryAmount == nil {
		return decimal.Zero
	}
	return *a.EntryAmount
}

// NewSale creates a DRAFT sale. Amounts are rounded and validated here.
func NewSale(publicID string, clientID, userID, productID uuid.UUID, amounts Amounts,
	paymentType PaymentType, now time.Time) (*Sale, error) {
	if !paymentType.IsValid() {
		return nil, shared.InvalidParameterError("INVALID_PAYMENT_TYPE", "payment_type must be CASH, PIX, CARD or PROMISSORY")
	}
	a := amounts.Rounded()
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &Sale{
		BaseEntity:  shared.NewBaseEntity(now),
		PublicID:    publicID,
		ClientID:    clientID,
		UserID:      userID,
		ProductID:   productID,
		Total:       a.Total,
		Discount:    a.Discount,
		EntryAmount: a.EntryAmount,
		PaymentType: paymentType,
		Status:      SaleStatusDraft,
	}, nil
}

// TransitionTo moves the sale to status. Same status is a no-op and reports false.
func (s *Sale) TransitionTo(status SaleStatus, now time.Time) (bool, error) {
	if !status.IsValid() {
		return false, shared.InvalidParameterError("INVALID_SALE_STATUS", "status must be DRAFT, CONFIRMED or CANCELED")
	}
	if s.Status == status {
		return false, nil
	}
	if !s.Status.CanTransitionTo(status) {
		return false, shared.InvalidTransitionError("sale", s.Status, status)
	}
	s.Status = status
	s.Touch(now)
	return true, nil
}
