package printing

import (
	"context"
	"time"

	"github.com/dms/backend/internal/domain/printing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DataProvider is the interface for providing document data for template
// rendering. Each document type has its own implementation.
type DataProvider interface {
	// GetDocType returns the document type this provider handles
	GetDocType() printing.DocType
	// GetData builds the fully resolved document snapshot for rendering
	GetData(ctx context.Context, documentID uuid.UUID) (*DocumentData, error)
}

// DocumentData is the common structure for all document data used in
// templates. The snapshot is complete; templates never trigger data access.
type DocumentData struct {
	// Common metadata
	Meta DocumentMeta `json:"meta"`

	// Dealer letterhead information
	Dealer DealerInfo `json:"dealer"`

	// Document-specific data: ContractDocumentData or InvoiceDocumentData
	Document any `json:"document"`

	// Formatted print timestamps
	PrintDate     string `json:"printDate"`
	PrintDateTime string `json:"printDateTime"`
}

// DocumentMeta contains common metadata for all documents
type DocumentMeta struct {
	DocType     printing.DocType `json:"docType"`
	DocTypeName string           `json:"docTypeName"` // German name
	DocNo       string           `json:"docNo"`
	Status      string           `json:"status"`
	StatusText  string           `json:"statusText"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// DealerInfo contains the dealer's letterhead data
type DealerInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Website string `json:"website"`
	TaxID   string `json:"taxId"`
	IBAN    string `json:"iban"`
	BIC     string `json:"bic"`
}

// CustomerInfo contains customer information for printing
type CustomerInfo struct {
	ID             uuid.UUID `json:"id"`
	CustomerNumber int64     `json:"customerNumber"`
	Name           string    `json:"name"`
	Street         string    `json:"street"`
	City           string    `json:"city"` // postal code + city
	Country        string    `json:"country"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email"`
	TaxID          string    `json:"taxId"`
}

// VehicleInfo contains vehicle information for printing
type VehicleInfo struct {
	ID                uuid.UUID `json:"id"`
	VehicleNumber     int64     `json:"vehicleNumber"`
	Title             string    `json:"title"` // make model variant
	VIN               string    `json:"vin"`
	FirstRegistration string    `json:"firstRegistration"` // formatted, empty when unknown
	MileageKM         int       `json:"mileageKm"`
	PowerKW           int       `json:"powerKw"`
	Fuel              string    `json:"fuel"`
	Transmission      string    `json:"transmission"`
	ColorExterior     string    `json:"colorExterior"`
}

// ContractDocumentData represents a contract for template rendering
type ContractDocumentData struct {
	ID             uuid.UUID       `json:"id"`
	ContractNumber string          `json:"contractNumber"`
	Type           string          `json:"type"`
	TypeText       string          `json:"typeText"` // German name
	Customer       CustomerInfo    `json:"customer"`
	Vehicle        VehicleInfo     `json:"vehicle"`
	NetPrice       decimal.Decimal `json:"netPrice"`
	VATAmount      decimal.Decimal `json:"vatAmount"`
	GrossPrice     decimal.Decimal `json:"grossPrice"`
	Deposit        decimal.Decimal `json:"deposit"`
	Outstanding    decimal.Decimal `json:"outstanding"`
	MarginScheme   bool            `json:"marginScheme"` // §25a UStG, no VAT shown
	DeliveryDate   *time.Time      `json:"deliveryDate"`
	SignedAt       *time.Time      `json:"signedAt"`
	Notes          string          `json:"notes"`

	// Formatted fields
	NetPriceFormatted    string `json:"netPriceFormatted"`
	VATAmountFormatted   string `json:"vatAmountFormatted"`
	GrossPriceFormatted  string `json:"grossPriceFormatted"`
	DepositFormatted     string `json:"depositFormatted"`
	OutstandingFormatted string `json:"outstandingFormatted"`
}

// InvoicePositionData represents an invoice line for template rendering
type InvoicePositionData struct {
	Position    int             `json:"position"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	VATRate     decimal.Decimal `json:"vatRate"`
	Total       decimal.Decimal `json:"total"`

	// Formatted fields
	QuantityFormatted  string `json:"quantityFormatted"`
	UnitPriceFormatted string `json:"unitPriceFormatted"`
	VATRateFormatted   string `json:"vatRateFormatted"`
	TotalFormatted     string `json:"totalFormatted"`
}

// InvoiceDocumentData represents an invoice for template rendering
type InvoiceDocumentData struct {
	ID            uuid.UUID             `json:"id"`
	InvoiceNumber string                `json:"invoiceNumber"`
	Customer      CustomerInfo          `json:"customer"`
	ContractNo    string                `json:"contractNo"` // empty when free-standing
	Positions     []InvoicePositionData `json:"positions"`
	NetAmount     decimal.Decimal       `json:"netAmount"`
	VATAmount     decimal.Decimal       `json:"vatAmount"`
	GrossAmount   decimal.Decimal       `json:"grossAmount"`
	IssuedAt      *time.Time            `json:"issuedAt"`
	DueAt         *time.Time            `json:"dueAt"`
	Notes         string                `json:"notes"`

	// Formatted fields
	NetAmountFormatted   string `json:"netAmountFormatted"`
	VATAmountFormatted   string `json:"vatAmountFormatted"`
	GrossAmountFormatted string `json:"grossAmountFormatted"`
}

// NewDocumentData creates a new DocumentData with common fields initialized
func NewDocumentData(docType printing.DocType, docNo string) *DocumentData {
	now := time.Now()
	return &DocumentData{
		Meta: DocumentMeta{
			DocType:     docType,
			DocTypeName: docType.DisplayName(),
			DocNo:       docNo,
		},
		PrintDate:     now.Format("02.01.2006"),
		PrintDateTime: now.Format("02.01.2006 15:04"),
	}
}

// FormatMoneyValue formats a decimal as EUR for data providers
func FormatMoneyValue(d decimal.Decimal) string {
	return formatMoney(d)
}

// StatusText exposes the German status names to data providers
func StatusText(status string) string {
	return statusText(status)
}
