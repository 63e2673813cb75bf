package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dms/backend/internal/domain/billing"
	"github.com/dms/backend/internal/domain/inventory"
	"github.com/dms/backend/internal/domain/numbering"
	"github.com/dms/backend/internal/domain/partner"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/shared/valueobject"
	"github.com/dms/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultDueInDays is the payment term applied when a caller does not name one
const DefaultDueInDays = 14

// defaultVATRatePercent is the German standard VAT rate
var defaultVATRatePercent = decimal.NewFromInt(19)

// InvoiceService handles invoice-related business operations. Invoice numbers
// are allocated per calendar year, so sequences restart every January.
type InvoiceService struct {
	invoiceRepo  billing.InvoiceRepository
	customerRepo partner.CustomerRepository
	contractRepo trade.ContractRepository
	vehicleRepo  inventory.VehicleRepository
	allocator    numbering.Allocator
	logger       *zap.Logger
	now          func() time.Time
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	customerRepo partner.CustomerRepository,
	contractRepo trade.ContractRepository,
	vehicleRepo inventory.VehicleRepository,
	allocator numbering.Allocator,
	logger *zap.Logger,
) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		contractRepo: contractRepo,
		vehicleRepo:  vehicleRepo,
		allocator:    allocator,
		logger:       logger,
		now:          time.Now,
	}
}

// Create creates a new draft invoice
func (s *InvoiceService) Create(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	if _, err := s.customerRepo.FindByID(ctx, req.CustomerID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Customer not found")
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	if req.ContractID != nil {
		contract, err := s.contractRepo.FindByID(ctx, *req.ContractID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("NOT_FOUND", "Contract not found")
			}
			return nil, fmt.Errorf("failed to get contract: %w", err)
		}
		if contract.CustomerID != req.CustomerID {
			return nil, shared.NewDomainError("INVALID_INPUT", "Contract belongs to a different customer")
		}
	}

	invoiceNumber, err := s.allocateNumber(ctx)
	if err != nil {
		return nil, err
	}

	invoice, err := billing.NewInvoice(invoiceNumber, req.CustomerID, req.ContractID)
	if err != nil {
		return nil, err
	}
	invoice.Notes = req.Notes

	for _, pos := range req.Positions {
		vatRate := pos.VATRate
		if vatRate.IsZero() {
			vatRate = defaultVATRatePercent
		}
		if _, err := invoice.AddPosition(pos.Description, pos.Quantity, valueobject.NewMoneyEUR(pos.UnitPrice), vatRate); err != nil {
			return nil, err
		}
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	s.logger.Info("invoice created",
		zap.String("id", invoice.ID.String()),
		zap.String("invoiceNumber", invoice.InvoiceNumber))

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// CreateFromContract creates a draft invoice prefilled with one position for
// the contract's vehicle at the contract price
func (s *InvoiceService) CreateFromContract(ctx context.Context, contractID uuid.UUID) (*InvoiceResponse, error) {
	contract, err := s.contractRepo.FindByID(ctx, contractID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Contract not found")
		}
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}
	if contract.Type != trade.ContractTypePurchase {
		return nil, shared.NewDomainError("INVALID_INPUT", "Only purchase contracts are invoiced")
	}
	if contract.Status != trade.ContractStatusActive && contract.Status != trade.ContractStatusCompleted {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot invoice a %s contract", contract.Status))
	}

	vehicle, err := s.vehicleRepo.FindByID(ctx, contract.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}

	invoiceNumber, err := s.allocateNumber(ctx)
	if err != nil {
		return nil, err
	}

	invoice, err := billing.NewInvoice(invoiceNumber, contract.CustomerID, &contract.ID)
	if err != nil {
		return nil, err
	}

	// Effective VAT rate from the contract amounts; margin-scheme
	// contracts carry no VAT.
	vatRate := decimal.Zero
	if contract.NetPrice.IsPositive() && contract.VATAmount.IsPositive() {
		vatRate = contract.VATAmount.Div(contract.NetPrice).Mul(decimal.NewFromInt(100)).Round(1)
	}

	description := fmt.Sprintf("%s (FIN %s), contract %s", vehicle.Title(), vehicle.VIN, contract.ContractNumber)
	if vehicle.VIN == "" {
		description = fmt.Sprintf("%s, contract %s", vehicle.Title(), contract.ContractNumber)
	}
	if _, err := invoice.AddPosition(description, decimal.NewFromInt(1), contract.GetGrossPriceMoney(), vatRate); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	s.logger.Info("invoice created from contract",
		zap.String("id", invoice.ID.String()),
		zap.String("invoiceNumber", invoice.InvoiceNumber),
		zap.String("contractNumber", contract.ContractNumber))

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// allocateNumber draws the next number from this year's invoice namespace
func (s *InvoiceService) allocateNumber(ctx context.Context) (string, error) {
	year := s.now().Year()
	seq, err := s.allocator.Next(ctx, numbering.InvoiceNamespace(year))
	if err != nil {
		return "", fmt.Errorf("failed to allocate invoice number: %w", err)
	}
	return numbering.FormatInvoiceNumber(year, seq), nil
}

// GetByID retrieves an invoice by ID
func (s *InvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.findInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// List retrieves a paginated list of invoices
func (s *InvoiceService) List(ctx context.Context, req InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}

	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Filters:  make(map[string]interface{}),
	}
	if req.Status != "" {
		filter.Filters["status"] = req.Status
	}

	var (
		invoices []billing.Invoice
		err      error
	)
	if req.CustomerID != nil {
		invoices, err = s.invoiceRepo.FindByCustomer(ctx, *req.CustomerID, filter)
	} else {
		invoices, err = s.invoiceRepo.FindAll(ctx, filter)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list invoices: %w", err)
	}

	total, err := s.invoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count invoices: %w", err)
	}

	items := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		items[i] = ToInvoiceResponse(&invoices[i])
	}
	return items, total, nil
}

// AddPosition appends a line to a draft invoice
func (s *InvoiceService) AddPosition(ctx context.Context, id uuid.UUID, req PositionRequest) (*InvoiceResponse, error) {
	invoice, err := s.findInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	vatRate := req.VATRate
	if vatRate.IsZero() {
		vatRate = defaultVATRatePercent
	}
	if _, err := invoice.AddPosition(req.Description, req.Quantity, valueobject.NewMoneyEUR(req.UnitPrice), vatRate); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// RemovePosition removes a line from a draft invoice
func (s *InvoiceService) RemovePosition(ctx context.Context, id, positionID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.findInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := invoice.RemovePosition(positionID); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// Issue moves a draft invoice to OPEN
func (s *InvoiceService) Issue(ctx context.Context, id uuid.UUID, req IssueInvoiceRequest) (*InvoiceResponse, error) {
	invoice, err := s.findInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	dueInDays := req.DueInDays
	if dueInDays <= 0 {
		dueInDays = DefaultDueInDays
	}
	if err := invoice.Issue(dueInDays); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	s.logger.Info("invoice issued",
		zap.String("id", invoice.ID.String()),
		zap.String("invoiceNumber", invoice.InvoiceNumber),
		zap.String("gross", invoice.GrossAmount.StringFixed(2)))

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// MarkPaid marks an open invoice as paid
func (s *InvoiceService) MarkPaid(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.findInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := invoice.MarkPaid(); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	s.logger.Info("invoice paid", zap.String("invoiceNumber", invoice.InvoiceNumber))

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// Cancel cancels a draft or open invoice
func (s *InvoiceService) Cancel(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.findInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := invoice.Cancel(); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	s.logger.Info("invoice cancelled", zap.String("invoiceNumber", invoice.InvoiceNumber))

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

func (s *InvoiceService) findInvoice(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return invoice, nil
}
