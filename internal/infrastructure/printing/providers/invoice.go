package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/dms/backend/internal/domain/billing"
	"github.com/dms/backend/internal/domain/partner"
	"github.com/dms/backend/internal/domain/printing"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/trade"
	infra "github.com/dms/backend/internal/infrastructure/printing"
	"github.com/google/uuid"
)

// InvoiceProvider implements DataProvider for the INVOICE document type.
type InvoiceProvider struct {
	invoiceRepo  billing.InvoiceRepository
	customerRepo partner.CustomerRepository
	contractRepo trade.ContractRepository
	dealer       infra.DealerInfo
}

// NewInvoiceProvider creates a new InvoiceProvider.
func NewInvoiceProvider(
	invoiceRepo billing.InvoiceRepository,
	customerRepo partner.CustomerRepository,
	contractRepo trade.ContractRepository,
	dealer infra.DealerInfo,
) *InvoiceProvider {
	return &InvoiceProvider{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		contractRepo: contractRepo,
		dealer:       dealer,
	}
}

// GetDocType returns the document type this provider handles.
func (p *InvoiceProvider) GetDocType() printing.DocType {
	return printing.DocTypeInvoice
}

// GetData retrieves invoice data for rendering.
func (p *InvoiceProvider) GetData(ctx context.Context, documentID uuid.UUID) (*infra.DocumentData, error) {
	invoice, err := p.invoiceRepo.FindByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}

	customer, err := p.customerRepo.FindByID(ctx, invoice.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}

	// The contract reference is optional, a missing contract only drops
	// the reference line from the document
	contractNo := ""
	if invoice.ContractID != nil {
		contract, err := p.contractRepo.FindByID(ctx, *invoice.ContractID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("failed to load contract: %w", err)
		}
		if contract != nil {
			contractNo = contract.ContractNumber
		}
	}

	docData := infra.NewDocumentData(printing.DocTypeInvoice, invoice.InvoiceNumber)
	docData.Dealer = p.dealer
	docData.Meta.Status = string(invoice.Status)
	docData.Meta.StatusText = infra.StatusText(string(invoice.Status))
	docData.Meta.CreatedAt = invoice.CreatedAt
	docData.Meta.UpdatedAt = invoice.UpdatedAt

	positions := make([]infra.InvoicePositionData, len(invoice.Positions))
	for i, pos := range invoice.Positions {
		positions[i] = infra.InvoicePositionData{
			Position:    pos.Position,
			Description: pos.Description,
			Quantity:    pos.Quantity,
			UnitPrice:   pos.UnitPrice,
			VATRate:     pos.VATRate,
			Total:       pos.Total,

			QuantityFormatted:  pos.Quantity.String(),
			UnitPriceFormatted: infra.FormatMoneyValue(pos.UnitPrice),
			VATRateFormatted:   vatRateText(pos),
			TotalFormatted:     infra.FormatMoneyValue(pos.Total),
		}
	}

	docData.Document = infra.InvoiceDocumentData{
		ID:            invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		Customer:      customerInfo(customer),
		ContractNo:    contractNo,
		Positions:     positions,
		NetAmount:     invoice.NetAmount,
		VATAmount:     invoice.VATAmount,
		GrossAmount:   invoice.GrossAmount,
		IssuedAt:      invoice.IssuedAt,
		DueAt:         invoice.DueAt,
		Notes:         invoice.Notes,

		NetAmountFormatted:   infra.FormatMoneyValue(invoice.NetAmount),
		VATAmountFormatted:   infra.FormatMoneyValue(invoice.VATAmount),
		GrossAmountFormatted: infra.FormatMoneyValue(invoice.GrossAmount),
	}

	return docData, nil
}

// vatRateText formats the VAT rate column, "--" for margin-scheme lines
func vatRateText(pos billing.InvoicePosition) string {
	if pos.VATRate.IsZero() {
		return "--"
	}
	return pos.VATRate.Round(1).String() + " %"
}
