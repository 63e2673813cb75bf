package printing

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dms/backend/internal/domain/printing"
	"github.com/dms/backend/internal/domain/shared"
	infra "github.com/dms/backend/internal/infrastructure/printing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockDataLoader is a mock implementation of DataLoader
type MockDataLoader struct {
	mock.Mock
}

func (m *MockDataLoader) LoadData(ctx context.Context, docType printing.DocType, documentID uuid.UUID) (*infra.DocumentData, error) {
	args := m.Called(ctx, docType, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*infra.DocumentData), args.Error(1)
}

func (m *MockDataLoader) HasProvider(docType printing.DocType) bool {
	args := m.Called(docType)
	return args.Bool(0)
}

// MockPDFRenderer is a mock implementation of infra.PDFRenderer
type MockPDFRenderer struct {
	mock.Mock
}

func (m *MockPDFRenderer) Render(ctx context.Context, req *infra.RenderRequest) (*infra.RenderResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*infra.RenderResult), args.Error(1)
}

func (m *MockPDFRenderer) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockPDFStorage is a mock implementation of infra.PDFStorage
type MockPDFStorage struct {
	mock.Mock
}

func (m *MockPDFStorage) Store(ctx context.Context, req *infra.StoreRequest) (*infra.StoreResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*infra.StoreResult), args.Error(1)
}

func (m *MockPDFStorage) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockPDFStorage) Delete(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

func (m *MockPDFStorage) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	args := m.Called(ctx, age)
	return args.Int(0), args.Error(1)
}

func (m *MockPDFStorage) GetURL(path string) string {
	args := m.Called(path)
	return args.String(0)
}

type documentFixture struct {
	loader   *MockDataLoader
	renderer *MockPDFRenderer
	storage  *MockPDFStorage
	service  *DocumentService
}

func newDocumentFixture(t *testing.T) *documentFixture {
	t.Helper()

	templates, err := infra.NewTemplateStore(nil)
	require.NoError(t, err)

	loader := &MockDataLoader{}
	renderer := &MockPDFRenderer{}
	storage := &MockPDFStorage{}

	return &documentFixture{
		loader:   loader,
		renderer: renderer,
		storage:  storage,
		service: NewDocumentService(
			loader,
			templates,
			infra.NewTemplateEngine(),
			renderer,
			storage,
			nil,
		),
	}
}

func invoiceDocumentData(docNo string) *infra.DocumentData {
	data := infra.NewDocumentData(printing.DocTypeInvoice, docNo)
	data.Dealer = infra.DealerInfo{
		Name:    "Autohaus Mustermann",
		Address: "Hauptstraße 1, 10115 Berlin",
	}
	data.Meta.Status = "OPEN"
	data.Meta.StatusText = "Offen"
	data.Document = infra.InvoiceDocumentData{
		ID:            uuid.New(),
		InvoiceNumber: docNo,
		Customer: infra.CustomerInfo{
			CustomerNumber: 101,
			Name:           "Anna Schmidt",
			Street:         "Musterweg 5",
			City:           "10117 Berlin",
		},
		NetAmount:   decimal.NewFromInt(21000),
		VATAmount:   decimal.NewFromInt(3990),
		GrossAmount: decimal.NewFromInt(24990),

		NetAmountFormatted:   infra.FormatMoneyValue(decimal.NewFromInt(21000)),
		VATAmountFormatted:   infra.FormatMoneyValue(decimal.NewFromInt(3990)),
		GrossAmountFormatted: infra.FormatMoneyValue(decimal.NewFromInt(24990)),
	}
	return data
}

func TestDocumentService_Render(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()
	docID := uuid.New()
	pdfData := []byte("%PDF-1.4 rendered")

	f.loader.On("HasProvider", printing.DocTypeInvoice).Return(true)
	f.loader.On("LoadData", ctx, printing.DocTypeInvoice, docID).
		Return(invoiceDocumentData("INV-2026-0001"), nil)
	f.renderer.On("Render", ctx, mock.MatchedBy(func(req *infra.RenderRequest) bool {
		return strings.Contains(req.HTML, "INV-2026-0001") &&
			strings.Contains(req.HTML, "24.990,00") &&
			req.PaperSize == printing.PaperSizeA4 &&
			req.Title == "Rechnung INV-2026-0001"
	})).Return(&infra.RenderResult{PDFData: pdfData, PageCount: 1}, nil)
	f.storage.On("Store", ctx, mock.MatchedBy(func(req *infra.StoreRequest) bool {
		return req.DocType == printing.DocTypeInvoice && req.DocumentID == docID
	})).Return(&infra.StoreResult{
		Path: "2026/08/invoice-" + docID.String() + ".pdf",
		URL:  "/api/v1/documents/2026/08/invoice-" + docID.String() + ".pdf",
		Size: int64(len(pdfData)),
	}, nil)

	resp, err := f.service.Render(ctx, RenderDocumentRequest{
		DocumentType: "INVOICE",
		DocumentID:   docID,
	})

	require.NoError(t, err)
	assert.Equal(t, "rechnung-INV-2026-0001.pdf", resp.Filename)
	assert.Equal(t, "application/pdf", resp.ContentType)
	assert.Equal(t, pdfData, resp.Data)
	assert.Equal(t, 1, resp.PageCount)
	assert.Contains(t, resp.URL, "/api/v1/documents/")
	f.renderer.AssertExpectations(t)
	f.storage.AssertExpectations(t)
}

func TestDocumentService_Render_InvalidDocumentType(t *testing.T) {
	f := newDocumentFixture(t)

	_, err := f.service.Render(context.Background(), RenderDocumentRequest{
		DocumentType: "DELIVERY_NOTE",
		DocumentID:   uuid.New(),
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	f.loader.AssertNotCalled(t, "LoadData", mock.Anything, mock.Anything, mock.Anything)
}

func TestDocumentService_Render_DocumentNotFound(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()
	docID := uuid.New()

	f.loader.On("HasProvider", printing.DocTypeContract).Return(true)
	f.loader.On("LoadData", ctx, printing.DocTypeContract, docID).
		Return(nil, shared.ErrNotFound)

	_, err := f.service.Render(ctx, RenderDocumentRequest{
		DocumentType: "CONTRACT",
		DocumentID:   docID,
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
	f.renderer.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
}

func TestDocumentService_Render_RendererFailure(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()
	docID := uuid.New()

	f.loader.On("HasProvider", printing.DocTypeInvoice).Return(true)
	f.loader.On("LoadData", ctx, printing.DocTypeInvoice, docID).
		Return(invoiceDocumentData("INV-2026-0002"), nil)
	f.renderer.On("Render", ctx, mock.Anything).
		Return(nil, infra.NewRenderError(infra.ErrCodeRenderTimeout, "rendering timed out", nil))

	_, err := f.service.Render(ctx, RenderDocumentRequest{
		DocumentType: "INVOICE",
		DocumentID:   docID,
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, infra.ErrCodeRenderTimeout, domainErr.Code)
	f.storage.AssertNotCalled(t, "Store", mock.Anything, mock.Anything)
}

func TestDocumentService_Render_TemplateMismatch(t *testing.T) {
	f := newDocumentFixture(t)

	// Contract template requested for an invoice render
	contractTemplate := f.service.templates.GetDefault(printing.DocTypeContract)
	require.NotNil(t, contractTemplate)

	f.loader.On("HasProvider", printing.DocTypeInvoice).Return(true)

	_, err := f.service.Render(context.Background(), RenderDocumentRequest{
		DocumentType: "INVOICE",
		DocumentID:   uuid.New(),
		TemplateID:   &contractTemplate.ID,
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_INPUT", domainErr.Code)
}

func TestDocumentService_Preview(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()
	docID := uuid.New()

	f.loader.On("HasProvider", printing.DocTypeInvoice).Return(true)
	f.loader.On("LoadData", ctx, printing.DocTypeInvoice, docID).
		Return(invoiceDocumentData("INV-2026-0003"), nil)

	resp, err := f.service.Preview(ctx, RenderDocumentRequest{
		DocumentType: "INVOICE",
		DocumentID:   docID,
	})

	require.NoError(t, err)
	assert.Contains(t, resp.HTML, "INV-2026-0003")
	assert.Contains(t, resp.HTML, "Anna Schmidt")
	assert.Equal(t, "A4", resp.PaperSize)
	assert.Equal(t, "PORTRAIT", resp.Orientation)
	f.renderer.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
	f.storage.AssertNotCalled(t, "Store", mock.Anything, mock.Anything)
}

func TestDocumentService_ListTemplates(t *testing.T) {
	f := newDocumentFixture(t)

	templates := f.service.ListTemplates()
	require.Len(t, templates, 2)
	for _, tmpl := range templates {
		assert.True(t, tmpl.IsDefault)
		assert.Equal(t, "A4", tmpl.PaperSize)
	}
}

func TestDocumentService_GetDocumentTypes(t *testing.T) {
	f := newDocumentFixture(t)

	types := f.service.GetDocumentTypes()
	require.Len(t, types, 2)
	codes := []string{types[0].Code, types[1].Code}
	assert.Contains(t, codes, "CONTRACT")
	assert.Contains(t, codes, "INVOICE")
}
