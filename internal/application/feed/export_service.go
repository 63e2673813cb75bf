package feed

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/dms/backend/internal/domain/feed"
	"github.com/dms/backend/internal/domain/inventory"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExportContentType is the mime type of generated feed files
const ExportContentType = "text/csv"

// Export is a rendered marketplace feed ready for download
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService projects vehicles into marketplace CSV feeds. Only vehicles
// in ACTIVE status are listed; anything else passed in is silently skipped.
type ExportService struct {
	vehicleRepo inventory.VehicleRepository
	registry    *feed.Registry
	dealerName  string
	logger      *zap.Logger
	now         func() time.Time
}

// NewExportService creates a new ExportService. dealerName is used in the
// generated filename.
func NewExportService(vehicleRepo inventory.VehicleRepository, registry *feed.Registry, dealerName string, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		vehicleRepo: vehicleRepo,
		registry:    registry,
		dealerName:  dealerName,
		logger:      logger,
		now:         time.Now,
	}
}

// ExportVehicles renders the feed for the given schema. With ids the export
// covers exactly those vehicles, otherwise every ACTIVE vehicle is included.
func (s *ExportService) ExportVehicles(ctx context.Context, schemaCode string, ids []uuid.UUID) (*Export, error) {
	schema, err := s.registry.Get(schemaCode)
	if err != nil {
		return nil, err
	}

	var vehicles []inventory.Vehicle
	if len(ids) > 0 {
		vehicles, err = s.vehicleRepo.FindByIDs(ctx, ids)
	} else {
		// PageSize 0 means unpaginated in the repository layer
		vehicles, err = s.vehicleRepo.FindByStatus(ctx, inventory.VehicleStatusActive, shared.Filter{
			OrderBy:  "vehicle_number",
			OrderDir: "asc",
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load vehicles for export: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = schema.Separator()

	if err := w.Write(schema.Columns()); err != nil {
		return nil, fmt.Errorf("failed to write feed header: %w", err)
	}

	rows := 0
	for i := range vehicles {
		v := &vehicles[i]
		if v.Status != inventory.VehicleStatusActive {
			s.logger.Debug("skipping unlisted vehicle in export",
				zap.String("id", v.ID.String()),
				zap.String("status", string(v.Status)))
			continue
		}
		if err := w.Write(schema.Row(feed.SnapshotFromVehicle(v))); err != nil {
			return nil, fmt.Errorf("failed to write feed row: %w", err)
		}
		rows++
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to render feed: %w", err)
	}

	s.logger.Info("feed exported",
		zap.String("schema", schema.Code()),
		zap.Int("vehicles", rows))

	return &Export{
		Filename:    s.filename(schema.Code()),
		ContentType: ExportContentType,
		Data:        buf.Bytes(),
	}, nil
}

// Schemas lists the available schema codes
func (s *ExportService) Schemas() []string {
	return s.registry.Codes()
}

func (s *ExportService) filename(schemaCode string) string {
	dealer := strings.ToLower(strings.TrimSpace(s.dealerName))
	dealer = strings.ReplaceAll(dealer, " ", "-")
	if dealer == "" {
		dealer = "export"
	}
	return fmt.Sprintf("%s-%s-%s.csv", dealer, schemaCode, s.now().Format("2006-01-02"))
}
