package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dms/backend/internal/domain/inventory"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
)

// DefaultCacheTTL is how long catalog responses stay cached
const DefaultCacheTTL = time.Minute

// cacheKeyPrefix scopes all catalog entries for prefix invalidation
const cacheKeyPrefix = "catalog:"

// CatalogService serves the public vehicle catalog. Only ACTIVE vehicles
// are visible. Responses are cached; inventory writes call Invalidate.
type CatalogService struct {
	vehicleRepo inventory.VehicleRepository
	cache       cache.ResponseCache
	logger      *zap.Logger
	ttl         time.Duration
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(
	vehicleRepo inventory.VehicleRepository,
	responseCache cache.ResponseCache,
	ttl time.Duration,
	logger *zap.Logger,
) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CatalogService{
		vehicleRepo: vehicleRepo,
		cache:       responseCache,
		logger:      logger,
		ttl:         ttl,
	}
}

// ListVehicles returns a catalog page of active vehicles
func (s *CatalogService) ListVehicles(ctx context.Context, req ListCatalogRequest) (*CatalogListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}

	key := fmt.Sprintf("%slist:page=%d:size=%d", cacheKeyPrefix, req.Page, req.PageSize)
	if cached, ok := s.getCached(ctx, key); ok {
		var resp CatalogListResponse
		if err := json.Unmarshal(cached, &resp); err == nil {
			return &resp, nil
		}
		// Corrupt entry, fall through to the repository
	}

	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  "vehicle_number",
		OrderDir: "asc",
	}

	vehicles, err := s.vehicleRepo.FindByStatus(ctx, inventory.VehicleStatusActive, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}

	total, err := s.vehicleRepo.Count(ctx, shared.Filter{
		Filters: map[string]interface{}{"status": string(inventory.VehicleStatusActive)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count vehicles: %w", err)
	}

	items := make([]CatalogVehicleResponse, len(vehicles))
	for i := range vehicles {
		items[i] = toCatalogVehicleResponse(&vehicles[i])
	}

	resp := &CatalogListResponse{
		Items: items,
		Total: total,
		Page:  req.Page,
		Size:  req.PageSize,
	}

	s.setCached(ctx, key, resp)
	return resp, nil
}

// GetVehicle returns a single active vehicle by its catalog slug.
// Vehicles in any other status are not visible to the public.
func (s *CatalogService) GetVehicle(ctx context.Context, slug string) (*CatalogVehicleResponse, error) {
	if slug == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Slug is required")
	}

	key := cacheKeyPrefix + "vehicle:" + slug
	if cached, ok := s.getCached(ctx, key); ok {
		var resp CatalogVehicleResponse
		if err := json.Unmarshal(cached, &resp); err == nil {
			return &resp, nil
		}
	}

	vehicle, err := s.vehicleRepo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Vehicle not found")
		}
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}

	if vehicle.Status != inventory.VehicleStatusActive {
		return nil, shared.NewDomainError("NOT_FOUND", "Vehicle not found")
	}

	resp := toCatalogVehicleResponse(vehicle)
	s.setCached(ctx, key, &resp)
	return &resp, nil
}

// Invalidate drops all cached catalog responses.
// Called by the inventory service after vehicle writes.
func (s *CatalogService) Invalidate(ctx context.Context) {
	if err := s.cache.DeleteByPrefix(ctx, cacheKeyPrefix); err != nil {
		// Stale entries expire via TTL, so a failed invalidation is not fatal
		s.logger.Warn("catalog cache invalidation failed", zap.Error(err))
	}
}

// getCached reads from the cache, treating errors as misses
func (s *CatalogService) getCached(ctx context.Context, key string) ([]byte, bool) {
	value, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return value, ok
}

// setCached writes to the cache, logging failures without surfacing them
func (s *CatalogService) setCached(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func toCatalogVehicleResponse(v *inventory.Vehicle) CatalogVehicleResponse {
	firstReg := ""
	if v.FirstRegistration != nil {
		firstReg = v.FirstRegistration.Format("01/2006")
	}

	images := v.Images
	if images == nil {
		images = []string{}
	}

	return CatalogVehicleResponse{
		Slug:              v.Slug,
		Title:             v.Title(),
		Condition:         string(v.Condition),
		Price:             v.SellingPrice.StringFixed(2),
		Currency:          "EUR",
		VATDeductible:     v.VATType == inventory.VATStandard,
		MileageKM:         v.MileageKM,
		FirstRegistration: firstReg,
		FuelType:          string(v.FuelType),
		Transmission:      string(v.Transmission),
		BodyType:          string(v.BodyType),
		DriveType:         string(v.DriveType),
		PowerKW:           v.PowerKW,
		ColorExterior:     v.ColorExterior,
		Doors:             v.Doors,
		Seats:             v.Seats,
		Images:            images,
		Description:       v.Description,
	}
}
