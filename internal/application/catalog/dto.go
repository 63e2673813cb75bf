package catalog

// ListCatalogRequest represents pagination parameters for the public catalog
type ListCatalogRequest struct {
	Page     int `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize int `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
}

// CatalogVehicleResponse is the public view of a listed vehicle.
// Purchase-side data (VIN, notes, margins) is never exposed here.
type CatalogVehicleResponse struct {
	Slug              string   `json:"slug"`
	Title             string   `json:"title"`
	Condition         string   `json:"condition"`
	Price             string   `json:"price"`
	Currency          string   `json:"currency"`
	VATDeductible     bool     `json:"vat_deductible"`
	MileageKM         int      `json:"mileage_km"`
	FirstRegistration string   `json:"first_registration,omitempty"`
	FuelType          string   `json:"fuel_type,omitempty"`
	Transmission      string   `json:"transmission,omitempty"`
	BodyType          string   `json:"body_type,omitempty"`
	DriveType         string   `json:"drive_type,omitempty"`
	PowerKW           int      `json:"power_kw,omitempty"`
	ColorExterior     string   `json:"color_exterior,omitempty"`
	Doors             int      `json:"doors,omitempty"`
	Seats             int      `json:"seats,omitempty"`
	Images            []string `json:"images"`
	Description       string   `json:"description,omitempty"`
}

// CatalogListResponse represents a paginated catalog page
type CatalogListResponse struct {
	Items []CatalogVehicleResponse `json:"items"`
	Total int64                    `json:"total"`
	Page  int                      `json:"page"`
	Size  int                      `json:"size"`
}
