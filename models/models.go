package models

import "math"

// Logical collection names, mirrored by the handles in db/.
const (
	CollAdminConfigs      = "admin_configs"
	CollCityMetas         = "city_metas"
	CollEvents            = "events"
	CollItineraries       = "itineraries"
	CollItineraryMetas    = "itinerary_metas"
	CollItineraryRequests = "itinerary_requests"
	CollOrganizations     = "organizations"
	CollTravelers         = "travelers"
	CollUsers             = "users"
)

type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

type UnsplashImage struct {
	ID         string `json:"id" bson:"id"`
	URL        string `json:"url" bson:"url"`
	AuthorName string `json:"author_name" bson:"author_name"`
	AuthorLink string `json:"author_link" bson:"author_link"`
}

type Paginated struct {
	PageNumber int `json:"page_number"`
	PageSize   int `json:"page_size"`
}

func (p *Paginated) Normalize() {
	if p.PageSize <= 0 || p.PageSize > 10 {
		p.PageSize = 10
	}
	if p.PageNumber < 0 {
		p.PageNumber = 0
	}
}

func (p Paginated) Skip() int {
	return p.PageSize * p.PageNumber
}

type PaginatedResponse struct {
	Content       any `json:"content"`
	TotalElements int `json:"total_elements"`
	PageSize      int `json:"page_size"`
	PageNumber    int `json:"page_number"`
	TotalPages    int `json:"total_pages"`
}

func NewPaginatedResponse(content any, total int, p Paginated) PaginatedResponse {
	pages := 0
	if p.PageSize > 0 {
		pages = int(math.Ceil(float64(total) / float64(p.PageSize)))
	}
	return PaginatedResponse{
		Content:       content,
		TotalElements: total,
		PageSize:      p.PageSize,
		PageNumber:    p.PageNumber,
		TotalPages:    pages,
	}
}
