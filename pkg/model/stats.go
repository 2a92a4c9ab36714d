package model

// AdminStats aggregates the counters shown on the administration panel.
type AdminStats struct {
	TotalDocuments     int `json:"totalDocuments"`
	TotalUsers         int `json:"totalUsers"`
	TotalAdmins        int `json:"totalAdmins"`
	ActiveUsers        int `json:"activeUsers"`
	TotalDownloads     int `json:"totalDownloads"`
	DocumentsThisMonth int `json:"documentsThisMonth"`
}

// FacetCount is one value of a filterable field together with how many
// documents carry it.
type FacetCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// FilterStats feeds the filter sidebar: per-type and per-area counters.
type FilterStats struct {
	DocumentTypes  []FacetCount `json:"documentTypes"`
	ResearchAreas  []FacetCount `json:"researchAreas"`
	TotalDocuments int          `json:"totalDocuments"`
}
