package dto

import "github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/design"

type SiteConfigResponse struct {
	Version   int64                  `json:"version"`
	Sections  map[string]interface{} `json:"sections"`
	UpdatedAt string                 `json:"updatedAt"`
	UpdatedBy string                 `json:"updatedBy,omitempty"`
}

type SetSitePathRequest struct {
	Path            string      `json:"path"`
	Value           interface{} `json:"value"`
	ExpectedVersion *int64      `json:"expectedVersion,omitempty"`
}

type SectionStyleResponse struct {
	Section    string                       `json:"section"`
	Version    int64                        `json:"version"`
	Tags       []string                     `json:"tags"`
	Style      map[string]string            `json:"style"`
	Variants   design.Variants              `json:"variants"`
	Hover      *design.HoverDirective       `json:"hover,omitempty"`
	Typography map[design.TextKind][]string `json:"typography"`
}
