package models

// OptionsRequest asks for the filter options of a set of sources.
// Empty Sources means the configured ones.
type OptionsRequest struct {
	Sources []string `json:"sources,omitempty" validate:"omitempty,dive,required"`
}

// DashboardRequest asks for a dashboard rendered with a selection.
type DashboardRequest struct {
	Selection Selection `json:"selection"`
	Sources   []string  `json:"sources,omitempty" validate:"omitempty,dive,required"`
}
