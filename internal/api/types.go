package api

// StatusResponse reports daemon health over the local HTTP API.
type StatusResponse struct {
	Running       bool   `json:"running"`
	PID           int    `json:"pid"`
	SessionDBPath string `json:"session_db_path"`
	WorkDir       string `json:"work_dir"`
	PoleCount     int    `json:"pole_count"`
	ReviewedCount int    `json:"reviewed_count"`
	FlaggedCount  int    `json:"flagged_count"`
}

// PoleSummary is the list-view projection of one pole.
type PoleSummary struct {
	ID         string `json:"id"`
	Reviewed   bool   `json:"reviewed"`
	Flagged    bool   `json:"flagged"`
	PhotoCount int    `json:"photo_count"`
	HasNotes   bool   `json:"has_notes"`
}

// PoleListResponse wraps the pole list payload.
type PoleListResponse struct {
	Poles []PoleSummary `json:"poles"`
}

// PhotoView is one photo entry with its annotation state.
type PhotoView struct {
	Original       string `json:"original"`
	MarkedUp       string `json:"marked_up,omitempty"`
	PendingMarkups int    `json:"pending_markups"`
}

// LookupView is one merged lookup record.
type LookupView struct {
	Type        string `json:"type"`
	ID          string `json:"id"`
	Info        string `json:"info"`
	Location    string `json:"location"`
	Requirement string `json:"requirement"`
}

// PoleDetail is the full review state of one pole.
type PoleDetail struct {
	ID        string          `json:"id"`
	Reviewed  bool            `json:"reviewed"`
	Flagged   bool            `json:"flagged"`
	Notes     string          `json:"notes"`
	Checklist map[string]bool `json:"checklist"`
	Photos    []PhotoView     `json:"photos"`
	Lookup    []LookupView    `json:"lookup"`
}

// PoleDetailResponse wraps a single pole payload.
type PoleDetailResponse struct {
	Pole PoleDetail `json:"pole"`
}

// NavigateResponse acknowledges a navigation change and reports how many
// decode requests it queued.
type NavigateResponse struct {
	Pole      string `json:"pole"`
	Token     uint64 `json:"token"`
	Requested int    `json:"requested"`
}

// ReadyRendition is one drained cache result for the current navigation
// target.
type ReadyRendition struct {
	Path      string `json:"path"`
	Rendition string `json:"rendition"`
	FromCache bool   `json:"from_cache"`
}

// NavigationResponse reports the current navigation target and which of its
// renditions have been decoded so far.
type NavigationResponse struct {
	Pole  string           `json:"pole"`
	Token uint64           `json:"token"`
	Ready []ReadyRendition `json:"ready"`
}
