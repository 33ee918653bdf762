package dto

// DragRequest encodes one completed drag gesture. Source is what was
// picked up; Target is the flat encoded drop id ("truck|date" for a cell,
// "run:<id>" for a run, a bare order id otherwise) or null for a drag
// released outside any droppable region.
type DragRequest struct {
	SourceKind string  `json:"source_kind"`
	SourceID   string  `json:"source_id"`
	Target     *string `json:"target"`
}

type DragResponse struct {
	Applied bool   `json:"applied"`
	Op      string `json:"op,omitempty"`
}

type CreateRunRequest struct {
	Cell string `json:"cell"`
}

type CreateRunResponse struct {
	RunID string `json:"run_id"`
}

type NotesRequest struct {
	Notes string `json:"notes"`
}

type LockResponse struct {
	Date   string `json:"date"`
	Locked bool   `json:"locked"`
}

type NoticesResponse struct {
	Notices []string `json:"notices"`
}
