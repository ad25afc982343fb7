package entity

// DataRecord maps field keys (and the generated id/created_at) to stored values.
type DataRecord map[string]any
