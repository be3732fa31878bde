package configurazioni

import "time"

// Setting is a single key/value configuration row.
type Setting struct {
	Key                 string    `json:"key"`
	Value               string    `json:"value"`
	Description         string    `json:"description"`
	Created             time.Time `json:"created"`
	Changed             time.Time `json:"changed"`
	LastModifiedBy      string    `json:"lastModifiedBy"`
	LastModifiedByEmail string    `json:"lastModifiedByEmail"`
}

// Snapshot flattens the setting for change detection and audit storage.
func (s Setting) Snapshot() map[string]any {
	return map[string]any{
		"key":                 s.Key,
		"value":               s.Value,
		"description":         s.Description,
		"created":             s.Created.UTC().Format(time.RFC3339Nano),
		"changed":             s.Changed.UTC().Format(time.RFC3339Nano),
		"lastModifiedBy":      s.LastModifiedBy,
		"lastModifiedByEmail": s.LastModifiedByEmail,
	}
}
