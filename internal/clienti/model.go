package clienti

import "time"

// Cliente is a registry entry for a client company.
type Cliente struct {
	ID                  int64
	RagioneSociale      string
	PartitaIVA          string
	CodiceFiscale       string
	Email               string
	Telefono            string
	Indirizzo           string
	Citta               string
	CAP                 string
	Provincia           string
	Note                string
	Created             time.Time
	Changed             time.Time
	LastModifiedBy      string
	LastModifiedByEmail string
}

// Snapshot renders the document fields as stored, bookkeeping included.
// The audit change detector relies on these exact key names.
func (c *Cliente) Snapshot() map[string]any {
	if c == nil {
		return nil
	}
	return map[string]any{
		"ragione_sociale":     c.RagioneSociale,
		"partita_iva":         c.PartitaIVA,
		"codice_fiscale":      c.CodiceFiscale,
		"email":               c.Email,
		"telefono":            c.Telefono,
		"indirizzo":           c.Indirizzo,
		"citta":               c.Citta,
		"cap":                 c.CAP,
		"provincia":           c.Provincia,
		"note":                c.Note,
		"created":             c.Created.UTC().Format(time.RFC3339Nano),
		"changed":             c.Changed.UTC().Format(time.RFC3339Nano),
		"lastModifiedBy":      c.LastModifiedBy,
		"lastModifiedByEmail": c.LastModifiedByEmail,
	}
}
