package models

import "time"

// DuplicateType wählt die Äquivalenzdefinition für die Duplikaterkennung.
type DuplicateType string

const (
	DuplicateExact   DuplicateType = "exact"   // Inhalt und Status identisch
	DuplicateContent DuplicateType = "content" // nur Inhalt identisch
	DuplicateStatus  DuplicateType = "status"  // nur Status identisch
)

// DuplicateTypes listet alle gültigen Typen in fester Reihenfolge.
var DuplicateTypes = []DuplicateType{DuplicateExact, DuplicateContent, DuplicateStatus}

// Valid meldet, ob t einer der bekannten Duplikattypen ist.
func (t DuplicateType) Valid() bool {
	switch t {
	case DuplicateExact, DuplicateContent, DuplicateStatus:
		return true
	}
	return false
}

// ReceptionRecord ist die kanonische Form eines Empfangsdatensatzes, wie sie
// Listing, Duplikaterkennung und Statistik gemeinsam verwenden.
type ReceptionRecord struct {
	ID         int64   `json:"id"`
	Content    *string `json:"content"`
	Status     string  `json:"status"`
	Result     string  `json:"result"`
	Report     string  `json:"report"`
	Progress   *string `json:"progress"`
	SystemType *string `json:"system_type"`
	Product    *string `json:"product"`

	// Soft-Delete-Marker: gesetzt genau dann, wenn der Datensatz gelöscht ist
	ReceptionModTime *time.Time `json:"reception_moddt"`
	ReceptionTime    *time.Time `json:"reception_datetime"`
	UpdateTime       *time.Time `json:"update_datetime"`

	// Nur bei Ergebnissen der Duplikaterkennung gesetzt; die Klassengröße
	// trägt die Gruppe
	DuplicateType *DuplicateType `json:"duplicate_type,omitempty"`
	DuplicateKey  *string        `json:"duplicate_key,omitempty"`
}

// Deleted meldet, ob der Datensatz soft-gelöscht ist.
func (r ReceptionRecord) Deleted() bool {
	return r.ReceptionModTime != nil
}

// DuplicateGroup ist eine zur Abfragezeit gebildete Äquivalenzklasse.
// GroupID wird pro Abfrage fortlaufend vergeben und ist nicht stabil.
type DuplicateGroup struct {
	GroupID        string            `json:"group_id"`
	DuplicateCount int               `json:"duplicate_count"`
	DuplicateKey   string            `json:"duplicate_key"`
	Records        []ReceptionRecord `json:"records"`
}
