package models

import "time"

// DateField bestimmt, gegen welche Spalte der Datumsbereich geprüft wird.
type DateField string

const (
	DateFieldReception DateField = "reception_datetime"
	DateFieldUpdate    DateField = "update_datetime"
	DateFieldModified  DateField = "reception_moddt"
)

// FilterInput ist die rohe Filterangabe aus Query-Parametern oder dem
// Request-Body. Datumswerte bleiben Strings, bis sie geparst werden.
type FilterInput struct {
	Keyword        string `json:"keyword" form:"keyword"` // Legacy, nur ohne content/status_keyword
	ContentKeyword string `json:"content_keyword" form:"content_keyword"`
	StatusKeyword  string `json:"status_keyword" form:"status_keyword"`
	Progress       string `json:"progress" form:"progress"`
	SystemType     string `json:"system_type" form:"system_type"`
	Product        string `json:"product" form:"product"`
	DateFrom       string `json:"date_from" form:"date_from"`
	DateTo         string `json:"date_to" form:"date_to"`
	DateField      string `json:"date_field" form:"date_field"`
	IncludeDeleted bool   `json:"include_deleted" form:"include_deleted"`
}

// Filter ist die geparste, request-gebundene Filterspezifikation.
// Jedes Feld ist unabhängig optional; leere Strings gelten als nicht gesetzt.
type Filter struct {
	Keyword        string
	ContentKeyword string
	StatusKeyword  string
	Progress       string
	SystemType     string
	Product        string
	DateFrom       *time.Time
	DateTo         *time.Time
	DateField      DateField
	IncludeDeleted bool
}
