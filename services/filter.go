package services

import (
	"fmt"
	"strings"
	"time"

	"reception-dedup/models"

	"gorm.io/gorm/clause"
)

// Quellspalten der Filterfelder. Nur diese festen Bezeichner landen im SQL.
const (
	colContent    = "receptbody.rdata"
	colStatus     = "COALESCE(execbody.execstate, '')"
	colProgress   = "cond_item.itemname"
	colSystemType = "stype_item.itemname"
	colProduct    = "prod_item.itemname"
	colDeletedAt  = "recepthead.receptmoddt"
)

var dateFieldColumns = map[models.DateField]string{
	models.DateFieldReception: "recepthead.calldt",
	models.DateFieldUpdate:    "COALESCE(receptbody.moddt, recepthead.calldt)",
	models.DateFieldModified:  "recepthead.receptmoddt",
}

// Predicate ist ein konjunktives WHERE-Fragment. Jede Klausel trägt ihre
// gebundenen Werte selbst, damit Platzhalter und Parameter nie auseinanderlaufen.
type Predicate struct {
	exprs []clause.Expr
}

func (p *Predicate) add(sql string, vars ...any) {
	p.exprs = append(p.exprs, clause.Expr{SQL: sql, Vars: vars})
}

// Len liefert die Anzahl der Klauseln.
func (p Predicate) Len() int { return len(p.exprs) }

// SQL rendert das Fragment mit führendem AND, oder "" ohne aktive Klausel.
func (p Predicate) SQL() string {
	if len(p.exprs) == 0 {
		return ""
	}
	parts := make([]string, len(p.exprs))
	for i, e := range p.exprs {
		parts[i] = e.SQL
	}
	return "AND " + strings.Join(parts, " AND ")
}

// Args liefert die Parameter in Platzhalter-Reihenfolge.
func (p Predicate) Args() []any {
	args := []any{}
	for _, e := range p.exprs {
		args = append(args, e.Vars...)
	}
	return args
}

// BuildFilter übersetzt eine Filterspezifikation in ein WHERE-Fragment.
// Die Regeln werden in fester Reihenfolge angewendet; ungesetzte Felder
// erzeugen keine Klausel.
func BuildFilter(f models.Filter) Predicate {
	var p Predicate

	if f.ContentKeyword != "" {
		p.add(colContent+" ILIKE ?", containsPattern(f.ContentKeyword))
	}
	if f.StatusKeyword != "" {
		p.add(colStatus+" ILIKE ?", containsPattern(f.StatusKeyword))
	}
	// Legacy-Suchwort nur, wenn keine getrennten Suchwörter gesetzt sind
	if f.Keyword != "" && f.ContentKeyword == "" && f.StatusKeyword == "" {
		kw := containsPattern(f.Keyword)
		p.add("("+colContent+" ILIKE ? OR "+colStatus+" ILIKE ?)", kw, kw)
	}

	if f.Progress != "" {
		p.add(colProgress+" = ?", f.Progress)
	}
	if f.SystemType != "" {
		p.add(colSystemType+" = ?", f.SystemType)
	}
	if f.Product != "" {
		p.add(colProduct+" = ?", f.Product)
	}

	if f.DateFrom != nil && f.DateTo != nil {
		// unbekanntes date_field: kein Datumsfilter
		if col, ok := dateFieldColumns[f.DateField]; ok {
			p.add(col+" BETWEEN ? AND ?", *f.DateFrom, *f.DateTo)
		}
	}

	if !f.IncludeDeleted {
		p.add(colDeletedAt + " IS NULL")
	}
	return p
}

// KnownDateField meldet, ob BuildFilter für field einen Datumsfilter erzeugt.
func KnownDateField(field models.DateField) bool {
	_, ok := dateFieldColumns[field]
	return ok
}

// dateLayouts sind die akzeptierten ISO-8601-Formen, nach Spezifität sortiert.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseDate parst einen ISO-8601-String. Ein abschließendes "Z" wird als
// +00:00 gelesen; Werte ohne Offset gelten in loc. Das Ergebnis liegt in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "Z") {
		s = strings.TrimSuffix(s, "Z") + "+00:00"
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.In(loc), nil
		}
	}
	return time.Time{}, invalidInput("invalid date: %q", s)
}

// ParseFilter wandelt die rohe Filterangabe in eine Filterspezifikation um.
// Fehlerhafte Datumswerte sind Client-Fehler.
func ParseFilter(in models.FilterInput, loc *time.Location) (models.Filter, error) {
	f := models.Filter{
		Keyword:        NormalizeKeyword(in.Keyword),
		ContentKeyword: NormalizeKeyword(in.ContentKeyword),
		StatusKeyword:  NormalizeKeyword(in.StatusKeyword),
		Progress:       in.Progress,
		SystemType:     in.SystemType,
		Product:        in.Product,
		DateField:      models.DateField(in.DateField),
		IncludeDeleted: in.IncludeDeleted,
	}
	if f.DateField == "" {
		f.DateField = models.DateFieldReception
	}
	if in.DateFrom != "" {
		t, err := ParseDate(in.DateFrom, loc)
		if err != nil {
			return f, fmt.Errorf("date_from: %w", err)
		}
		f.DateFrom = &t
	}
	if in.DateTo != "" {
		t, err := ParseDate(in.DateTo, loc)
		if err != nil {
			return f, fmt.Errorf("date_to: %w", err)
		}
		f.DateTo = &t
	}
	return f, nil
}
