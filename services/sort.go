package services

import (
	"strings"
)

// listingSortColumns sind die sortierbaren Ausgabespalten des Listings.
var listingSortColumns = map[string]bool{
	"id":                 true,
	"content":            true,
	"status":             true,
	"result":             true,
	"report":             true,
	"progress":           true,
	"system_type":        true,
	"product":            true,
	"reception_moddt":    true,
	"reception_datetime": true,
	"update_datetime":    true,
}

// duplicateSortColumns sind die sortierbaren Spalten der Duplikaterkennung.
var duplicateSortColumns = map[string]bool{
	"id":                 true,
	"content":            true,
	"status":             true,
	"progress":           true,
	"system_type":        true,
	"product":            true,
	"reception_datetime": true,
	"update_datetime":    true,
}

const defaultListingOrder = "reception_datetime DESC"

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// ParseSortOrders prüft eine kommagetrennte Liste von Sortierrichtungen.
// Jeder Eintrag außerhalb von asc/desc ist ein Client-Fehler.
func ParseSortOrders(raw string) ([]string, error) {
	tokens := splitList(raw)
	for i, t := range tokens {
		t = strings.ToLower(t)
		if t != "asc" && t != "desc" {
			return nil, invalidInput("Invalid sort order: %s", t)
		}
		tokens[i] = t
	}
	return tokens, nil
}

// listingOrderBy baut die ORDER-BY-Liste des Listings aus geprüften
// Richtungen. Unbekannte Spalten entfallen; fehlt eine Richtung, gilt die
// letzte angegebene. id dient als abschließendes Unterscheidungsmerkmal.
func listingOrderBy(sortBy string, orders []string) string {
	var parts []string
	hasID := false
	for i, col := range splitList(sortBy) {
		if !listingSortColumns[col] {
			continue
		}
		dir := "ASC"
		switch {
		case i < len(orders):
			dir = strings.ToUpper(orders[i])
		case len(orders) > 0:
			dir = strings.ToUpper(orders[len(orders)-1])
		}
		parts = append(parts, col+" "+dir)
		if col == "id" {
			hasID = true
		}
	}
	if len(parts) == 0 {
		parts = []string{defaultListingOrder}
	}
	if !hasID {
		parts = append(parts, "id ASC")
	}
	return strings.Join(parts, ", ")
}

// duplicateOrderBy baut die ORDER-BY-Liste der Duplikaterkennung. Die
// Signatur steht immer vorne, danach die Partition, dann die erlaubten
// Spalten des Aufrufers. Ungültige Richtungen werden zu ASC.
func duplicateOrderBy(sortBy, sortOrder string) string {
	orders := splitList(sortOrder)
	var parts []string
	for i, col := range splitList(sortBy) {
		if !duplicateSortColumns[col] {
			continue
		}
		dir := "ASC"
		if i < len(orders) && strings.EqualFold(orders[i], "desc") {
			dir = "DESC"
		}
		parts = append(parts, col+" "+dir)
	}
	if len(parts) == 0 {
		parts = []string{"id"}
	}
	return "duplicate_key, partition_id, " + strings.Join(parts, ", ")
}
