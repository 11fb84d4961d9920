package services

import (
	"context"

	"reception-dedup/storage"
)

// Store ist die schmale Schnittstelle zur Datenbank. Platzhalter sind "?",
// Slices werden für "IN ?" expandiert. Jede Operation holt sich ihre
// Verbindung aus dem Pool und gibt sie danach wieder frei.
type Store interface {
	Query(ctx context.Context, query string, args ...any) (storage.Rows, error)
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	Ping(ctx context.Context) error
}
