package postgres

import "github.com/google/uuid"

// uuidStrings converts ids for use with pq.Array and a ::uuid[] cast.
func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
