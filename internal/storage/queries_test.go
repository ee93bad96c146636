package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStats_IdentifierWhitelist(t *testing.T) {
	db := &DB{}

	_, err := db.Stats("users", "average_speed")
	assert.ErrorContains(t, err, "unknown table")

	_, err = db.Stats("traffic_state", "congestion_level")
	assert.ErrorContains(t, err, "unknown column")

	_, err = db.Stats("traffic_state", "average_speed; DROP TABLE traffic_state")
	assert.ErrorContains(t, err, "unknown column")
}
