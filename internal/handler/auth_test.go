package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOldEnough(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	assert.True(t, oldEnough(time.Date(2013, 8, 31, 0, 0, 0, 0, time.UTC), now), "13th birthday passes")
	assert.True(t, oldEnough(time.Date(2010, 1, 15, 0, 0, 0, 0, time.UTC), now))
	assert.False(t, oldEnough(time.Date(2013, 9, 1, 0, 0, 0, 0, time.UTC), now), "one day short")

	// Three leap days sit between 2012 and 2025; a day count of 13*365
	// would wrongly admit this birth date.
	almost := time.Date(2012, 3, 1, 0, 0, 0, 0, time.UTC)
	at := time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)
	assert.False(t, oldEnough(almost, at))
	assert.True(t, oldEnough(almost, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))
}
