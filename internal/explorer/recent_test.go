package explorer_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rshade/dircache/internal/explorer"
)

func TestRecent_MostRecentFirst(t *testing.T) {
	ex := explorer.New(newCache(t))

	assert.Empty(t, ex.Recent())

	ex.Touch("/a")
	ex.Touch("/b")
	ex.Touch("/c/")
	ex.Touch("/a")

	assert.Equal(t, []string{"/a", "/c", "/b"}, ex.Recent())
}

func TestRecent_Bounded(t *testing.T) {
	ex := explorer.New(newCache(t))

	for i := range explorer.MaxRecent + 5 {
		ex.Touch(fmt.Sprintf("/dir%d", i))
	}

	recent := ex.Recent()
	assert.Len(t, recent, explorer.MaxRecent)
	assert.Equal(t, fmt.Sprintf("/dir%d", explorer.MaxRecent+4), recent[0])
}
