package seeding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

func TestLoadCatalog(t *testing.T) {
	c, err := LoadCatalog()
	require.NoError(t, err)

	assert.Len(t, c.Properties, 15)
	assert.Len(t, c.Blogs, 5)
	assert.NotEmpty(t, c.Categories)
	assert.Equal(t, "Sec 16B, Greater Noida West", c.Location)
	assert.InDelta(t, 28.5961, c.Coordinates.Lat, 1e-9)

	ids := map[string]bool{}
	for _, p := range c.Properties {
		assert.False(t, ids[p.ID], "duplicate seed id %s", p.ID)
		ids[p.ID] = true
		assert.NotEmpty(t, p.Images)
	}

	slugs := map[string]bool{}
	for _, b := range c.Blogs {
		s := utils.Slugify(b.Title)
		assert.False(t, slugs[s], "duplicate blog slug %s", s)
		slugs[s] = true
	}
}
