package sbasset

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/starfall/sbon"
)

func TestMetadata_FullProjection(t *testing.T) {
	t.Parallel()

	a := newTestArchive(t, map[string][]byte{"/a": []byte("x")}, map[string]sbon.Dynamic{
		"name":           sbon.String("cool_mod"),
		"friendlyName":   sbon.String("Cool Mod"),
		"author":         sbon.String("someone"),
		"description":    sbon.String("does cool things"),
		"steamContentId": sbon.String("123456"),
		"tags":           sbon.String("gameplay"),
		"version":        sbon.String("1.2"),
		"link":           sbon.String("https://example.com"),
		"includes":       sbon.List(sbon.String("base")),
		"requires":       sbon.List(sbon.String("core"), sbon.String("lib")),
	})

	meta := a.Metadata()
	assert.Equal(t, "cool_mod", meta.InternalName)
	assert.Equal(t, "Cool Mod", meta.FriendlyName)
	assert.Equal(t, "someone", meta.Author)
	assert.Equal(t, "does cool things", meta.Description)
	assert.Equal(t, "123456", meta.SteamID)
	assert.Equal(t, "gameplay", meta.Tags)
	assert.Equal(t, "1.2", meta.Version)
	assert.Equal(t, "https://example.com", meta.Link)
	assert.Equal(t, []string{"base"}, meta.Includes)
	assert.Equal(t, []string{"core", "lib"}, meta.Requires)
}

func TestMetadata_LenientOnMissingAndMisshaped(t *testing.T) {
	t.Parallel()

	// Wrong shapes degrade to absent instead of failing the open.
	a := newTestArchive(t, map[string][]byte{"/a": []byte("x")}, map[string]sbon.Dynamic{
		"name":     sbon.Int(7),                            // not a string
		"includes": sbon.String("not-a-list"),              // not a list
		"requires": sbon.List(sbon.String("ok"), sbon.Int(1)), // mixed list
	})

	meta := a.Metadata()
	assert.Empty(t, meta.InternalName)
	assert.Empty(t, meta.FriendlyName)
	assert.Nil(t, meta.Includes)
	assert.Nil(t, meta.Requires)
}

func TestMetadata_EmptyMap(t *testing.T) {
	t.Parallel()

	a := newTestArchive(t, map[string][]byte{"/a": []byte("x")}, nil)
	assert.Equal(t, Metadata{}, a.Metadata())
}
