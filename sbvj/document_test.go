package sbvj

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starfall/sbon"
)

func TestReadDocument_NoVersion(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	buf.Write([]byte{0x04, 't', 'e', 's', 't'}) // name
	buf.WriteByte(0x00)                         // flag: no version
	buf.WriteByte(0x01)                         // data: null

	doc, err := ReadDocument(&buf)
	require.NoError(t, err)
	assert.Equal(t, "test", doc.Name)
	assert.Nil(t, doc.Version)
	assert.True(t, doc.Data.IsNull())
}

func TestReadDocument_WithVersion(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	buf.Write([]byte{0x04, 't', 'e', 's', 't'})
	buf.WriteByte(0x01)                         // flag: version present
	buf.Write([]byte{0x00, 0x00, 0x00, 0x2a})   // version 42, big-endian
	buf.Write([]byte{0x05, 0x02, 'h', 'i'})     // data: string "hi"

	doc, err := ReadDocument(&buf)
	require.NoError(t, err)
	assert.Equal(t, "test", doc.Name)
	require.NotNil(t, doc.Version)
	assert.Equal(t, int32(42), *doc.Version)
	assert.True(t, sbon.String("hi").Equal(doc.Data))
}

func TestRead_InvalidMagic(t *testing.T) {
	t.Parallel()

	_, err := Read(bytes.NewReader([]byte("NOTSBV\x01\x00")))
	require.ErrorIs(t, err, ErrInvalidMagic)
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	version := int32(7)
	tests := []struct {
		name string
		doc  Document
	}{
		{"versioned", Document{
			Name:    "PlayerEntity",
			Version: &version,
			Data: sbon.Map(map[string]sbon.Dynamic{
				"uuid":   sbon.String("abc-123"),
				"health": sbon.Double(100),
				"items":  sbon.List(sbon.Int(1), sbon.Null()),
			}),
		}},
		{"unversioned", Document{
			Name: "ClientContext",
			Data: sbon.List(sbon.Bool(true)),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			require.NoError(t, Write(&buf, &tt.doc))

			got, err := Read(&buf)
			require.NoError(t, err)
			assert.Equal(t, tt.doc.Name, got.Name)
			if tt.doc.Version == nil {
				assert.Nil(t, got.Version)
			} else {
				require.NotNil(t, got.Version)
				assert.Equal(t, *tt.doc.Version, *got.Version)
			}
			assert.True(t, tt.doc.Data.Equal(got.Data))
		})
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	doc := Document{Name: "World", Data: sbon.String("payload")}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, &doc))

	path := filepath.Join(t.TempDir(), "test.world")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	got, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "World", got.Name)
	assert.True(t, doc.Data.Equal(got.Data))
}
