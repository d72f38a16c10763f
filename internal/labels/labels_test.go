package labels

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techcrew/internal/models"
)

func TestEncodeDecode(t *testing.T) {
	g := NewGenerator("secret")
	p := Payload{ItemID: "item-1", Model: "Shure SM58", Category: "Vocal Mics"}

	a, err := g.Encode(p)
	require.NoError(t, err)
	b, err := g.Encode(p)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	got, err := g.Decode(a)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestDecodeRejects(t *testing.T) {
	g := NewGenerator("secret")
	text, err := g.Encode(Payload{ItemID: "item-1", Model: "x"})
	require.NoError(t, err)

	_, err = NewGenerator("other").Decode(text)
	assert.ErrorIs(t, err, ErrBadLabel)

	_, err = g.Decode("not base64!")
	assert.ErrorIs(t, err, ErrBadLabel)

	_, err = g.Decode("")
	assert.ErrorIs(t, err, ErrBadLabel)
}

func TestDecodeRejectsTampering(t *testing.T) {
	g := NewGenerator("secret")
	text, err := g.Encode(Payload{ItemID: "item-1", Model: "SM58"})
	require.NoError(t, err)
	raw, err := base64.RawURLEncoding.DecodeString(text)
	require.NoError(t, err)

	for _, i := range []int{0, len(raw) / 2, len(raw) - 1} {
		flipped := bytes.Clone(raw)
		flipped[i] ^= 0x01
		_, err := g.Decode(base64.RawURLEncoding.EncodeToString(flipped))
		assert.ErrorIs(t, err, ErrBadLabel, "byte %d", i)
	}

	_, err = g.Decode(base64.RawURLEncoding.EncodeToString(raw[:10]))
	assert.ErrorIs(t, err, ErrBadLabel)
}

func TestPNG(t *testing.T) {
	g := NewGenerator("secret")
	png, err := g.PNG(models.InventoryItem{ID: "item-1", Model: "XLR 25ft", Category: &models.InventoryCategory{Name: "Cables"}})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}
