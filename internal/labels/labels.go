// Package labels renders QR stickers for inventory items. The payload is
// sealed with AES-GCM so a label only reveals the item to holders of the
// key and cannot be forged without it.
package labels

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/skip2/go-qrcode"

	"techcrew/internal/models"
)

const DefaultSize = 256

var ErrBadLabel = errors.New("label payload cannot be read")

// Payload is what a label encodes.
type Payload struct {
	ItemID   string `json:"item_id"`
	Model    string `json:"model"`
	Category string `json:"category,omitempty"`
}

func PayloadFor(item models.InventoryItem) Payload {
	return Payload{ItemID: item.ID, Model: item.Model, Category: item.CategoryName()}
}

type Generator struct {
	key  []byte
	size int
}

func NewGenerator(secret string) *Generator {
	hashed := sha256.Sum256([]byte(secret))
	return &Generator{key: hashed[:], size: DefaultSize}
}

// Encode returns the sealed, URL-safe text a label carries: an AES-GCM
// nonce followed by the ciphertext.
func (g *Generator) Encode(p Payload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	aead, err := g.aead()
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(data)+aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(aead.Seal(nonce, nonce, data, nil)), nil
}

// Decode reverses Encode. Text sealed under another key or altered in
// any way fails with ErrBadLabel.
func (g *Generator) Decode(text string) (Payload, error) {
	var p Payload
	aead, err := g.aead()
	if err != nil {
		return p, err
	}
	raw, err := base64.RawURLEncoding.DecodeString(text)
	if err != nil || len(raw) < aead.NonceSize()+aead.Overhead() {
		return p, ErrBadLabel
	}
	nonce, sealed := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	data, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return p, ErrBadLabel
	}
	if err := json.Unmarshal(data, &p); err != nil || p.ItemID == "" {
		return Payload{}, ErrBadLabel
	}
	return p, nil
}

func (g *Generator) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(g.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// PNG renders the label for item.
func (g *Generator) PNG(item models.InventoryItem) ([]byte, error) {
	text, err := g.Encode(PayloadFor(item))
	if err != nil {
		return nil, fmt.Errorf("encode label %s: %w", item.ID, err)
	}
	return qrcode.Encode(text, qrcode.Medium, g.size)
}
