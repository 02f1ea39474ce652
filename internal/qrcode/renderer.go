// Package qrcode turns an external payment token into something a client
// can display for scanning.
package qrcode

import (
	"encoding/base64"
	"errors"

	goqrcode "github.com/skip2/go-qrcode"
)

const dataURLPrefix = "data:image/png;base64,"

var ErrEmptyToken = errors.New("qrcode: empty token")

// Renderer encodes a token into a renderable code.
type Renderer interface {
	Render(token string) (string, error)
}

type pngRenderer struct {
	size int
}

// NewPNGRenderer returns a Renderer producing PNG data URLs of size pixels.
func NewPNGRenderer(size int) Renderer {
	return &pngRenderer{size: size}
}

func (r *pngRenderer) Render(token string) (string, error) {
	if token == "" {
		return "", ErrEmptyToken
	}

	png, err := goqrcode.Encode(token, goqrcode.Medium, r.size)
	if err != nil {
		return "", err
	}
	return dataURLPrefix + base64.StdEncoding.EncodeToString(png), nil
}
