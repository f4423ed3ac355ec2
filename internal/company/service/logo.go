package service

import (
	"bytes"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

// MaxLogoSize is the largest accepted logo upload.
const MaxLogoSize = 5 << 20

// Logo rule messages.
const (
	MsgLogoEmpty    = "No file provided"
	MsgLogoType     = "Invalid file type. Only JPG, JPEG, PNG, and GIF are allowed."
	MsgLogoTooLarge = "File size too large. Maximum size is 5MB."
)

var logoExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true}

var logoContentTypes = map[string]bool{"image/jpeg": true, "image/png": true, "image/gif": true}

// LogoUpload is an uploaded logo file as received from the client.
type LogoUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// checkLogo validates extension, size and sniffed content type. On success it returns the
// lowercased extension and a reader that replays the full content.
func checkLogo(l *LogoUpload) (string, io.Reader, error) {
	if l.Size <= 0 || l.Content == nil {
		return "", nil, invalid(MsgLogoEmpty)
	}
	ext := strings.ToLower(filepath.Ext(l.Filename))
	if !logoExtensions[ext] {
		return "", nil, invalid(MsgLogoType)
	}
	if l.Size > MaxLogoSize {
		return "", nil, invalid(MsgLogoTooLarge)
	}
	head := make([]byte, 512)
	n, err := io.ReadFull(l.Content, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", nil, err
	}
	head = head[:n]
	if !logoContentTypes[http.DetectContentType(head)] {
		return "", nil, invalid(MsgLogoType)
	}
	rest := io.LimitReader(l.Content, MaxLogoSize-int64(n))
	return ext, io.MultiReader(bytes.NewReader(head), rest), nil
}
