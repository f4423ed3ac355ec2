package service

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

var (
	pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	gifHeader = []byte("GIF89a\x01\x00\x01\x00")
	jpgHeader = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00")
)

func upload(name string, content []byte) *LogoUpload {
	return &LogoUpload{Filename: name, Size: int64(len(content)), Content: bytes.NewReader(content)}
}

func TestCheckLogo_Accepts(t *testing.T) {
	testCases := []struct {
		name    string
		file    string
		content []byte
		wantExt string
	}{
		{"png", "logo.png", pngHeader, ".png"},
		{"gif", "logo.gif", gifHeader, ".gif"},
		{"jpg", "logo.jpg", jpgHeader, ".jpg"},
		{"jpeg upper ext", "LOGO.JPEG", jpgHeader, ".jpeg"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ext, r, err := checkLogo(upload(tc.file, tc.content))
			if err != nil {
				t.Fatalf("checkLogo: %v", err)
			}
			if ext != tc.wantExt {
				t.Errorf("ext = %q, want %q", ext, tc.wantExt)
			}
			got, err := io.ReadAll(r)
			if err != nil {
				t.Fatalf("ReadAll: %v", err)
			}
			if !bytes.Equal(got, tc.content) {
				t.Error("returned reader does not replay the full content")
			}
		})
	}
}

func TestCheckLogo_Rejects(t *testing.T) {
	testCases := []struct {
		name string
		in   *LogoUpload
		want string
	}{
		{"empty", upload("logo.png", nil), MsgLogoEmpty},
		{"pdf extension", upload("logo.pdf", pngHeader), MsgLogoType},
		{"no extension", upload("logo", pngHeader), MsgLogoType},
		{"text disguised as png", upload("logo.png", []byte(strings.Repeat("hello ", 10))), MsgLogoType},
		{"too large", &LogoUpload{Filename: "logo.png", Size: MaxLogoSize + 1, Content: bytes.NewReader(pngHeader)}, MsgLogoTooLarge},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := checkLogo(tc.in)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
			msgs := ValidationMessages(err)
			if len(msgs) != 1 || msgs[0] != tc.want {
				t.Errorf("messages = %v, want [%q]", msgs, tc.want)
			}
		})
	}
}

func TestCheckLogo_ExactlyMaxSizeAllowed(t *testing.T) {
	content := append(append([]byte{}, pngHeader...), make([]byte, MaxLogoSize-len(pngHeader))...)
	_, r, err := checkLogo(upload("logo.png", content))
	if err != nil {
		t.Fatalf("checkLogo: %v", err)
	}
	n, _ := io.Copy(io.Discard, r)
	if n != MaxLogoSize {
		t.Errorf("read %d bytes, want %d", n, MaxLogoSize)
	}
}
