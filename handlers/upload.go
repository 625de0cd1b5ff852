package handlers

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lsb-steganography/stego"
)

const fileField = "file"

// Upload is a carrier saved to a uniquely named temp file. Remove must be
// called once the request is done with it.
type Upload struct {
	Path     string
	Filename string
	Mimetype string
}

func (u *Upload) Remove() {
	if u == nil || u.Path == "" {
		return
	}
	if err := os.Remove(u.Path); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to remove upload %s: %v", u.Path, err)
	}
}

// saveUpload copies the multipart file into dir and resolves its mimetype:
// the declared form value first, then the part's Content-Type, then sniffing.
func saveUpload(c *gin.Context, dir, declared string) (*Upload, error) {
	header, err := c.FormFile(fileField)
	if err != nil {
		return nil, fmt.Errorf("carrier file is required")
	}

	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	upload := &Upload{
		Path:     filepath.Join(dir, uuid.New().String()+filepath.Ext(header.Filename)),
		Filename: filepath.Base(header.Filename),
	}

	dst, err := os.OpenFile(upload.Path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		upload.Remove()
		return nil, fmt.Errorf("failed to store uploaded file: %w", err)
	}
	if err := dst.Close(); err != nil {
		upload.Remove()
		return nil, fmt.Errorf("failed to store uploaded file: %w", err)
	}

	upload.Mimetype = resolveMimetype(declared, header, upload.Path)
	return upload, nil
}

func resolveMimetype(declared string, header *multipart.FileHeader, path string) string {
	if declared != "" {
		return stego.NormalizeMimetype(declared)
	}
	if ct := header.Header.Get("Content-Type"); !isGenericContentType(ct) {
		return stego.NormalizeMimetype(ct)
	}
	if mt, err := mimetype.DetectFile(path); err == nil {
		return stego.NormalizeMimetype(mt.String())
	}
	return ""
}

func isGenericContentType(ct string) bool {
	ct = stego.NormalizeMimetype(ct)
	return ct == "" || ct == "application/octet-stream" || strings.HasPrefix(ct, "multipart/")
}
