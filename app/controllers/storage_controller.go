package controllers

import (
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/emberwick/storefront/pkg/ctx"
	"github.com/emberwick/storefront/pkg/storage"
)

// StorageController streams public files, mainly product imagery, off the
// configured storage disk (local directory or S3).
type StorageController struct{}

func NewStorageController() *StorageController {
	return &StorageController{}
}

// Serve streams the file under the wildcard path.
func (sc *StorageController) Serve(c *ctx.Context) {
	name := strings.TrimPrefix(c.Param("*"), "/")
	if name == "" || strings.Contains(name, "..") {
		c.NotFound()
		return
	}

	stream, err := storage.GetStream(name)
	if err != nil {
		c.NotFound()
		return
	}
	defer stream.Close()

	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		c.SetHeader("Content-Type", ct)
	}
	c.SetHeader("Cache-Control", "public, max-age=3600")
	c.Status(http.StatusOK)
	io.Copy(c.W, stream) //nolint:errcheck
}
