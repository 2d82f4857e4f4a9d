package rest

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/libertalk/internal/common"
	"github.com/dmitrijs2005/libertalk/internal/server/media"
	"github.com/dmitrijs2005/libertalk/internal/server/models"
	"github.com/gin-gonic/gin"
)

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// saveUpload stores the multipart file in field. A missing file yields
// (nil, nil) unless required.
func (s *HTTPServer) saveUpload(c *gin.Context, field string, kind media.Kind, required bool) (*models.Attachment, error) {
	file, header, err := c.Request.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		if required {
			return nil, fmt.Errorf("%w: missing %s upload", common.ErrorInvalidPayload, field)
		}
		return nil, nil
	}
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, common.ErrorTooLarge
		}
		return nil, fmt.Errorf("%w: %s upload: %v", common.ErrorInvalidPayload, field, err)
	}
	defer file.Close()

	if header.Size > s.maxUploadSize {
		return nil, fmt.Errorf("%w: %d bytes", common.ErrorTooLarge, header.Size)
	}

	data, err := io.ReadAll(io.LimitReader(file, s.maxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	return s.media.Save(c.Request.Context(), kind, header.Filename, data)
}

// discard removes uploads whose owning request failed afterwards.
func (s *HTTPServer) discard(c *gin.Context, paths ...string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := s.media.Delete(c.Request.Context(), path); err != nil {
			s.logger.Warn(c.Request.Context(), "orphaned upload", "path", path, "error", err)
		}
	}
}

// uploadedPaths lists the stored files a payload refers to.
func uploadedPaths(payload models.Payload) []string {
	switch p := payload.(type) {
	case models.TextPayload:
		if p.File != nil {
			return []string{p.File.Path}
		}
	case models.VoicePayload:
		return []string{p.Path}
	}
	return nil
}
