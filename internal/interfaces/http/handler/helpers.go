package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/shopcart/backend/internal/application/catalog"
	"github.com/shopspring/decimal"
)

// imageField is the multipart field carrying an uploaded image
const imageField = "image"

var errImageTooLarge = errors.New("image exceeds maximum allowed size")

// isMultipart reports whether the request body is multipart/form-data
func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// readImageUpload returns the uploaded image of a multipart request, or nil
// when the request carries none
func readImageUpload(c *gin.Context, maxSize int64) (*catalogapp.ImageUpload, error) {
	if !isMultipart(c) {
		return nil, nil
	}

	header, err := c.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if maxSize > 0 && header.Size > maxSize {
		return nil, errImageTooLarge
	}

	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := io.Reader(file)
	if maxSize > 0 {
		reader = io.LimitReader(file, maxSize+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return nil, errImageTooLarge
	}

	return &catalogapp.ImageUpload{Filename: header.Filename, Data: data}, nil
}

// toDecimalPtr parses a bound numeric field. The binding layer has already
// rejected malformed values.
func toDecimalPtr(n *json.Number) (*decimal.Decimal, error) {
	if n == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return nil, fmt.Errorf("parse decimal %q: %w", n.String(), err)
	}
	return &d, nil
}

// parseDecimalQuery parses an optional decimal query value
func parseDecimalQuery(s string) *decimal.Decimal {
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}

// parseUUIDPtr parses an optional UUID string
func parseUUIDPtr(s *string) *uuid.UUID {
	if s == nil || *s == "" {
		return nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil
	}
	return &id
}

// parseBoolQuery parses an optional boolean query value
func parseBoolQuery(s string) *bool {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil
	}
	return &v
}
