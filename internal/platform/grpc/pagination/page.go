// Package pagination normalizes page sizes and offset page tokens for list RPCs.
package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// PageSizeConfig configures page size normalization.
type PageSizeConfig struct {
	Default int
	Max     int
}

// ClampPageSize applies defaults and limits for page sizes.
func ClampPageSize(value int32, cfg PageSizeConfig) int {
	pageSize := int(value)
	if pageSize <= 0 {
		pageSize = cfg.Default
	}
	if cfg.Max > 0 && pageSize > cfg.Max {
		pageSize = cfg.Max
	}
	if pageSize <= 0 {
		pageSize = 1
	}
	return pageSize
}

const offsetPrefix = "offset:"

// EncodeOffset returns an opaque token pointing at offset.
func EncodeOffset(offset int) string {
	if offset <= 0 {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString([]byte(offsetPrefix + strconv.Itoa(offset)))
}

// DecodeOffset parses a token produced by EncodeOffset. An empty token is
// offset zero.
func DecodeOffset(token string) (int, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0, fmt.Errorf("decode page token: %w", err)
	}
	value, ok := strings.CutPrefix(string(raw), offsetPrefix)
	if !ok {
		return 0, fmt.Errorf("page token has no offset")
	}
	offset, err := strconv.Atoi(value)
	if err != nil || offset < 0 {
		return 0, fmt.Errorf("page token offset %q is invalid", value)
	}
	return offset, nil
}

// Window returns the [start, end) bounds of one page over total items and the
// offset of the next page, or zero when the page is the last one.
func Window(total, offset, pageSize int) (start, end, next int) {
	start = min(max(offset, 0), total)
	end = min(start+pageSize, total)
	if end < total {
		next = end
	}
	return start, end, next
}
