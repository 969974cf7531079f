package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/mydigitalspace/knowledgehub/internal/hub/service"
	"github.com/mydigitalspace/knowledgehub/internal/hub/store"
)

// parsePage validates limit/offset query parameters. Absent values fall back
// to the defaults; present but out-of-range values are a 400.
func parsePage(r *http.Request) (limit, offset int, err error) {
	limit, offset = store.DefaultLimit, 0

	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil || n < 1 || n > store.MaxLimit {
			return 0, 0, &service.ValidationError{Message: "limit must be an integer between 1 and 100"}
		}
		limit = n
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil || n < 0 {
			return 0, 0, &service.ValidationError{Message: "offset must be a non-negative integer"}
		}
		offset = n
	}
	return limit, offset, nil
}

// parseSort validates sort/order against the given allow-list.
func parseSort(r *http.Request, valid func(string) bool) (sort, order string, err error) {
	sort, order = "updated_at", "desc"

	if raw := r.URL.Query().Get("sort"); raw != "" {
		if !valid(raw) {
			return "", "", &service.ValidationError{Message: "Unsupported sort field " + strconv.Quote(raw)}
		}
		sort = raw
	}
	if raw := r.URL.Query().Get("order"); raw != "" {
		if !store.ValidOrder(raw) {
			return "", "", &service.ValidationError{Message: `order must be "asc" or "desc"`}
		}
		order = raw
	}
	return sort, order, nil
}

// splitTags turns a comma-separated tag parameter into a slice, dropping
// empty segments.
func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
