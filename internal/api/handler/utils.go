package handler

import (
	"net/http"
	"strconv"

	"finkiranked/internal/platform/config"
)

func paginationParams(r *http.Request) (page, pageSize int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize <= 0 || pageSize > 100 {
		pageSize = config.DefaultPageSize
	}
	return page, pageSize
}
