package router

import (
	"net/http"
	"net/url"
	"strconv"
)

func absoluteURL(r *http.Request, path string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	return scheme + "://" + r.Host + path
}

func categoryURL(r *http.Request, slug string) string {
	return absoluteURL(r, "/categories/"+url.PathEscape(slug))
}

func transactionURL(r *http.Request, id int64) string {
	return absoluteURL(r, "/transactions/"+strconv.FormatInt(id, 10))
}

func uploadURL(r *http.Request, id int64) string {
	return absoluteURL(r, "/uploads/"+strconv.FormatInt(id, 10))
}

func uploadSummaryURL(r *http.Request, id int64) string {
	return uploadURL(r, id) + "/summary"
}
