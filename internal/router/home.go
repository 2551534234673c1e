package router

import "net/http"

func (router *router) homeHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"categories":          absoluteURL(r, "/categories"),
		"transactions":        absoluteURL(r, "/transactions"),
		"transactions_upload": absoluteURL(r, "/uploads"),
	})
}
