package httpkit

import (
	"net/http"

	phttp "allocvault/internal/platform/net/http"
)

// PostJSON mounts a bound and validated JSON handler under POST answering 200
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Post(path, phttp.JSONHandler(http.StatusOK, h))
}

// CreateJSON mounts a bound and validated JSON handler under POST answering 201
func CreateJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Post(path, phttp.JSONHandler(http.StatusCreated, h))
}

// Get registers a body-less GET handler
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, Call(h))
}

// Post registers a body-less POST handler
func Post(r Router, path string, h func(*http.Request) (any, error)) {
	r.Post(path, Call(h))
}
