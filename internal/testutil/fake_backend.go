// fake_backend.go - In-process stand-in for the remote analysis backend
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// Request is a call recorded by FakeBackend
type Request struct {
	Method string
	Path   string
	Query  map[string]string
	Files  []string // multipart file names, in order
}

// Reply is a canned response
type Reply struct {
	Status int
	Body   interface{} // encoded as JSON unless it is a string
	Delay  time.Duration
}

// FakeBackend records requests and answers them from a route table
type FakeBackend struct {
	Server *httptest.Server

	mu       sync.Mutex
	replies  map[string]Reply
	requests []Request
}

// NewFakeBackend starts a fake backend that is closed with the test
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	fb := &FakeBackend{replies: make(map[string]Reply)}
	fb.Server = httptest.NewServer(http.HandlerFunc(fb.serve))
	t.Cleanup(fb.Server.Close)
	return fb
}

// URL returns the API base URL of the fake backend
func (fb *FakeBackend) URL() string {
	return fb.Server.URL + "/api"
}

// On sets the reply for "METHOD /path" (path relative to /api)
func (fb *FakeBackend) On(method, path string, reply Reply) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.replies[method+" "+path] = reply
}

// Requests returns the calls received so far
func (fb *FakeBackend) Requests() []Request {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]Request(nil), fb.requests...)
}

func (fb *FakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	rec := Request{Method: r.Method, Path: r.URL.Path, Query: make(map[string]string)}
	for k := range r.URL.Query() {
		rec.Query[k] = r.URL.Query().Get(k)
	}
	if err := r.ParseMultipartForm(32 << 20); err == nil {
		for _, headers := range r.MultipartForm.File {
			for _, h := range headers {
				rec.Files = append(rec.Files, h.Filename)
			}
		}
	}

	fb.mu.Lock()
	fb.requests = append(fb.requests, rec)
	reply, ok := fb.replies[r.Method+" "+trimAPI(r.URL.Path)]
	fb.mu.Unlock()

	if !ok {
		http.Error(w, "no route", http.StatusNotFound)
		return
	}
	if reply.Delay > 0 {
		time.Sleep(reply.Delay)
	}
	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	if s, isString := reply.Body.(string); isString {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(status)
		w.Write([]byte(s))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if reply.Body != nil {
		json.NewEncoder(w).Encode(reply.Body)
	}
}

func trimAPI(path string) string {
	if len(path) >= 4 && path[:4] == "/api" {
		return path[4:]
	}
	return path
}
