package bloxs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

const sessionCookie = "ASP.NET_SessionId"

// fakeBloxs is an in-process stand-in for the accounting service. Handlers receive the
// parsed form and return (status, JSON body).
type fakeBloxs struct {
	t        *testing.T
	srv      *httptest.Server
	mu       sync.Mutex
	calls    []string
	forms    map[string]url.Values
	handlers map[string]func(form url.Values) (int, any)
	raw      map[string]http.HandlerFunc
}

func newFakeBloxs(t *testing.T) *fakeBloxs {
	t.Helper()
	f := &fakeBloxs{
		t:        t,
		forms:    make(map[string]url.Values),
		handlers: make(map[string]func(url.Values) (int, any)),
		raw:      make(map[string]http.HandlerFunc),
	}
	f.handle(endpointLogin, func(form url.Values) (int, any) {
		if form.Get("Username") == "user" && form.Get("Password") == "secret" {
			return http.StatusOK, map[string]bool{"success": true}
		}
		return http.StatusUnauthorized, map[string]string{"error": "bad credentials"}
	})
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeBloxs) handle(endpoint string, h func(url.Values) (int, any)) {
	f.handlers[endpoint] = h
}

func (f *fakeBloxs) respond(endpoint string, status int, body any) {
	f.handle(endpoint, func(url.Values) (int, any) { return status, body })
}

func (f *fakeBloxs) serve(w http.ResponseWriter, r *http.Request) {
	endpoint := strings.TrimPrefix(r.URL.Path, "/api/")

	var form url.Values
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			f.t.Errorf("parse multipart: %v", err)
		}
		form = r.MultipartForm.Value
	} else {
		if err := r.ParseForm(); err != nil {
			f.t.Errorf("parse form: %v", err)
		}
		form = r.PostForm
	}

	f.mu.Lock()
	f.calls = append(f.calls, endpoint)
	f.forms[endpoint] = form
	f.mu.Unlock()

	if endpoint != endpointLogin {
		if _, err := r.Cookie(sessionCookie); err != nil {
			w.WriteHeader(http.StatusForbidden)
			return
		}
	}

	if raw, ok := f.raw[endpoint]; ok {
		raw(w, r)
		return
	}

	h, ok := f.handlers[endpoint]
	if !ok {
		http.NotFound(w, r)
		return
	}
	status, body := h(form)
	if endpoint == endpointLogin && status == http.StatusOK {
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "s3ss10n-token", Path: "/"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (f *fakeBloxs) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBloxs) form(endpoint string) url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.forms[endpoint]
}

// client returns a logged-in client against the fake.
func (f *fakeBloxs) client() *Client {
	f.t.Helper()
	c, err := NewClient(f.srv.URL+"/api", nil, nil)
	if err != nil {
		f.t.Fatalf("NewClient: %v", err)
	}
	if err := c.Login(context.Background(), "user", "secret"); err != nil {
		f.t.Fatalf("Login: %v", err)
	}
	return c
}

func items(pairs ...any) []map[string]any {
	var out []map[string]any
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, map[string]any{"ID": pairs[i], "Name": pairs[i+1]})
	}
	return out
}
