package testutil

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

// Visitor is a browser-like client: it keeps cookies, does not follow redirects and sends
// the session's CSRF token on posts.
type Visitor struct {
	t      testing.TB
	base   string
	client *http.Client
	csrf   string
}

// Response is a fully read HTTP response.
type Response struct {
	*http.Response
	Body []byte
}

// Doc parses the body as HTML.
func (r *Response) Doc(t testing.TB) *goquery.Document {
	t.Helper()
	return ParseHTML(t, r.Body)
}

// Location returns the redirect target from Location or HX-Redirect.
func (r *Response) Location() string {
	if loc := r.Header.Get("HX-Redirect"); loc != "" {
		return loc
	}
	return r.Header.Get("Location")
}

// NewVisitor returns a visitor for ts with an empty cookie jar.
func NewVisitor(t testing.TB, ts *httptest.Server) *Visitor {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	client := ts.Client()
	client.Jar = jar
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &Visitor{t: t, base: ts.URL, client: client}
}

// Get issues a plain GET.
func (v *Visitor) Get(path string) *Response {
	v.t.Helper()
	return v.Do(http.MethodGet, path, nil, nil)
}

// HTMXGet issues a GET the way htmx does, targeting the element with id target.
func (v *Visitor) HTMXGet(path, target string) *Response {
	v.t.Helper()
	header := http.Header{"HX-Request": {"true"}}
	if target != "" {
		header.Set("HX-Target", target)
	}
	return v.Do(http.MethodGet, path, nil, header)
}

// Post submits form with the session's CSRF token, as a plain browser form post.
func (v *Visitor) Post(path string, form url.Values) *Response {
	v.t.Helper()
	return v.Do(http.MethodPost, path, v.withToken(form), nil)
}

// HTMXPost submits form as htmx does, carrying the token in the X-CSRFToken header.
func (v *Visitor) HTMXPost(path string, form url.Values) *Response {
	v.t.Helper()
	header := http.Header{"HX-Request": {"true"}, "X-CSRFToken": {v.CSRF()}}
	return v.Do(http.MethodPost, path, form, header)
}

// File is one part of a multipart upload.
type File struct {
	Field       string
	Name        string
	ContentType string
	Data        []byte
}

// HTMXUpload posts fields and files as multipart/form-data the way htmx does with
// hx-encoding="multipart/form-data".
func (v *Visitor) HTMXUpload(path string, fields url.Values, files ...File) *Response {
	v.t.Helper()

	var buf bytes.Buffer
	mpw := multipart.NewWriter(&buf)
	for k, vals := range fields {
		for _, val := range vals {
			if err := mpw.WriteField(k, val); err != nil {
				v.t.Fatalf("write field %s: %v", k, err)
			}
		}
	}
	for _, f := range files {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Name))
		header.Set("Content-Type", f.ContentType)
		part, err := mpw.CreatePart(header)
		if err != nil {
			v.t.Fatalf("create part %s: %v", f.Name, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			v.t.Fatalf("write part %s: %v", f.Name, err)
		}
	}
	if err := mpw.Close(); err != nil {
		v.t.Fatalf("close multipart: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, v.base+path, &buf)
	if err != nil {
		v.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mpw.FormDataContentType())
	req.Header.Set("HX-Request", "true")
	req.Header.Set("X-CSRFToken", v.CSRF())
	return v.send(req)
}

// Do sends a request and reads the whole response.
func (v *Visitor) Do(method, path string, form url.Values, header http.Header) *Response {
	v.t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, v.base+path, body)
	if err != nil {
		v.t.Fatalf("new request: %v", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, vals := range header {
		for _, val := range vals {
			req.Header.Add(k, val)
		}
	}
	return v.send(req)
}

func (v *Visitor) send(req *http.Request) *Response {
	v.t.Helper()
	resp, err := v.client.Do(req)
	if err != nil {
		v.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		v.t.Fatalf("read %s: %v", req.URL.Path, err)
	}
	return &Response{Response: resp, Body: data}
}

// CSRF returns the session's token, loading the login page to obtain one if needed.
func (v *Visitor) CSRF() string {
	v.t.Helper()
	if v.csrf != "" {
		return v.csrf
	}
	resp := v.Get("/login/")
	token := CSRFToken(resp.Doc(v.t))
	if token == "" {
		v.t.Fatalf("no csrf token on /login/ (status %d)", resp.StatusCode)
	}
	v.csrf = token
	return token
}

// Login signs in through the login form.
func (v *Visitor) Login(username, password string) *Response {
	v.t.Helper()
	resp := v.Post("/login/", url.Values{"username": {username}, "password": {password}})
	if resp.StatusCode != http.StatusSeeOther {
		v.t.Fatalf("login as %s: status %d", username, resp.StatusCode)
	}
	return resp
}

// ContinueAsGuest starts a guest cart holding productID.
func (v *Visitor) ContinueAsGuest(productID int) *Response {
	v.t.Helper()
	resp := v.Post("/guest/continue", url.Values{"product_id": {strconv.Itoa(productID)}, "quantity": {"1"}})
	if resp.StatusCode != http.StatusSeeOther {
		v.t.Fatalf("continue as guest: status %d", resp.StatusCode)
	}
	return resp
}

func (v *Visitor) withToken(form url.Values) url.Values {
	out := url.Values{}
	for k, vals := range form {
		out[k] = append([]string(nil), vals...)
	}
	out.Set("csrf_token", v.CSRF())
	return out
}
