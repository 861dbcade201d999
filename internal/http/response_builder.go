// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for redirects and error
// responses, and the flash cookie that carries a message across a redirect.

package http

import (
	"encoding/base64"
	"html/template"
	"net/http"
	"strings"
)

// FlashKind selects the alert style of a flash message.
type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "danger"
	FlashInfo    FlashKind = "info"
)

const flashCookieName = "mt_flash"

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Kind    FlashKind
	Message string
}

func setFlash(w http.ResponseWriter, f Flash) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    string(f.Kind) + "." + base64.RawURLEncoding.EncodeToString([]byte(f.Message)),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// takeFlash reads and clears the flash cookie. Malformed values are dropped.
func takeFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	kind, encoded, ok := strings.Cut(cookie.Value, ".")
	if !ok {
		return nil
	}
	msg, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil || len(msg) == 0 {
		return nil
	}
	switch k := FlashKind(kind); k {
	case FlashSuccess, FlashError, FlashInfo:
		return &Flash{Kind: k, Message: string(msg)}
	}
	return nil
}

// ResponseBuilder provides a fluent API for building non-page responses.
type ResponseBuilder struct {
	statusCode int
	body       []byte
	headers    map[string]string
	flash      *Flash
	location   string
}

// NewResponse creates a new response builder with default 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the response body as bytes.
func (b *ResponseBuilder) Body(content []byte) *ResponseBuilder {
	b.body = content
	return b
}

// BodyString sets the response body as a string.
func (b *ResponseBuilder) BodyString(content string) *ResponseBuilder {
	b.body = []byte(content)
	return b
}

// BodyHTML sets the response body as HTML content.
func (b *ResponseBuilder) BodyHTML(html string) *ResponseBuilder {
	b.headers["Content-Type"] = "text/html; charset=utf-8"
	b.body = []byte(html)
	return b
}

// Flash attaches a message for the next page.
func (b *ResponseBuilder) Flash(kind FlashKind, message string) *ResponseBuilder {
	b.flash = &Flash{Kind: kind, Message: message}
	return b
}

func (b *ResponseBuilder) Success(message string) *ResponseBuilder {
	return b.Flash(FlashSuccess, message)
}

func (b *ResponseBuilder) Error(message string) *ResponseBuilder {
	return b.Flash(FlashError, message)
}

// Redirect turns the response into a 303 See Other to location.
func (b *ResponseBuilder) Redirect(location string) *ResponseBuilder {
	b.location = location
	b.statusCode = http.StatusSeeOther
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *ResponseBuilder) Write(w http.ResponseWriter, r *http.Request) {
	if b.flash != nil {
		setFlash(w, *b.flash)
	}
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.location != "" {
		http.Redirect(w, r, b.location, b.statusCode)
		return
	}

	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse creates a standard error response with HTML formatting.
// The message is HTML-escaped for safety.
func ErrorResponse(statusCode int, message string) *ResponseBuilder {
	escapedMsg := template.HTMLEscapeString(message)
	return NewResponse().
		Status(statusCode).
		BodyHTML(`<div class="alert alert-danger">` + escapedMsg + `</div>`)
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}
