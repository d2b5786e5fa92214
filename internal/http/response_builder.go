// Package http serves the ledger dashboard: the entry form, the period
// filter, the report partial, the chart image and the document downloads.
//
// Responses go through a small builder so HX-Trigger events, headers and
// bodies are written in one place and in the right order.
package http

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
)

// EventEntryRecorded is the HX-Trigger event fired after a successful submit.
const EventEntryRecorded = "entry:recorded"

type notificationLevel string

const notifySuccess notificationLevel = "success"

// HTMXResponseBuilder collects status, headers, HX-Trigger events and body.
type HTMXResponseBuilder struct {
	status   int
	header   http.Header
	triggers map[string]any
	body     []byte
}

func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		status:   http.StatusOK,
		header:   make(http.Header),
		triggers: make(map[string]any),
	}
}

func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.status = code
	return b
}

func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	b.header.Set(name, value)
	return b
}

// Trigger adds an event to HX-Trigger; data becomes event.detail.
func (b *HTMXResponseBuilder) Trigger(name string, data any) *HTMXResponseBuilder {
	b.triggers[name] = data
	return b
}

// TriggerEntryRecorded carries the period of the new entry so the page can
// refresh the matching report.
func (b *HTMXResponseBuilder) TriggerEntryRecorded(year, month int) *HTMXResponseBuilder {
	return b.Trigger(EventEntryRecorded, map[string]int{"year": year, "month": month})
}

func (b *HTMXResponseBuilder) TriggerFormReset() *HTMXResponseBuilder {
	return b.Trigger("form:reset", struct{}{})
}

func (b *HTMXResponseBuilder) notify(level notificationLevel, message string, durationMs int) *HTMXResponseBuilder {
	return b.Trigger("show-notification", map[string]any{
		"type":     string(level),
		"message":  message,
		"duration": durationMs,
	})
}

func (b *HTMXResponseBuilder) TriggerSuccessNotification(message string) *HTMXResponseBuilder {
	return b.notify(notifySuccess, message, 3000)
}

// HTML sets an HTML body.
func (b *HTMXResponseBuilder) HTML(html string) *HTMXResponseBuilder {
	b.header.Set("Content-Type", "text/html; charset=utf-8")
	b.body = []byte(html)
	return b
}

// Blob sets a binary body of the given type.
func (b *HTMXResponseBuilder) Blob(contentType string, data []byte) *HTMXResponseBuilder {
	b.header.Set("Content-Type", contentType)
	b.body = data
	return b
}

// Attachment marks the body as a download named filename.
func (b *HTMXResponseBuilder) Attachment(filename string) *HTMXResponseBuilder {
	b.header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	return b
}

// Write sends headers, then status, then body. An HX-Trigger that cannot
// be encoded is dropped.
func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	h := w.Header()
	for name, values := range b.header {
		h[name] = values
	}
	if len(b.triggers) > 0 {
		if data, err := json.Marshal(b.triggers); err == nil {
			h.Set("HX-Trigger", string(data))
		}
	}
	w.WriteHeader(b.status)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse is an escaped error fragment the page swaps into place.
func ErrorResponse(statusCode int, message string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(statusCode).
		HTML(`<div class="error" role="alert">` + template.HTMLEscapeString(message) + `</div>`)
}

func BadRequestError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func UnprocessableEntityError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

func NotFoundError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func InternalServerError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}
