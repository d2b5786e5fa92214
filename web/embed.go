// Package web holds the dashboard templates and static assets, embedded
// into the binary so the server needs no files on disk.
package web

import "embed"

// TemplatesFS holds index.html and the report partial.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds the stylesheet and the htmx event glue.
//
//go:embed static/*
var StaticFS embed.FS
