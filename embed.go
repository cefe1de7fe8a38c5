package chatui

import "embed"

// TemplateFS contains the embedded HTML templates used for rendering the chat page. These templates
// are organized in a directory structure that separates layouts, pages, and partial views.
//
//go:embed templates/*
var TemplateFS embed.FS

// StaticFS contains the embedded static assets, the stylesheet and the script that keeps the page
// in sync with the server-sent events.
//
//go:embed static/*
var StaticFS embed.FS
