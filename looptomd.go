// Package looptomd exports the workspace/page tree of a Loop-style,
// virtualized single-page application as Markdown. A browser-backed driver
// discovers and materializes the hierarchical outline into a serializable
// manifest; a later export pass converts each page to Markdown with local
// assets, reconstructing navigation purely from the manifest.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, sqlite/, goquery/).
package looptomd
