// Package docs renders the project's Markdown documentation as a
// standalone HTML page, or as PDF and DOCX through pandoc.
package docs
