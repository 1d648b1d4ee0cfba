// Package report renders a planning result as plain text for the terminal.
// Server supplied text is stripped of markup with bluemonday before it is
// placed in the pongo2 template.
package report
