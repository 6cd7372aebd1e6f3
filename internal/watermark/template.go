// Package watermark provides the watermarking core: template rendering, the
// visible text/bar overlay, the hidden PNG tEXt payload codec and the pipeline
// that chains them per generation.
package watermark

import "strings"

// Tokens - concrete values substituted into the visible-text template
type Tokens struct {
	Email     string
	Timestamp string
	Filename  string
}

// RenderTemplate replaces every occurrence of {email}, {timestamp} and
// {filename} with the token values. Single pass, literal substitution:
// unknown placeholders stay verbatim, token values are never re-scanned.
func RenderTemplate(tpl string, tok Tokens) string {
	r := strings.NewReplacer(
		"{email}", tok.Email,
		"{timestamp}", tok.Timestamp,
		"{filename}", tok.Filename,
	)
	return r.Replace(tpl)
}
