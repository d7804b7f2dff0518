// Package render converts card field markdown to the HTML stored in notes.
//
// Conversion is goldmark with GitHub Flavored Markdown, hard line breaks,
// and raw HTML passthrough. LaTeX written as \(...\) or \[...\] is shielded
// from the markdown engine and re-emitted verbatim, with doubled braces
// split so Anki does not mistake them for template syntax.
package render
