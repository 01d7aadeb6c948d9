// Package story turns a tagged plain-text manuscript into chapters and renders
// each chapter to HTML fragments.
//
// The markup recognized in the manuscript is:
//
//	<Chapter N>                       start of chapter N
//	<Chapter N;TITLE;DESCRIPTION>     start of chapter N, with its metadata
//	<SECTION BREAK>                   scene break, on its own line
//	<GNOTE>                           decorative note, on its own line
//
// Inside text lines, <strong>, <em>, <b>, <i>, <u>, <mark>, <small>, <sub> and <sup>
// (and their closing tags) are kept. Anything else is escaped.
package story
