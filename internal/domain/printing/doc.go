// Package printing lays billing documents out into fixed-size pages of
// positioned drawing instructions.
//
// The engine is pure: identical input and configuration always produce the
// same pages. It knows nothing about output encodings; renderers in the
// infrastructure layer turn pages into PDF or HTML bytes.
//
// Text width uses a documented approximation, not font metrics: every glyph
// is assumed to be FontSize × GlyphWidthRatio points wide.
package printing
