// Package markdown renders markdown bodies into sanitized HTML. Fenced code
// blocks are lifted out before conversion and re-inserted as highlighted
// markup afterwards so the markdown engine never touches their contents.
package markdown
