// Package mailer renders markdown email templates and delivers them via
// a provider adapter.
//
// Templates are markdown files with YAML frontmatter (subject lives
// there), executed as text/template, converted with goldmark, and
// wrapped in an HTML layout. Delivery goes through the shared retrying
// invoker so transient provider failures do not drop notifications.
package mailer
