// Package markdown renders longText fields and imports portfolios from
// markdown files with YAML front matter.
package markdown
