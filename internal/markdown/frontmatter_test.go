package markdown

import (
	"testing"

	"github.com/goliatone/go-portfolio/internal/sections"
	"github.com/goliatone/go-portfolio/pkg/testsupport"
)

func TestParseDocumentReadsFrontMatter(t *testing.T) {
	source, err := testsupport.LoadFixture("testdata/band.md")
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	doc, err := ParseDocument(source)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if doc.Title != "The Night Owls" || doc.Slug != "night-owls" || !doc.Published {
		t.Fatalf("unexpected metadata %+v", doc)
	}
	if doc.ThemeName != "default" || doc.ThemeVariant != "dark" {
		t.Fatalf("unexpected theme %q/%q", doc.ThemeName, doc.ThemeVariant)
	}

	gallery, ok := doc.Sections.Get(sections.Gallery)
	if !ok || gallery.Title == nil || *gallery.Title != "Live Shots" {
		t.Fatalf("unexpected gallery override %#v", gallery)
	}
	if gallery.Order == nil || *gallery.Order != 1 {
		t.Fatalf("expected string order to be coerced, got %#v", gallery.Order)
	}
	if gallery.Extra["columns"] != int64(4) {
		t.Fatalf("expected view option, got %#v", gallery.Extra)
	}

	if doc.Content[BodyField] != "We are a **four piece** band from Lisbon." {
		t.Fatalf("expected body in %s, got %#v", BodyField, doc.Content[BodyField])
	}
	skills, ok := doc.Content["skills_json"].([]any)
	if !ok || len(skills) != 1 {
		t.Fatalf("expected structured skills, got %#v", doc.Content["skills_json"])
	}
	if _, ok := skills[0].(map[string]any); !ok {
		t.Fatalf("expected string keyed map, got %T", skills[0])
	}
}

func TestParseDocumentKeepsExplicitBodyField(t *testing.T) {
	doc, err := ParseDocument([]byte("---\ntitle: X\ncontent:\n  about_text: Explicit\n---\nIgnored body\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Content[BodyField] != "Explicit" {
		t.Fatalf("expected explicit field to win, got %#v", doc.Content[BodyField])
	}
}

func TestParseDocumentWithoutFrontMatter(t *testing.T) {
	doc, err := ParseDocument([]byte("Just a body"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Title != "" || doc.Content[BodyField] != "Just a body" || len(doc.Sections) != 0 {
		t.Fatalf("unexpected document %+v", doc)
	}
}
