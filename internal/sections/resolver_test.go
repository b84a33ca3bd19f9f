package sections

import (
	"math"
	"reflect"
	"testing"
)

func scenarioRegistry(t *testing.T) *Registry {
	t.Helper()
	registry, err := NewRegistry(
		Definition{ID: Hero, DefaultName: "Home", DefaultOrder: 0, DefaultEnabled: true, Home: true},
		Definition{ID: About, DefaultName: "About", DefaultOrder: 1, DefaultEnabled: true},
		Definition{ID: Tracks, DefaultName: "Music", DefaultOrder: 2, DefaultEnabled: true},
		Definition{ID: Testimonials, DefaultName: "Testimonials", DefaultOrder: 6, DefaultEnabled: false},
	)
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	return registry
}

func resolvedIDs(resolved []Resolved) []ID {
	ids := make([]ID, len(resolved))
	for i, section := range resolved {
		ids[i] = section.ID
	}
	return ids
}

func TestResolveEmptyOverridesUsesDefaults(t *testing.T) {
	registry := scenarioRegistry(t)

	resolved := Resolve(registry, nil)

	want := []ID{Hero, About, Tracks}
	if got := resolvedIDs(resolved); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for _, section := range resolved {
		if !section.Enabled {
			t.Fatalf("expected %s to be enabled", section.ID)
		}
		if section.Title != section.Name {
			t.Fatalf("expected title to fall back to name for %s, got %q vs %q", section.ID, section.Title, section.Name)
		}
	}
}

func TestResolveTitleOverride(t *testing.T) {
	registry := scenarioRegistry(t)
	overrides := Overrides{"about": {Title: String("My Journey")}}

	about, ok := findResolved(Resolve(registry, overrides), About)
	if !ok {
		t.Fatal("expected about section in resolved output")
	}
	if about.Title != "My Journey" {
		t.Fatalf("expected title override, got %q", about.Title)
	}
	if about.Name != "About" {
		t.Fatalf("expected default name, got %q", about.Name)
	}
	if !about.Enabled {
		t.Fatal("expected inherited enabled=true")
	}
}

func TestResolveTitleWinsOverName(t *testing.T) {
	registry := scenarioRegistry(t)

	withName := Overrides{"tracks": {Name: String("Discography")}}
	tracks, _ := findResolved(Resolve(registry, withName), Tracks)
	if tracks.Name != "Discography" || tracks.Title != "Discography" {
		t.Fatalf("expected name to feed the title, got name=%q title=%q", tracks.Name, tracks.Title)
	}

	withBoth := Overrides{"tracks": {Name: String("Discography"), Title: String("Latest Releases")}}
	tracks, _ = findResolved(Resolve(registry, withBoth), Tracks)
	if tracks.Title != "Latest Releases" {
		t.Fatalf("expected title to win, got %q", tracks.Title)
	}
}

func TestResolveIgnoresRetiredSections(t *testing.T) {
	registry := scenarioRegistry(t)
	overrides := Overrides{
		"legacy_widget": {Enabled: Bool(true), Order: Int(-5), Title: String("Old")},
	}

	resolved := Resolve(registry, overrides)

	want := []ID{Hero, About, Tracks}
	if got := resolvedIDs(resolved); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for _, section := range ResolveAll(registry, overrides) {
		if !registry.Has(section.ID) {
			t.Fatalf("unexpected unknown id %q in output", section.ID)
		}
	}
}

func TestResolveForcesHomeEnabled(t *testing.T) {
	registry := scenarioRegistry(t)
	overrides := Overrides{"hero": {Enabled: Bool(false)}}

	hero, ok := findResolved(Resolve(registry, overrides), Hero)
	if !ok {
		t.Fatal("expected hero to remain in the resolved sequence")
	}
	if !hero.Enabled {
		t.Fatal("expected hero to be forced enabled")
	}
}

func TestResolveDistinguishesAbsentFromFalse(t *testing.T) {
	registry := scenarioRegistry(t)

	resolved := Resolve(registry, Overrides{
		"about":        {Enabled: Bool(false)},
		"testimonials": {Enabled: Bool(true)},
		"tracks":       {Title: String("Music")},
	})

	want := []ID{Hero, Tracks, Testimonials}
	if got := resolvedIDs(resolved); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestResolveTieBreakUsesRegistryOrder(t *testing.T) {
	registry := scenarioRegistry(t)
	overrides := Overrides{
		"tracks": {Order: Int(0)},
		"about":  {Order: Int(0)},
	}

	want := []ID{Hero, About, Tracks}
	if got := resolvedIDs(Resolve(registry, overrides)); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected registry order tie-break %v, got %v", want, got)
	}
}

func TestResolveOrdersExtremeValues(t *testing.T) {
	registry := scenarioRegistry(t)
	overrides := Overrides{
		"about":  {Order: Int(math.MaxInt)},
		"tracks": {Order: Int(-5)},
	}

	want := []ID{Tracks, Hero, About}
	if got := resolvedIDs(Resolve(registry, overrides)); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	overrides = Overrides{
		"hero":   {Order: Int(math.MinInt)},
		"tracks": {Order: Int(math.MaxInt)},
	}
	want = []ID{Hero, About, Tracks}
	if got := resolvedIDs(Resolve(registry, overrides)); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	registry := DefaultRegistry()
	overrides := Overrides{
		"gallery":  {Order: Int(1), ViewType: String("carousel")},
		"about":    {Order: Int(1)},
		"press":    {Enabled: Bool(false)},
		"sponsors": {Enabled: Bool(true), Order: Int(-1)},
		"retired":  {Order: Int(2)},
	}

	first := Resolve(registry, overrides)
	for range 20 {
		if next := Resolve(registry, overrides); !reflect.DeepEqual(first, next) {
			t.Fatalf("expected identical output, got %v and %v", first, next)
		}
	}
}

func TestResolveHomeAlwaysPresent(t *testing.T) {
	registry := DefaultRegistry()
	cases := []Overrides{
		nil,
		{"hero": {Enabled: Bool(false)}},
		{"hero": {Enabled: Bool(false), Order: Int(99)}},
		{"hero": {Order: Int(-10)}, "about": {Enabled: Bool(false)}},
	}
	for _, overrides := range cases {
		hero, ok := findResolved(Resolve(registry, overrides), Hero)
		if !ok || !hero.Enabled {
			t.Fatalf("expected hero enabled for overrides %v", overrides)
		}
	}
}

func TestResolveMergesViewOptions(t *testing.T) {
	registry := DefaultRegistry()
	overrides := Overrides{
		"gallery": {
			ViewType: String("carousel"),
			Extra:    map[string]any{"columns": 4, "autoplay": true},
		},
	}

	gallery, ok := findResolved(Resolve(registry, overrides), Gallery)
	if !ok {
		t.Fatal("expected gallery to be resolved")
	}
	if gallery.ViewType() != "carousel" {
		t.Fatalf("expected carousel view, got %q", gallery.ViewType())
	}
	if gallery.View["columns"] != 4 || gallery.View["autoplay"] != true {
		t.Fatalf("expected merged view options, got %v", gallery.View)
	}

	def, _ := registry.GetDefinition(Gallery)
	if def.DefaultView["columns"] != 3 {
		t.Fatalf("expected registry defaults untouched, got %v", def.DefaultView)
	}
}

func TestResolveAllIncludesDisabledSections(t *testing.T) {
	registry := scenarioRegistry(t)

	all := ResolveAll(registry, nil)
	want := []ID{Hero, About, Tracks, Testimonials}
	if got := resolvedIDs(all); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if all[3].Enabled {
		t.Fatal("expected testimonials to be reported disabled")
	}
}

func findResolved(resolved []Resolved, id ID) (Resolved, bool) {
	for _, section := range resolved {
		if section.ID == id {
			return section, true
		}
	}
	return Resolved{}, false
}
