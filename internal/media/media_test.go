package media

import (
	"context"
	"errors"
	"testing"
)

type fakeLocator struct {
	objects map[string]bool
	err     error
	failing map[string]error
	calls   []string
}

func (f *fakeLocator) Exists(_ context.Context, bucket, key string) (bool, error) {
	f.calls = append(f.calls, bucket+"/"+key)
	if f.err != nil {
		return false, f.err
	}
	if err := f.failing[bucket]; err != nil {
		return false, err
	}
	return f.objects[bucket+"/"+key], nil
}

func TestStaticResolver(t *testing.T) {
	resolver, err := NewStaticResolver("https://cdn.example.com/media")
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	ctx := context.Background()

	got, err := resolver.ResolveURL(ctx, "/owls/hero.jpg")
	if err != nil || got != "https://cdn.example.com/media/owls/hero.jpg" {
		t.Fatalf("unexpected url %q, %v", got, err)
	}
	got, err = resolver.ResolveURL(ctx, "https://elsewhere.example.com/x.png")
	if err != nil || got != "https://elsewhere.example.com/x.png" {
		t.Fatalf("expected absolute url untouched, got %q, %v", got, err)
	}
	if _, err := resolver.ResolveURL(ctx, "../secret"); !errors.Is(err, ErrReferenceInvalid) {
		t.Fatalf("expected traversal to be rejected, got %v", err)
	}
	if _, err := resolver.ResolveURL(ctx, " "); !errors.Is(err, ErrReferenceRequired) {
		t.Fatalf("expected blank key error, got %v", err)
	}
	if _, err := NewStaticResolver("not a url"); err == nil {
		t.Fatal("expected invalid base url to fail")
	}
}

func TestBucketResolverFallsBack(t *testing.T) {
	locator := &fakeLocator{objects: map[string]bool{
		"primary/a.jpg":  true,
		"fallback/b.jpg": true,
		"primary/b.jpg":  false,
	}}
	resolver := NewBucketResolver(locator, BucketConfig{Primary: "primary", Fallback: "fallback"}, nil)
	ctx := context.Background()

	got, err := resolver.ResolveURL(ctx, "a.jpg")
	if err != nil || got != "https://storage.googleapis.com/primary/a.jpg" {
		t.Fatalf("unexpected primary hit %q, %v", got, err)
	}
	got, err = resolver.ResolveURL(ctx, "b.jpg")
	if err != nil || got != "https://storage.googleapis.com/fallback/b.jpg" {
		t.Fatalf("unexpected fallback hit %q, %v", got, err)
	}
	if _, err := resolver.ResolveURL(ctx, "c.jpg"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected miss, got %v", err)
	}
}

func TestBucketResolverPublicBaseAndErrors(t *testing.T) {
	boom := errors.New("boom")
	locator := &fakeLocator{err: boom}
	resolver := NewBucketResolver(locator, BucketConfig{Primary: "p", PublicBaseURL: "http://localhost:4443/"}, nil)

	if _, err := resolver.ResolveURL(context.Background(), "x.jpg"); !errors.Is(err, boom) {
		t.Fatalf("expected lookup error, got %v", err)
	}
	if len(locator.calls) != 1 {
		t.Fatalf("expected a single lookup, got %v", locator.calls)
	}

	locator.err = nil
	locator.objects = map[string]bool{"p/x.jpg": true}
	got, err := resolver.ResolveURL(context.Background(), "x.jpg")
	if err != nil || got != "http://localhost:4443/p/x.jpg" {
		t.Fatalf("unexpected url %q, %v", got, err)
	}
}

func TestBucketResolverFallsBackAfterPrimaryError(t *testing.T) {
	boom := errors.New("primary unavailable")
	locator := &fakeLocator{
		objects: map[string]bool{"fallback/hero.jpg": true},
		failing: map[string]error{"primary": boom},
	}
	resolver := NewBucketResolver(locator, BucketConfig{Primary: "primary", Fallback: "fallback"}, nil)
	ctx := context.Background()

	got, err := resolver.ResolveURL(ctx, "hero.jpg")
	if err != nil || got != "https://storage.googleapis.com/fallback/hero.jpg" {
		t.Fatalf("expected fallback hit, got %q, %v", got, err)
	}

	locator.failing["fallback"] = errors.New("fallback unavailable")
	if _, err := resolver.ResolveURL(ctx, "hero.jpg"); !errors.Is(err, boom) {
		t.Fatalf("expected joined lookup errors, got %v", err)
	}
}

func TestBucketResolverEscapesKeys(t *testing.T) {
	locator := &fakeLocator{objects: map[string]bool{"primary/live shows/set #1.jpg": true}}
	resolver := NewBucketResolver(locator, BucketConfig{Primary: "primary"}, nil)

	got, err := resolver.ResolveURL(context.Background(), "live shows/set #1.jpg")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "https://storage.googleapis.com/primary/live%20shows/set%20%231.jpg" {
		t.Fatalf("expected escaped url, got %q", got)
	}
}
