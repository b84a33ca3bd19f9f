// Package http provides the HTTP adapters for portfolios.
//
// Admin routes mount under /api and require a bearer token when an
// authenticator is configured:
//   - Section catalog: /sections
//   - Portfolios: /portfolios, /portfolios/{id}
//   - Section state: /portfolios/{id}/sections, /portfolios/{id}/sections/reorder,
//     /portfolios/{id}/sections/{section}
//   - Configuration: /portfolios/{id}/config
//   - Lifecycle: /portfolios/{id}/publish, /portfolios/{id}/unpublish
//   - Editor preview: /portfolios/{id}/preview
//
// Published pages are served by PublicSite under /p/{slug}.
//
// Host applications can register handlers on their own mux as needed.
package http
