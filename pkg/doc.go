// Package pkg provides the libraries behind herobook, a renderer for
// personalized children's picture books.
//
// # Overview
//
// A render request carries a 14-page manuscript, a child profile and print
// settings. herobook turns it into a 16-page interior PDF (story pages, a
// dedication and a keepsake page), a single-page cover PDF and a thumbnail:
//
//	Request JSON
//	     ↓
//	[book] validate, apply defaults, derive page geometry
//	     ↓
//	[template] + [assets] resolve backgrounds and overlays per page
//	     ↓
//	[compose] + [text] build one draw plan per page
//	     ↓
//	[pdf] encode plans as book.pdf and cover.pdf
//	     ↓
//	[storage] + [status] persist files and record the order's state
//
// [pipeline] runs the stages; the CLI (internal/cli) and the HTTP service
// ([server]) are thin shells around it.
//
// # Packages
//
// Domain:
//
//   - [book]: request types, validation and print geometry
//   - [template]: {{PLACEHOLDER}} substitution over a closed field set
//   - [assets]: the page asset catalog and the asset fetcher
//   - [layout]: rectangles in print units
//   - [text]: word wrapping and glyph metrics
//   - [fonts]: the embedded typefaces
//   - [compose]: per-page draw plans and the skip policy
//   - [pdf]: the PDF document builder
//   - [pipeline]: the render orchestrator
//
// Infrastructure:
//
//   - [cache]: fetched-asset cache (memory, file, redis)
//   - [status]: order status store (memory, file, redis, mongo)
//   - [storage]: output files and public URLs
//   - [locks]: per-order render locks
//   - [config]: TOML and environment configuration
//   - [server]: the HTTP service
//   - [httputil]: retry and status classification for fetches
//   - [errors]: coded errors shared by every package
//   - [observability]: render, cache and HTTP hooks
//   - [buildinfo]: version information
//
// # Quick Start
//
//	runner, err := pipeline.NewRunner(assets.NewFetcher(assets.WithRoot("./assets")), nil)
//	if err != nil {
//	    return err
//	}
//	res, err := runner.Execute(ctx, pipeline.Options{Request: book.Example("ORDER-1", "Emma")})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("book.pdf", res.Book, 0o644)
package pkg
