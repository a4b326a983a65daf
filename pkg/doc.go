// Package pkg provides the libraries behind the Sensala viewer.
//
// # Overview
//
// The viewer sends a discourse to a Sensala interpretation service and draws
// the two trees it returns: the syntactic parse tree on the "stanford" surface
// and the semantic term tree on the "sensala" surface. The pkg directory is
// organized into these areas:
//
//  1. [tree], [normalize], [graph] - Decoded trees and their flat graph form
//  2. [render] - Graphviz layout, surface fitting and file conversion
//  3. [pipeline] - Orchestration (normalize → layout → fit)
//  4. [session], [surface] - Interpretation state and the drawing surfaces
//  5. [integrations] - The interpretation service client
//  6. [cache], [config], [errors], [observability] - Supporting infrastructure
//  7. [server] - The page, JSON API and event stream
//
// # Architecture
//
// The data flow of one interpretation:
//
//	Discourse
//	    ↓
//	[integrations/sensala] (remote call, cached by endpoint and discourse)
//	    ↓
//	[tree] (parse tree, term tree, result text)
//	    ↓
//	[normalize] → [graph] (pre-order nodes and edges)
//	    ↓
//	[render/nodelink] (Graphviz layout, cached by graph hash)
//	    ↓
//	[render/viewport] (fit into the surface)
//	    ↓
//	[surface] (render event to the page or terminal)
//
// # Quick Start
//
//	store, _ := cache.Open(ctx, cache.Options{Backend: cache.BackendMemory})
//	engine, _ := nodelink.NewEngine(ctx)
//	defer engine.Close()
//
//	client := sensala.NewClient(store, sensala.DefaultEndpoint, 24*time.Hour)
//	runner := pipeline.NewRunner(engine, store, nil, logger)
//	surfaces := surface.NewSet(viewport.Surface{Width: 600, Height: 600, PaddingX: 40})
//
//	sess := session.New(client, runner, surfaces, session.Options{}, logger)
//	out, err := sess.Interpret(ctx, "John loves Mary. He is happy.")
//
// See the individual package documentation for details.
package pkg
