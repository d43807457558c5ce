// Package pkg provides the libraries behind lethalposters.
//
// # Overview
//
// Lethalposters turns a folder of images into the textures read by the
// LethalPosters and LethalPaintings BepInEx plugins for Lethal Company. Each
// input image yields three files: a poster atlas with five poster slots, a
// tip card, and a painting. The pkg directory is organized as follows:
//
//  1. [geometry] - Fixed regions, canvas sizes and offsets
//  2. [composite] - Contain and cover-crop placement, color modes
//  3. [source] - Input discovery, cyclic image access, templates
//  4. [output] - Output format, encoder settings, on-disk layout
//  5. [generate] - The atlas, tip and painting generators
//  6. [batch] - Per-index orchestration, worker pool, run summary
//  7. [observability] - Hooks for progress reporting
//  8. [errors] - Error codes shared by every package
//
// # Architecture
//
// The data flow of one run:
//
//	input/*.png|jpg|jpeg + templates
//	         ↓
//	    [source] package (decode, validate templates)
//	         ↓
//	    [generate] package (atlas, tip, painting for index i)
//	         ↓
//	    [output] package (encode, write <i>.<ext>)
//
// # Quick Start
//
//	posters, _ := source.LoadTemplate("posters_template.png", geometry.AtlasRegions()...)
//	painting, _ := source.LoadTemplate("painting_template.png", geometry.PaintingRegion())
//	images, _ := source.Load(ctx, "input", logger)
//	spec, _ := output.NewSpec(1, 6, false)
//
//	rc, _ := generate.NewRunContext(posters, painting, images, spec)
//	summary, err := batch.NewRunner(output.Layout{Root: "output"}, logger).Run(ctx, rc, batch.Options{})
package pkg
