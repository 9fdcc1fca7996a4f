// Package pkg provides the core libraries for harnessviz, a builder for cable
// harness diagrams and bills of materials.
//
// # Overview
//
// A harness document declares connectors, cables and the connection rows
// between them. The pkg directory is organized into:
//
//  1. [document] and [config] - input: YAML harness documents and TOML settings
//  2. [units] and [colors] - immutable unit, gauge and wire color tables
//  3. [harness] and [resolve] - the entity model and the connection resolver
//  4. [bom] - bill of materials aggregation and shared BOM merging
//  5. [graph] and [render] - the language-neutral diagram and its Graphviz output
//  6. [pipeline] - orchestration shared by the CLI and the HTTP API
//  7. [cache], [observability], [errors], [buildinfo] - infrastructure
//
// # Architecture
//
//	harness.yml
//	     ↓
//	[document] Load (one Document per YAML document)
//	     ↓
//	[harness] New (entities, template instances, reference check)
//	     ↓
//	[resolve] Apply (rows → links)
//	     ↓
//	[bom] Aggregator (parts → entries)
//	     ↓
//	[graph] Emit → [render/dot] ToDOT → RenderSVG
//
// # Quick Start
//
//	docs, _ := document.LoadFile("harness.yml")
//	res, err := pipeline.Build(docs[0], config.Default(), document.Options{})
//	if err != nil {
//	    return err
//	}
//	svg, _ := dot.RenderSVG(ctx, res.DOT)
//	bom.WriteTSV(os.Stdout, res.BOM)
//
// # Errors
//
// Every failure is an [errors.Error] with a code (UNIT_ERROR,
// COLOR_CODE_ERROR, RESOLUTION_ERROR, AGGREGATOR_STATE_ERROR, SCHEMA_ERROR)
// and, where known, the harness, connection row and entity it concerns.
package pkg
