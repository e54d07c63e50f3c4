// Package marriagestats turns civil-registry marriage microdata into the
// published demographic charts, maps and tables.
//
// The pipeline is split across packages:
//
//	dataset   loads marriages, adult population tables and region boundaries
//	engine    filters, groups and rates records, then builds figure descriptions
//	render    draws chart, map and table descriptions to PNG and stacks them
//	report    one driver per report kind, run in sequence
//
// The marriagestats command runs the configured report list:
//
//	marriagestats --config run.yaml --only region_map
//
// Every computation is local; inputs are files on disk.
package marriagestats
