// Package harness runs finder scenarios against a seeded in-memory host.
//
// A scenario seeds a fixture, builds one finder from a declarative
// definition, materializes it and checks assertions against the rows and
// the composed statement.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: german_titles
//	description: "Posts read their German title with fallback"
//	fixture: ../fixtures/site.yaml
//	language: german
//	finder:
//	  selector: template=post
//	  fields:
//	    - name: title
//	  joins:
//	    - finder: {selector: template=person, fields: [{name: title}]}
//	      params: {prefix: author, key: author}
//	assertions:
//	  - type: row_count
//	    count: 3
//	  - type: column_values
//	    column: title
//	    values: [Gamma DE, Alpha DE, Beta]
//	  - type: row_contains
//	    where: {id: 5}
//	    expect: {author.title: Carol}
//	  - type: sql_contains
//	    text: LEFT JOIN
//
// # Assertion Types
//
//   - row_count: the number of rows
//   - column_values: one column across all rows, in row order
//   - row_contains: the row matching where has the expected values
//   - columns: the output column names of the first row, in order
//   - sql_contains: the composed statement contains text
//
// # Deterministic Testing
//
// Joins without a prefix are named j1, j2, ... and phases are stamped by a
// logical clock, so the same scenario always composes the same statement
// and records the same phases. Use RunWithGolden to snapshot the rows.
package harness
