// Package field models one requested field of a finder and renders the SQL
// it contributes to the finder's base subquery.
//
// A Spec is a closed variant over Kind. Each kind knows two things: the
// select items it adds to the base subquery (RenderSelect) and the
// LEFT JOIN that feeds them (RenderJoin). Joins always expose the owning
// entity id as "pageid" so they can be matched to the base row.
//
// Identifiers are derived from an AliasPath, an immutable list of join
// prefixes from the root finder down to the current one:
//
//	scope      root.author
//	base       root.author#
//	table      root.author#images
//	sub-table  root.author#images:description
//
// Names are restricted to [A-Za-z_][A-Za-z0-9_]*, so '.', '#' and ':' can
// only appear as separators and two specs at different positions in the
// tree never render the same identifier.
package field
