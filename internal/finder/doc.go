// Package finder composes a single SQL statement that returns one row per
// entity, with one column per requested field, for the ids a selector
// resolves to.
//
// A Finder is configured first (fields, computed columns, filters, joined
// child finders) and composed once. The first call to SQL or to any
// materializing method composes and memoizes the statement; configuration
// calls after that fail with ErrCodeComposed.
//
// Composition for a finder at alias path P:
//
//	SELECT P.id, P.<own columns>, P.child.<child columns> AS "child.<col>"
//	FROM (base subquery: pages + one LEFT JOIN per field) AS P
//	LEFT JOIN (<child statement>) AS P.child ON P.child.<key> = <anchor>
//	WHERE P.id IN (<resolved ids> | NULL)
//	ORDER BY <position of P.id in the resolved ids>
//
// Materializing runs the statement through the Executor and applies, in
// order: filters registered with FilterBefore, computed columns, filters
// registered with FilterAfter. An executor failure yields an empty result,
// not an error.
//
// A Finder is not safe for concurrent configuration. Once composed, the
// materializing methods may be called concurrently as long as the
// collaborators allow it.
package finder
