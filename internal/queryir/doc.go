// Package queryir is the intermediate representation of host selectors.
//
// A selector string such as
//
//	template=person, title%=smith, sort=-age, limit=10
//
// is parsed by package selector into a Select, which package querysql
// compiles to parameterized SQL returning the matching entity ids in
// order. Keeping the IR between the two lets both sides be tested on
// their own and lets other backends compile the same selectors.
//
// SEALED INTERFACES:
//
// Query and Predicate are sealed with marker methods; only types in this
// package implement them, so backends can switch over them exhaustively:
//
//	switch p := pred.(type) {
//	case Compare:
//	    // column of the entity table
//	case FieldCompare:
//	    // value column of a field table
//	case And:
//	    // conjunction
//	}
//
// VALUES:
//
// Literals are ir.IRValue (string, int, bool). Several values in one
// comparison are alternatives: the comparison holds if it holds for any of
// them, except for OpNe, which holds if the column equals none of them.
package queryir
