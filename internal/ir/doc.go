// Package ir provides the value and row types shared by the finder engine,
// the host store and the CLI.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Rows keep column order exactly as the composed statement returned it
//   - Selector literals are a closed set of value types (IRValue)
//   - Row JSON is NFC normalized and never HTML-escaped
package ir
