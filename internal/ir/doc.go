// Package ir provides the value types shared by every pathq package.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This keeps ir the foundational
// layer with no circular dependencies.
//
// Key design constraints:
//   - Criteria are plain values; operator/numeric consistency is checked when
//     a comparison is lowered, never at construction
//   - Constraints are carried as strings, so requests never put floats into
//     canonical JSON
//   - Prefix tables iterate in sorted short-name order
//   - All JSON tags use snake_case
package ir
