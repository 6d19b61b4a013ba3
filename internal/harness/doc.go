// Package harness runs conformance scenarios against the compiler.
//
// # Scenario Format
//
// Scenarios are YAML files holding one request and the assertions its
// compilation must satisfy:
//
//	name: text_equality
//	description: "EQ on a textual criterion becomes an anchored regex"
//	prefixes:
//	  "": http://example.org/
//	criteria:
//	  - path: knows/name
//	    op: EQ
//	    value: Bob
//	assertions:
//	  - type: sparql_contains
//	    text: 'FILTER(regex(str(?v2), "^Bob$"))'
//	  - type: pattern_count
//	    count: 3
//
// A scenario expecting a failure names the error code instead:
//
//	expect:
//	  error: E203
//
// # Assertion Types
//
//   - sparql_contains: the normalized query text contains text
//   - sparql_not_contains: the normalized query text does not contain text
//   - pattern_count: the query has exactly count triple patterns
//   - filter_count: the query has exactly count FILTERs
//   - variable_count: the query binds exactly count variables
//
// # Deterministic Testing
//
// Assertions and golden files see the normalized query, in which every
// variable but ?root is renamed v1, v2, ... in order of first appearance,
// so results do not depend on the allocator's state. Each scenario runs
// through the batch engine with a fixed run ID and an in-memory journal,
// and is replayed from that journal before its assertions are checked.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/union.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
