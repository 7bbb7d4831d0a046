// Package analysis contains the result types and the two stages that turn
// raw LLM text into a per-file report.
//
// The Parser converts a provider's free-form response into a validated
// Result: it strips Markdown fences, tolerates leading/trailing prose around
// the JSON body, maps severity/type/area synonyms through static lookup
// tables, clamps line numbers and confidences, and drops entries that are
// empty or below the confidence threshold. Parsing never fails; malformed
// input degrades to a low-confidence empty Result so a single bad chunk
// cannot abort a multi-chunk run.
//
// The Aggregator merges chunk-level Results into one Report: issues and
// recommendations are deduplicated by content signature, severity counts are
// recomputed from the deduplicated set, and a summary sentence is
// synthesized from the final counts.
package analysis
