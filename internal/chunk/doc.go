// Package chunk splits source files into LLM-sized pieces along
// language-aware boundaries.
//
// Files that fit within the token budget are returned as a single chunk.
// Larger files are walked line by line: function, class, and type
// declarations start new chunks for the languages with a recognized
// detector (Python, JavaScript/TypeScript, Java, Go), and an accumulated
// block that outgrows the budget before a boundary appears is split
// mid-block. Languages without a detector fall back to fixed 50-line
// chunks.
//
// The boundary detectors are line-prefix and regex heuristics; they can
// split inside multi-line strings or comments. Chunks always cover the
// whole input contiguously regardless.
package chunk
