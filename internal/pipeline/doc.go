// Package pipeline streams signal files through a Summarizer with a
// bounded worker pool and hands every ReadSummary to a visit callback.
//
// The only contract to implement is Summarizer (Summarize).
package pipeline
