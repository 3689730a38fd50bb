// Package pipeline turns a source tree into encoder work and runs it.
//
// A run walks the source root, drops hidden and non-texture files,
// classifies the rest by name, skips textures whose output is already newer
// than the source, and synthesizes one encoder command per remaining file.
// The commands are then dispatched in one of two modes:
//
//   - Direct: a bounded pool of workers runs the full stage chain per item.
//     A shared CancelToken stops new items from starting; items already
//     running finish.
//   - Deferred: commands are appended to a script in discovery order and
//     the encoder's own batch runner executes the script once at the end.
//
// Item failures never abort the batch. Only configuration problems (unknown
// platform, missing source tree) stop a run before dispatch.
package pipeline
