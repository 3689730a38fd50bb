// Package encoder builds kram encode invocations and runs the per-texture
// stage chain: encode, then the optional KTX2 repackage, verify,
// supercompress, and verify stages.
//
// Every stage is an external process invoked by argument vector (never
// through a shell); its exit status is the only success signal. The chain
// stops at the first failing stage and reports a [*StageError]. There is no
// rollback: a partial chain leaves whatever the last successful stage wrote.
package encoder
