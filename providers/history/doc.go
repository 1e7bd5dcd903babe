// Package history defines the [Store] interface for persisting completed
// queries as append-only [Record] values: the prompt and api arguments that
// went in, the ordered output chunks that came back.
//
// Records are captured by the patterns/capture decorator; stores only persist
// and list them. The bundled implementations are
// [github.com/leofalp/llmwrap/providers/history/inmemory] for tests and
// short-lived processes, and
// [github.com/leofalp/llmwrap/providers/history/sqlitehistory] for durable
// single-file persistence.
package history
