// Package spec loads and caches the specification document served by specdocs.
//
// The document is decoded from YAML (or JSON, which is a YAML subset) into a
// small tagged-variant model, [Value], whose mappings keep the key order of
// the source file. Consumers such as the endpoint index and the mock
// generator only ever see read-only views of the cached [Document].
//
// # Loading
//
// A [Store] owns the document. The first call to [Store.Load] reads the
// configured [Source] and parses it; later calls return the cached result.
// Failures are never cached, so a missing or malformed file can be fixed
// without restarting the process:
//
//	store := spec.NewStore(spec.NewFileSource("openapi.yaml"))
//	doc, err := store.Load(ctx)
//	if errors.Is(err, spec.ErrNotFound) {
//		// configured file does not exist (yet)
//	}
//
// # Sources
//
// [NewSource] picks a [FileSource] for local paths and an [HTTPSource] for
// http(s) URLs. A [Watcher] can reload a file-backed store when the file
// changes on disk.
package spec
