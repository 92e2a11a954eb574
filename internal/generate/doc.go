// Package generate wraps the external text-generation runtimes consumed by the
// extractor. It is structured into small files by concern:
//
//   - client.go: Client/Runtime contract, decoding Options, Disabled client.
//   - errors.go: error kinds and helpers (IsDependencyUnavailable, IsInvalidOptions).
//   - profile.go: named generation profiles (model, decoding options, prompt
//     template, response marker) and prompt echo stripping.
//   - factory.go: Config and New, which builds the configured runtime.
//   - llamaserver.go: llama.cpp server over HTTP (OpenAI-compatible SSE stream).
//   - gemini.go: hosted Gemini/Gemma models through google.golang.org/genai.
//   - llama.go: in-process go-llama.cpp runtime (build tag `llama`).
//   - llama_stub.go: no-CGO stub used when the tag is not set.
//
// Build tags and runtimes:
//
//   - In-process llama: `-tags=llama`. Files: llama.go, llama_cgo.go
//     (linker rpath hints). Without the tag NewLlama fails fast with a
//     dependency-unavailable error.
//
// Runtimes own their resources (loaded weights, HTTP transports); callers
// release them with Close.
package generate
