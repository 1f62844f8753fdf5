// Package app contains the core application logic. It wires report capture,
// parsing, quantizer annotation, cost propagation and result assembly into
// one estimate, decoupled from any specific entrypoint like a CLI.
package app
