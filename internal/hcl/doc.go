// Package hcl provides the concrete HCL implementation of the config.Loader
// interface. It is responsible for file discovery, parsing, and translating
// `estimate` and `cost_function` blocks into the config model.
package hcl
