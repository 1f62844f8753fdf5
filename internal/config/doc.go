// Package config defines the format-agnostic configuration model for the
// application, along with the Loader interface for reading it from files.
//
// Every estimate setting is optional here: a nil field means the file did not
// set it and the command line or the built-in default decides. Concrete
// loaders, such as for HCL, are provided in separate packages.
package config
