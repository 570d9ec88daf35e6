// Package libdoc defines the in-memory documentation model consumed by the
// project-dump generator, and loads it from Robot Framework libdoc JSON spec files.
//
// # Overview
//
// A Library is either a keyword library or a resource file. It owns an ordered
// list of Keywords, each with ordered Arguments, and a list of enumerated data
// types (EnumType) whose Members become equivalence-class representatives in
// the generated project-dump.
//
// The model is read-only to the generator: nothing in pkg/projectdump mutates a
// Library after it has been loaded.
//
// # Usage Example
//
//	paths, err := libdoc.Expand([]string{"specs/**/*.json"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	libs, err := libdoc.LoadAll(paths)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Supported Spec Versions
//
// Libdoc JSON from Robot Framework 4 (dataTypes.enums, args[].types) and from
// Robot Framework 5 and later (typedocs[], args[].type) are both accepted.
package libdoc
