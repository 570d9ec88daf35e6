// Package projectdump assembles documented libraries into a TestBench
// project-dump document.
//
// # Overview
//
// The assembler walks the input libraries once and builds the complete output
// tree in memory: one subdivision per group, one subdivision per library, and
// inside each library its data types followed by its interactions. Only then is
// the tree serialized, so a failure never leaves a partial document behind.
//
// # Keys and References
//
// Every element, equivalence class, representative and parameter gets a key
// from a KeyAllocator (seed+1, seed+2, ...). Elements and representatives are
// registered in a Registry under their QualifiedName the moment they are
// created. Parameters reference data types by looking their declared type names
// up in that Registry, which is why a library's data types are always emitted
// before its interactions. Lookups that find nothing yield Unresolved (-1).
//
// Allocator, Registry and Resolver live in a Session created per Assemble call.
//
// # External IDs
//
// ExternalID derives a stable uid from kind, name, owning library and
// repository with SHA-1, so an element keeps its uid across runs even when its
// key changes.
//
// # Usage Example
//
//	opts := projectdump.DefaultOptions()
//	opts.CreatedTime = time.Now()
//
//	doc, report, err := projectdump.NewAssembler(opts).Assemble(libs)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := projectdump.WriteFile("project-dump.zip", doc, projectdump.FormatZip); err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("%d elements, %d unresolved\n", report.TotalElements(), len(report.Unresolved))
package projectdump
