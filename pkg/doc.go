// Package finddup finds duplicate files across directory trees.
//
// # Strategies
//
// A file's comparison key comes from one of three strategies:
//   - name: the base name, verbatim
//   - fuzzy: a digest of the base name after lower-casing, dropping the extension,
//     spelling '&' as "and" and removing ASCII whitespace and punctuation
//   - md5: a digest of the first BlockSize bytes of content
//
// Files whose keys are equal form a DuplicateGroup.
//
// # Core API
//
//	cfg := finddup.NewDefaultConfig()
//	cfg.ApplyOverrides([]string{"strategy:md5", "blocksize:1M"})
//	result, err := finddup.Find([]string{"/srv/music"}, cfg, nil)
//	for _, group := range result.Groups {
//		fmt.Printf("%s: %v\n", group.Key, group.Files)
//	}
//
// Lower-level pieces can be used directly: NewStrategy and Strategy.Key compute keys,
// NewGrouper accumulates locations, WriteReport renders a Result.
//
// # Unreadable entries
//
// The md5 strategy gives every location that is not a readable regular file the outcome
// NotARegularFile. Such locations are collected together and, when there is more than one,
// reported as a single group with Unreadable set. It is not a real duplicate signal.
package finddup
