// Package frontmatter parses YAML frontmatter from the Markdown files that
// make up skills (SKILL.md) and commands.
//
// Frontmatter is delimited by lines containing only "---" at the start and
// end. The block is decoded into the type parameter T; the content after
// the closing delimiter is returned as the body.
//
//	type SkillMeta struct {
//		Name        string `yaml:"name"`
//		Description string `yaml:"description"`
//	}
//
//	meta, body, err := frontmatter.ParseFile[SkillMeta]("skills/demo/SKILL.md")
//
// Missing frontmatter yields [ErrNoFrontmatter]; malformed YAML yields
// [ErrInvalidYAML]. Both can be checked with errors.Is. Unix (LF) and
// Windows (CRLF) line endings are handled.
package frontmatter
