// Package source parses the <source> argument of "flins add".
//
// Accepted forms:
//
//	owner/repo                                    GitHub shorthand
//	owner/repo/skills/pdf                         shorthand with subpath
//	https://github.com/owner/repo                 GitHub
//	https://github.com/owner/repo/tree/dev/skills GitHub tree URL (branch, subpath)
//	https://gitlab.com/group/repo/-/tree/main/x   GitLab tree URL
//	git@host:owner/repo.git, ssh://..., https://... any other git remote
//	./dir, ../dir, /abs/dir, ~/dir                local directory
package source
