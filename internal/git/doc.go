// Package git runs the git executable for the few operations flins needs:
// shallow clones, ls-remote lookups of a branch tip, and reading HEAD of a
// checkout.
//
// Network operations (clone, ls-remote) are retried with exponential
// backoff and stop as soon as the context is done. Interactive credential
// prompts are disabled.
package git
