// Package locator finds where a skill or command is installed across the
// supported agents.
//
// For each agent the relevant directory (skills or commands, global or
// project) is listed and matched by name, ignoring case. Scanning never
// fails: a missing or unreadable directory simply yields no installation,
// and read errors are logged at debug level through the context logger.
package locator
