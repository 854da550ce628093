// Package branches finds and deletes stale remote branches.
//
// Service lists the branches of a GitHub repository, reads the committer date
// of each branch head and reports the branches with no commits inside the
// configured window. The repository default branch, branches GitHub marks as
// protected and configured names are never candidates. CommandBuilder wires
// the service into the branches Cobra command.
package branches
