// Package path implements the typed paths and cursors shared by
// search and insert (spec §3, §4.2, C3). Cursor match state is
// encoded as a compile-time type parameter so a speculative
// (Candidate) advance can never be read where a confirmed (Matched)
// position is required.
package path

import "github.com/mankinskin/hypergraph/internal/vertex"

// AtomPosition is an atom offset within a root token's unfolded
// string, 0 <= p <= width(root).
type AtomPosition uint32

// Location is re-exported for convenience; ChildLocation and
// ParentLocation (spec §3) are the same triple viewed from the child
// or the parent side.
type Location = vertex.Location

// Role is the boundary side of a path: the left edge of a match
// (Start) or the right edge (End).
type Role int

const (
	RoleStart Role = iota
	RoleEnd
)

func (r Role) String() string {
	if r == RoleStart {
		return "Start"
	}
	return "End"
}

// RolePath is an ordered descent from a root entry toward a leaf
// token, recorded along one boundary of a match.
type RolePath struct {
	Role      Role
	Root      vertex.ID
	RootEntry int
	Steps     []Location // root -> leaf, in descent order
}

// Locations gives raw read access to the atom-level descent, without
// exposing which role or root-entry it belongs to. Spec §9 calls for
// this narrower protocol to coexist with the role-aware one below,
// since IndexRangePath carries both a Start and an End sub-path and a
// single-role accessor cannot serve both.
type AtomPath interface {
	Locations() []Location
}

// RoleAware gives access to the full role-path structure, including
// which boundary it describes and the root-entry it descends from.
type RoleAware interface {
	RoleOf() Role
	RootEntryIndex() int
}

func (p RolePath) Locations() []Location   { return p.Steps }
func (p RolePath) RoleOf() Role            { return p.Role }
func (p RolePath) RootEntryIndex() int     { return p.RootEntry }

var (
	_ AtomPath  = RolePath{}
	_ RoleAware = RolePath{}
)

// Leaf returns the final Location of the descent, or false if the
// path is empty (the root entry itself is the leaf).
func (p RolePath) Leaf() (Location, bool) {
	if len(p.Steps) == 0 {
		return Location{}, false
	}
	return p.Steps[len(p.Steps)-1], true
}

// IndexRangePath pairs a Start and an End RolePath under one root,
// denoting a contiguous substring of that root (spec §3). It is the
// type the design note in spec §9 describes as needing a
// role-generic accessor: PathFor narrows to either sub-path by Role
// without forcing callers to pick one at the type level.
type IndexRangePath struct {
	Root  vertex.ID
	Start RolePath
	End   RolePath
}

// PathFor returns the Start or End sub-path by role.
func (p IndexRangePath) PathFor(r Role) RolePath {
	if r == RoleStart {
		return p.Start
	}
	return p.End
}
