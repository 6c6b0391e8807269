package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GroupRole is the per-group role of a member.
type GroupRole string

const (
	GroupRolePilote GroupRole = "pilote"
	GroupRoleMembre GroupRole = "membre"
)

func (r GroupRole) IsValid() bool {
	return r == GroupRolePilote || r == GroupRoleMembre
}

// RoleEntry binds a member to its role inside one group. Every entry must
// refer to a user present in the group's Members list.
type RoleEntry struct {
	UserID primitive.ObjectID `bson:"userId" json:"userId"`
	Role   GroupRole          `bson:"role" json:"role"`
}

type Group struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	Name            string               `bson:"name" json:"name" validate:"required,min=2,max=100"`
	Description     string               `bson:"description" json:"description" validate:"max=500"`
	MeetingDay      string               `bson:"meetingDay" json:"meetingDay" validate:"required"`
	MeetingLocation string               `bson:"meetingLocation" json:"meetingLocation"`
	CreatedBy       primitive.ObjectID   `bson:"createdBy" json:"createdBy"`
	Members         []primitive.ObjectID `bson:"members" json:"members"`
	Roles           []RoleEntry          `bson:"roles" json:"roles"`
	CreatedAt       time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt" json:"updatedAt"`
}

func (g *Group) IsMember(userID primitive.ObjectID) bool {
	return containsID(g.Members, userID)
}

// Pilot returns the id of the current pilot, if the group has one.
func (g *Group) Pilot() (primitive.ObjectID, bool) {
	for _, r := range g.Roles {
		if r.Role == GroupRolePilote {
			return r.UserID, true
		}
	}
	return primitive.NilObjectID, false
}

func (g *Group) IsPilot(userID primitive.ObjectID) bool {
	pilot, ok := g.Pilot()
	return ok && pilot == userID
}

// RoleOf returns the member's role, defaulting to membre for members that
// have no explicit role entry.
func (g *Group) RoleOf(userID primitive.ObjectID) (GroupRole, bool) {
	if !g.IsMember(userID) {
		return "", false
	}
	for _, r := range g.Roles {
		if r.UserID == userID {
			return r.Role, true
		}
	}
	return GroupRoleMembre, true
}

// Join adds the user as a membre. Joining twice is a no-op; the return value
// reports whether the group actually changed.
func (g *Group) Join(userID primitive.ObjectID) bool {
	if g.IsMember(userID) {
		return false
	}
	g.Members = append(g.Members, userID)
	g.Roles = append(g.Roles, RoleEntry{UserID: userID, Role: GroupRoleMembre})
	g.UpdatedAt = time.Now()
	return true
}

// RemoveMember removes the user from Members and Roles unconditionally.
// A pilot that is removed vacates the pilot seat with no successor. Removing
// a non-member is a no-op; the return value reports whether anything changed.
func (g *Group) RemoveMember(userID primitive.ObjectID) bool {
	if !g.IsMember(userID) && !g.hasRoleEntry(userID) {
		return false
	}
	g.Members = removeID(g.Members, userID)
	roles := g.Roles[:0]
	for _, r := range g.Roles {
		if r.UserID != userID {
			roles = append(roles, r)
		}
	}
	g.Roles = roles
	g.UpdatedAt = time.Now()
	return true
}

func (g *Group) hasRoleEntry(userID primitive.ObjectID) bool {
	for _, r := range g.Roles {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// ChangeRole replaces the current pilot assignment. Every existing pilote
// entry is removed first, which keeps the at-most-one-pilot invariant by
// construction; a demoted pilot stays a member and falls back to membre via
// RoleOf. When memberID is the zero id the group is left without a pilot.
// The named member must already belong to the group.
func (g *Group) ChangeRole(memberID primitive.ObjectID, role GroupRole) bool {
	if !memberID.IsZero() && !g.IsMember(memberID) {
		return false
	}

	roles := make([]RoleEntry, 0, len(g.Roles))
	for _, r := range g.Roles {
		if r.Role == GroupRolePilote {
			continue
		}
		if !memberID.IsZero() && r.UserID == memberID {
			continue
		}
		roles = append(roles, r)
	}
	if !memberID.IsZero() {
		roles = append(roles, RoleEntry{UserID: memberID, Role: role})
	}
	g.Roles = roles
	g.UpdatedAt = time.Now()
	return true
}
