package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func pilotCount(g *Group) int {
	count := 0
	for _, r := range g.Roles {
		if r.Role == GroupRolePilote {
			count++
		}
	}
	return count
}

func newGroupWithPilot(pilot primitive.ObjectID) *Group {
	return &Group{
		ID:      primitive.NewObjectID(),
		Name:    "Groupe de Paris",
		Members: []primitive.ObjectID{pilot},
		Roles:   []RoleEntry{{UserID: pilot, Role: GroupRolePilote}},
	}
}

func TestJoinIsIdempotent(t *testing.T) {
	pilot := primitive.NewObjectID()
	member := primitive.NewObjectID()
	group := newGroupWithPilot(pilot)

	assert.True(t, group.Join(member))
	assert.False(t, group.Join(member))

	assert.Len(t, group.Members, 2)
	role, ok := group.RoleOf(member)
	require.True(t, ok)
	assert.Equal(t, GroupRoleMembre, role)
}

func TestChangeRoleKeepsSinglePilot(t *testing.T) {
	pilot := primitive.NewObjectID()
	member := primitive.NewObjectID()
	group := newGroupWithPilot(pilot)
	group.Join(member)

	require.True(t, group.ChangeRole(member, GroupRolePilote))

	assert.Equal(t, 1, pilotCount(group))
	assert.True(t, group.IsPilot(member))
	assert.False(t, group.IsPilot(pilot))

	// The demoted pilot stays a member and falls back to membre.
	role, ok := group.RoleOf(pilot)
	require.True(t, ok)
	assert.Equal(t, GroupRoleMembre, role)
}

func TestChangeRoleRejectsNonMember(t *testing.T) {
	pilot := primitive.NewObjectID()
	group := newGroupWithPilot(pilot)

	assert.False(t, group.ChangeRole(primitive.NewObjectID(), GroupRolePilote))
}

func TestChangeRoleWithZeroIDVacatesSeat(t *testing.T) {
	pilot := primitive.NewObjectID()
	group := newGroupWithPilot(pilot)

	require.True(t, group.ChangeRole(primitive.NilObjectID, GroupRolePilote))

	assert.Equal(t, 0, pilotCount(group))
	_, hasPilot := group.Pilot()
	assert.False(t, hasPilot)
	assert.True(t, group.IsMember(pilot))
}

func TestRemoveMemberVacatesPilotSeat(t *testing.T) {
	pilot := primitive.NewObjectID()
	member := primitive.NewObjectID()
	group := newGroupWithPilot(pilot)
	group.Join(member)

	assert.True(t, group.RemoveMember(pilot))

	_, hasPilot := group.Pilot()
	assert.False(t, hasPilot)
	assert.False(t, group.IsMember(pilot))
	assert.True(t, group.IsMember(member))
}

func TestRemoveMemberIsIdempotent(t *testing.T) {
	pilot := primitive.NewObjectID()
	group := newGroupWithPilot(pilot)

	stranger := primitive.NewObjectID()
	assert.False(t, group.RemoveMember(stranger))
	assert.Len(t, group.Members, 1)
}

func TestRoleOfNonMember(t *testing.T) {
	group := newGroupWithPilot(primitive.NewObjectID())

	_, ok := group.RoleOf(primitive.NewObjectID())
	assert.False(t, ok)
}
