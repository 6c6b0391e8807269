package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func twoUsers() (*User, *User) {
	return &User{ID: primitive.NewObjectID(), Username: "alice"},
		&User{ID: primitive.NewObjectID(), Username: "bob"}
}

func TestSendRequestIsSymmetric(t *testing.T) {
	alice, bob := twoUsers()

	SendRequest(alice, bob)

	assert.Equal(t, RelationRequestSent, alice.RelationTo(bob.ID))
	assert.Equal(t, RelationRequestReceived, bob.RelationTo(alice.ID))
}

func TestSendRequestTwiceAddsNoDuplicates(t *testing.T) {
	alice, bob := twoUsers()

	SendRequest(alice, bob)
	SendRequest(alice, bob)

	assert.Len(t, alice.FriendRequestsSent, 1)
	assert.Len(t, bob.FriendRequestsReceived, 1)
}

func TestAcceptRequestCreatesSymmetricFriendship(t *testing.T) {
	alice, bob := twoUsers()

	SendRequest(alice, bob)
	AcceptRequest(bob, alice)

	assert.Equal(t, RelationFriends, alice.RelationTo(bob.ID))
	assert.Equal(t, RelationFriends, bob.RelationTo(alice.ID))

	// Pending entries are gone on both sides.
	assert.Empty(t, alice.FriendRequestsSent)
	assert.Empty(t, bob.FriendRequestsReceived)
}

func TestClearRequestDropsBothSides(t *testing.T) {
	alice, bob := twoUsers()

	SendRequest(alice, bob)
	ClearRequest(alice, bob)

	assert.Equal(t, RelationNone, alice.RelationTo(bob.ID))
	assert.Equal(t, RelationNone, bob.RelationTo(alice.ID))
}

func TestRemoveFriendshipIsSymmetric(t *testing.T) {
	alice, bob := twoUsers()

	SendRequest(alice, bob)
	AcceptRequest(bob, alice)
	RemoveFriendship(alice, bob)

	assert.Equal(t, RelationNone, alice.RelationTo(bob.ID))
	assert.Equal(t, RelationNone, bob.RelationTo(alice.ID))
}

func TestRelationToStranger(t *testing.T) {
	alice, bob := twoUsers()
	assert.Equal(t, RelationNone, alice.RelationTo(bob.ID))
}
