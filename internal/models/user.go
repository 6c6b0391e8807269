package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RelationStatus describes the friendship state between two users as seen
// from one side of the pair.
type RelationStatus string

const (
	RelationNone            RelationStatus = "none"
	RelationFriends         RelationStatus = "friends"
	RelationRequestSent     RelationStatus = "request_sent"
	RelationRequestReceived RelationStatus = "request_received"
)

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Username string             `bson:"username" json:"username"`
	Email    string             `bson:"email" json:"email" validate:"omitempty,email"`
	AuthUID  string             `bson:"auth_uid,omitempty" json:"-"`
	Role     Role               `bson:"role" json:"role"`
	ImageURL string             `bson:"imageUrl" json:"imageUrl"`
	Country  string             `bson:"country,omitempty" json:"country,omitempty"`

	// Social graph. The three sets are mutually exclusive for any given peer:
	// a peer id appears in at most one of them at a time, and friendship is
	// always symmetric across both documents.
	Friends                []primitive.ObjectID `bson:"friends" json:"friends"`
	FriendRequestsSent     []primitive.ObjectID `bson:"friendRequestsSent" json:"friendRequestsSent"`
	FriendRequestsReceived []primitive.ObjectID `bson:"friendRequestsReceived" json:"friendRequestsReceived"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func (u *User) IsFriend(id primitive.ObjectID) bool {
	return containsID(u.Friends, id)
}

func (u *User) HasSentRequestTo(id primitive.ObjectID) bool {
	return containsID(u.FriendRequestsSent, id)
}

func (u *User) HasReceivedRequestFrom(id primitive.ObjectID) bool {
	return containsID(u.FriendRequestsReceived, id)
}

// RelationTo returns the friendship state between u and the given peer.
func (u *User) RelationTo(peer primitive.ObjectID) RelationStatus {
	switch {
	case u.IsFriend(peer):
		return RelationFriends
	case u.HasSentRequestTo(peer):
		return RelationRequestSent
	case u.HasReceivedRequestFrom(peer):
		return RelationRequestReceived
	}
	return RelationNone
}

// SendRequest records an outgoing friend request on both documents.
// The caller is responsible for persisting both users.
func SendRequest(from, to *User) {
	if !from.HasSentRequestTo(to.ID) {
		from.FriendRequestsSent = append(from.FriendRequestsSent, to.ID)
	}
	if !to.HasReceivedRequestFrom(from.ID) {
		to.FriendRequestsReceived = append(to.FriendRequestsReceived, from.ID)
	}
}

// AcceptRequest turns a pending request from `from` into a friendship,
// clearing the pending entries on both sides.
func AcceptRequest(accepter, from *User) {
	accepter.FriendRequestsReceived = removeID(accepter.FriendRequestsReceived, from.ID)
	from.FriendRequestsSent = removeID(from.FriendRequestsSent, accepter.ID)
	if !accepter.IsFriend(from.ID) {
		accepter.Friends = append(accepter.Friends, from.ID)
	}
	if !from.IsFriend(accepter.ID) {
		from.Friends = append(from.Friends, accepter.ID)
	}
}

// ClearRequest drops a pending request between the two users from both sides
// without creating a friendship. Used for both reject and cancel.
func ClearRequest(sender, target *User) {
	sender.FriendRequestsSent = removeID(sender.FriendRequestsSent, target.ID)
	target.FriendRequestsReceived = removeID(target.FriendRequestsReceived, sender.ID)
}

// RemoveFriendship removes the symmetric friend edge from both documents.
func RemoveFriendship(a, b *User) {
	a.Friends = removeID(a.Friends, b.ID)
	b.Friends = removeID(b.Friends, a.ID)
}
