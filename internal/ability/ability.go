// Package ability centralizes every authorization decision as pure
// predicates over (user, action, subject, resource). Rules are an explicit
// ordered list; a matching deny rule always wins over any allow rule, and
// the absence of a matching rule is a deny. The engine never consults
// storage: it only looks at the caller and, optionally, one group the
// caller already loaded.
package ability

import (
	"github.com/JoeLeDev/RSs/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Action string

const (
	ActionManage     Action = "manage" // wildcard: matches every action
	ActionRead       Action = "read"
	ActionCreate     Action = "create"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionJoin       Action = "join"
	ActionLeave      Action = "leave"
	ActionKick       Action = "kick"
	ActionChangeRole Action = "changeRole"
	ActionLike       Action = "like"
	ActionUnlike     Action = "unlike"
	ActionHide       Action = "hide"
)

type Subject string

const (
	SubjectAll     Subject = "all" // wildcard: matches every subject
	SubjectGroup   Subject = "Group"
	SubjectPost    Subject = "Post"
	SubjectComment Subject = "Comment"
)

// Condition narrows a rule to resources that satisfy it. Conditional rules
// are only consulted when the caller supplies a resource instance.
type Condition func(resource any) bool

type rule struct {
	deny    bool
	action  Action
	subject Subject
	cond    Condition
}

// Ability is an immutable rule set built for one caller (and optionally one
// group context). It is safe for concurrent use.
type Ability struct {
	rules []rule
}

func (a *Ability) allow(action Action, subject Subject, cond Condition) {
	a.rules = append(a.rules, rule{action: action, subject: subject, cond: cond})
}

func (a *Ability) forbid(action Action, subject Subject, cond Condition) {
	a.rules = append(a.rules, rule{deny: true, action: action, subject: subject, cond: cond})
}

func (r rule) matches(action Action, subject Subject, resource any, hasResource bool) bool {
	if r.action != ActionManage && r.action != action {
		return false
	}
	if r.subject != SubjectAll && r.subject != subject {
		return false
	}
	if r.cond != nil {
		if !hasResource {
			return false
		}
		return r.cond(resource)
	}
	return true
}

// Can reports whether the action on the subject is allowed, optionally for a
// concrete resource instance. It never errors: no matching rule means deny.
func (a *Ability) Can(action Action, subject Subject, resource ...any) bool {
	var res any
	hasResource := len(resource) > 0
	if hasResource {
		res = resource[0]
	}

	allowed := false
	for _, r := range a.rules {
		if !r.matches(action, subject, res, hasResource) {
			continue
		}
		if r.deny {
			return false
		}
		allowed = true
	}
	return allowed
}

// Cannot is the negation of Can.
func (a *Ability) Cannot(action Action, subject Subject, resource ...any) bool {
	return !a.Can(action, subject, resource...)
}

func ownPost(userID primitive.ObjectID) Condition {
	return func(resource any) bool {
		p, ok := resource.(*models.Post)
		return ok && p.Author == userID
	}
}

func ownComment(userID primitive.ObjectID) Condition {
	return func(resource any) bool {
		switch c := resource.(type) {
		case *models.Comment:
			return c.Author == userID
		case models.Comment:
			return c.Author == userID
		}
		return false
	}
}

func postLikedBy(userID primitive.ObjectID) Condition {
	return func(resource any) bool {
		p, ok := resource.(*models.Post)
		return ok && p.LikedBy(userID)
	}
}

func postNotLikedBy(userID primitive.ObjectID) Condition {
	return func(resource any) bool {
		p, ok := resource.(*models.Post)
		return ok && !p.LikedBy(userID)
	}
}

func sameGroup(groupID primitive.ObjectID) Condition {
	return func(resource any) bool {
		g, ok := resource.(*models.Group)
		return ok && g.ID == groupID
	}
}

func commentInGroupPost(groupID primitive.ObjectID) Condition {
	// Hide is checked against the parent post; the comment itself carries
	// no group reference.
	return func(resource any) bool {
		p, ok := resource.(*models.Post)
		return ok && p.InGroup(groupID)
	}
}

// For builds the ability set for a caller. A nil user is an anonymous
// visitor. When the caller supplies a group, the caller's role inside that
// group adds grants scoped to that exact group.
func For(user *models.User, group *models.Group) *Ability {
	a := &Ability{}

	// Anonymous visitors can read groups, posts and comments, nothing else.
	a.allow(ActionRead, SubjectGroup, nil)
	a.allow(ActionRead, SubjectPost, nil)
	a.allow(ActionRead, SubjectComment, nil)
	if user == nil {
		return a
	}

	// Baseline for any authenticated user.
	a.allow(ActionJoin, SubjectGroup, nil)
	a.allow(ActionLeave, SubjectGroup, nil)

	a.allow(ActionCreate, SubjectPost, nil)
	a.allow(ActionUpdate, SubjectPost, ownPost(user.ID))
	a.allow(ActionDelete, SubjectPost, ownPost(user.ID))
	a.allow(ActionLike, SubjectPost, nil)
	a.allow(ActionUnlike, SubjectPost, postLikedBy(user.ID))
	a.forbid(ActionUnlike, SubjectPost, postNotLikedBy(user.ID))

	a.allow(ActionCreate, SubjectComment, nil)
	a.allow(ActionUpdate, SubjectComment, ownComment(user.ID))
	a.allow(ActionDelete, SubjectComment, ownComment(user.ID))
	// The parent post's author moderates the comments under it.
	a.allow(ActionHide, SubjectComment, ownPost(user.ID))

	switch user.Role {
	case models.RoleAdmin:
		a.allow(ActionManage, SubjectAll, nil)
	case models.RoleGroupManager:
		a.allow(ActionManage, SubjectGroup, nil)
		a.allow(ActionKick, SubjectGroup, nil)
		a.allow(ActionChangeRole, SubjectGroup, nil)
	case models.RoleEventManager:
		// Reserved for the events feature; no group or post grants.
	}

	if group != nil && group.IsPilot(user.ID) {
		a.allow(ActionUpdate, SubjectGroup, sameGroup(group.ID))
		a.allow(ActionKick, SubjectGroup, sameGroup(group.ID))
		a.allow(ActionChangeRole, SubjectGroup, sameGroup(group.ID))
		a.allow(ActionHide, SubjectComment, commentInGroupPost(group.ID))
	}

	return a
}
