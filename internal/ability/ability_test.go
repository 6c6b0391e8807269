package ability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/JoeLeDev/RSs/internal/models"
)

func newUser(role models.Role) *models.User {
	return &models.User{ID: primitive.NewObjectID(), Role: role}
}

func TestAnonymousAbility(t *testing.T) {
	a := For(nil, nil)

	assert.True(t, a.Can(ActionRead, SubjectGroup))
	assert.True(t, a.Can(ActionRead, SubjectPost))
	assert.True(t, a.Can(ActionRead, SubjectComment))

	assert.False(t, a.Can(ActionCreate, SubjectPost))
	assert.False(t, a.Can(ActionJoin, SubjectGroup))
	assert.False(t, a.Can(ActionLike, SubjectPost))
	assert.False(t, a.Can(ActionDelete, SubjectComment))
}

func TestBaselineUserAbility(t *testing.T) {
	user := newUser(models.RoleUser)
	a := For(user, nil)

	assert.True(t, a.Can(ActionRead, SubjectGroup))
	assert.True(t, a.Can(ActionJoin, SubjectGroup))
	assert.True(t, a.Can(ActionLeave, SubjectGroup))
	assert.True(t, a.Can(ActionCreate, SubjectPost))
	assert.True(t, a.Can(ActionCreate, SubjectComment))

	// Group administration stays out of reach.
	assert.False(t, a.Can(ActionCreate, SubjectGroup))
	assert.False(t, a.Can(ActionUpdate, SubjectGroup))
	assert.False(t, a.Can(ActionDelete, SubjectGroup))
	assert.False(t, a.Can(ActionKick, SubjectGroup))
	assert.False(t, a.Can(ActionChangeRole, SubjectGroup))
	assert.False(t, a.Can(ActionHide, SubjectComment))
}

func TestOwnershipConditions(t *testing.T) {
	user := newUser(models.RoleUser)
	other := newUser(models.RoleUser)
	a := For(user, nil)

	mine := &models.Post{ID: primitive.NewObjectID(), Author: user.ID}
	theirs := &models.Post{ID: primitive.NewObjectID(), Author: other.ID}

	assert.True(t, a.Can(ActionUpdate, SubjectPost, mine))
	assert.True(t, a.Can(ActionDelete, SubjectPost, mine))
	assert.False(t, a.Can(ActionUpdate, SubjectPost, theirs))
	assert.False(t, a.Can(ActionDelete, SubjectPost, theirs))

	myComment := models.Comment{ID: primitive.NewObjectID(), Author: user.ID}
	theirComment := models.Comment{ID: primitive.NewObjectID(), Author: other.ID}

	assert.True(t, a.Can(ActionUpdate, SubjectComment, myComment))
	assert.True(t, a.Can(ActionDelete, SubjectComment, &myComment))
	assert.False(t, a.Can(ActionDelete, SubjectComment, theirComment))

	// Conditional rules never fire without a resource.
	assert.False(t, a.Can(ActionUpdate, SubjectPost))
}

func TestPostAuthorModeratesOwnComments(t *testing.T) {
	author := newUser(models.RoleUser)
	other := newUser(models.RoleUser)
	groupID := primitive.NewObjectID()
	group := &models.Group{
		ID:      groupID,
		Members: []primitive.ObjectID{author.ID},
		Roles:   []models.RoleEntry{{UserID: author.ID, Role: models.GroupRoleMembre}},
	}

	dashboardPost := &models.Post{ID: primitive.NewObjectID(), Author: author.ID}
	groupPost := &models.Post{ID: primitive.NewObjectID(), Author: author.ID, Group: &groupID}
	theirPost := &models.Post{ID: primitive.NewObjectID(), Author: other.ID}

	// The author hides comments on their own posts without holding any
	// pilote seat, on the dashboard and inside a group alike.
	assert.True(t, For(author, nil).Can(ActionHide, SubjectComment, dashboardPost))
	assert.True(t, For(author, group).Can(ActionHide, SubjectComment, groupPost))

	assert.False(t, For(author, nil).Can(ActionHide, SubjectComment, theirPost))
	assert.False(t, For(other, group).Can(ActionHide, SubjectComment, groupPost))
}

func TestUnlikeRequiresPriorLike(t *testing.T) {
	user := newUser(models.RoleUser)
	a := For(user, nil)

	liked := &models.Post{ID: primitive.NewObjectID(), Likes: []primitive.ObjectID{user.ID}}
	notLiked := &models.Post{ID: primitive.NewObjectID()}

	assert.True(t, a.Can(ActionLike, SubjectPost, notLiked))
	assert.True(t, a.Can(ActionUnlike, SubjectPost, liked))
	assert.False(t, a.Can(ActionUnlike, SubjectPost, notLiked))
}

func TestAdminManagesEverything(t *testing.T) {
	admin := newUser(models.RoleAdmin)
	other := newUser(models.RoleUser)
	a := For(admin, nil)

	theirs := &models.Post{ID: primitive.NewObjectID(), Author: other.ID}
	theirComment := models.Comment{ID: primitive.NewObjectID(), Author: other.ID}

	assert.True(t, a.Can(ActionCreate, SubjectGroup))
	assert.True(t, a.Can(ActionDelete, SubjectGroup))
	assert.True(t, a.Can(ActionUpdate, SubjectPost, theirs))
	assert.True(t, a.Can(ActionDelete, SubjectComment, theirComment))
	assert.True(t, a.Can(ActionHide, SubjectComment, theirs))
	assert.True(t, a.Can(ActionKick, SubjectGroup))

	// Deny rules still outrank the manage-all grant.
	notLiked := &models.Post{ID: primitive.NewObjectID()}
	assert.False(t, a.Can(ActionUnlike, SubjectPost, notLiked))
}

func TestGroupManagerAbility(t *testing.T) {
	manager := newUser(models.RoleGroupManager)
	other := newUser(models.RoleUser)
	a := For(manager, nil)

	assert.True(t, a.Can(ActionCreate, SubjectGroup))
	assert.True(t, a.Can(ActionUpdate, SubjectGroup))
	assert.True(t, a.Can(ActionDelete, SubjectGroup))
	assert.True(t, a.Can(ActionKick, SubjectGroup))
	assert.True(t, a.Can(ActionChangeRole, SubjectGroup))

	// The group grant does not leak into other subjects.
	theirs := &models.Post{ID: primitive.NewObjectID(), Author: other.ID}
	assert.False(t, a.Can(ActionDelete, SubjectPost, theirs))
	assert.False(t, a.Can(ActionHide, SubjectComment, theirs))
}

func TestEventManagerHasNoGroupGrants(t *testing.T) {
	a := For(newUser(models.RoleEventManager), nil)

	assert.False(t, a.Can(ActionUpdate, SubjectGroup))
	assert.False(t, a.Can(ActionKick, SubjectGroup))
	assert.True(t, a.Can(ActionJoin, SubjectGroup))
}

func TestPilotScopedToOwnGroup(t *testing.T) {
	pilot := newUser(models.RoleUser)
	group := &models.Group{
		ID:      primitive.NewObjectID(),
		Members: []primitive.ObjectID{pilot.ID},
		Roles:   []models.RoleEntry{{UserID: pilot.ID, Role: models.GroupRolePilote}},
	}
	otherGroup := &models.Group{ID: primitive.NewObjectID()}

	a := For(pilot, group)

	assert.True(t, a.Can(ActionUpdate, SubjectGroup, group))
	assert.True(t, a.Can(ActionKick, SubjectGroup, group))
	assert.True(t, a.Can(ActionChangeRole, SubjectGroup, group))

	assert.False(t, a.Can(ActionUpdate, SubjectGroup, otherGroup))
	assert.False(t, a.Can(ActionKick, SubjectGroup, otherGroup))
	assert.False(t, a.Can(ActionDelete, SubjectGroup, group))

	inGroup := &models.Post{ID: primitive.NewObjectID(), Group: &group.ID}
	elsewhere := &models.Post{ID: primitive.NewObjectID(), Group: &otherGroup.ID}
	dashboard := &models.Post{ID: primitive.NewObjectID()}

	assert.True(t, a.Can(ActionHide, SubjectComment, inGroup))
	assert.False(t, a.Can(ActionHide, SubjectComment, elsewhere))
	assert.False(t, a.Can(ActionHide, SubjectComment, dashboard))
}

func TestPlainMemberGetsNoPilotGrants(t *testing.T) {
	member := newUser(models.RoleUser)
	group := &models.Group{
		ID:      primitive.NewObjectID(),
		Members: []primitive.ObjectID{member.ID},
		Roles:   []models.RoleEntry{{UserID: member.ID, Role: models.GroupRoleMembre}},
	}

	a := For(member, group)

	assert.False(t, a.Can(ActionUpdate, SubjectGroup, group))
	assert.False(t, a.Can(ActionKick, SubjectGroup, group))
	assert.False(t, a.Can(ActionChangeRole, SubjectGroup, group))
}
