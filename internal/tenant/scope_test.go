package tenant

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/models"
)

func TestFor(t *testing.T) {
	owner := "owner-1"

	master := For(models.User{ID: "m", Role: models.UserRoleMasterAdmin})
	assert.True(t, master.Global)
	assert.Equal(t, "", master.Filter())
	assert.True(t, master.Owns("anyone"))

	own := For(models.User{ID: owner, Role: models.UserRoleOwner})
	assert.Equal(t, owner, own.Filter())
	assert.True(t, own.Owns(owner))
	assert.False(t, own.Owns("owner-2"))

	member := For(models.User{ID: "tm", Role: models.UserRoleTeamMember, AdminID: &owner})
	assert.Equal(t, owner, member.Filter())
	assert.True(t, member.Owns(owner))
	assert.False(t, member.Owns("tm"))

	pv := For(models.User{ID: "pv", Role: models.UserRolePublicVendor})
	assert.Equal(t, "pv", pv.Filter())
	assert.False(t, pv.Owns(""))
}
