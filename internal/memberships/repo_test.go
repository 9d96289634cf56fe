package memberships

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dmcastellanos/supplyline-backend/pkg/db/models"
	"github.com/dmcastellanos/supplyline-backend/pkg/enums"
)

func setupMembershipTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	memberships := `
CREATE TABLE IF NOT EXISTS business_memberships (
  id TEXT PRIMARY KEY,
  business_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  role TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'invited',
  permissions TEXT NOT NULL DEFAULT '{}',
  invited_by_user_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	businesses := `
CREATE TABLE IF NOT EXISTS businesses (
  id TEXT PRIMARY KEY,
  type TEXT NOT NULL,
  company_name TEXT NOT NULL,
  owner_id TEXT NOT NULL,
  approval_status TEXT NOT NULL DEFAULT 'pending_approval',
  subscription_active INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  phone TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  system_role TEXT,
  business_ids TEXT NOT NULL DEFAULT '{}',
  created_at DATETIME,
  updated_at DATETIME
);`
	for _, stmt := range []string{memberships, businesses, users} {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func TestCreateAndGetMembership(t *testing.T) {
	db := setupMembershipTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	businessID, userID := uuid.New(), uuid.New()
	created, err := repo.CreateMembership(ctx, businessID, userID, enums.MemberRoleManager,
		[]enums.Permission{enums.PermissionManageProducts, enums.PermissionManageOrders}, nil, enums.MembershipStatusActive)
	require.NoError(t, err)
	assert.Len(t, created.Permissions, 2)

	found, err := repo.GetMembership(ctx, userID, businessID)
	require.NoError(t, err)
	assert.Equal(t, enums.MemberRoleManager, found.Role)
	assert.True(t, found.HasPermission(enums.PermissionManageProducts))
	assert.False(t, found.HasPermission(enums.PermissionPlaceOrders))
}

func TestCreateMembershipRejectsInvalidInputs(t *testing.T) {
	db := setupMembershipTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.CreateMembership(ctx, uuid.New(), uuid.New(), "superuser", nil, nil, enums.MembershipStatusActive)
	assert.Error(t, err)

	_, err = repo.CreateMembership(ctx, uuid.New(), uuid.New(), enums.MemberRoleStaff,
		[]enums.Permission{"launch_rockets"}, nil, enums.MembershipStatusActive)
	assert.Error(t, err)
}

func TestUserHasPermission(t *testing.T) {
	db := setupMembershipTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	businessID := uuid.New()
	owner, staff, outsider := uuid.New(), uuid.New(), uuid.New()

	_, err := repo.CreateMembership(ctx, businessID, owner, enums.MemberRoleOwner, nil, nil, enums.MembershipStatusActive)
	require.NoError(t, err)
	_, err = repo.CreateMembership(ctx, businessID, staff, enums.MemberRoleStaff,
		[]enums.Permission{enums.PermissionReportPayments}, nil, enums.MembershipStatusActive)
	require.NoError(t, err)

	// Owners hold every permission implicitly.
	ok, err := repo.UserHasPermission(ctx, owner, businessID, enums.PermissionManageUsers)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.UserHasPermission(ctx, staff, businessID, enums.PermissionReportPayments)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.UserHasPermission(ctx, staff, businessID, enums.PermissionManageUsers)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.UserHasPermission(ctx, outsider, businessID, enums.PermissionReportPayments)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserHasPermissionIgnoresInactiveMembership(t *testing.T) {
	db := setupMembershipTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	businessID, userID := uuid.New(), uuid.New()
	_, err := repo.CreateMembership(ctx, businessID, userID, enums.MemberRoleManager,
		[]enums.Permission{enums.PermissionManageOrders}, nil, enums.MembershipStatusInvited)
	require.NoError(t, err)

	ok, err := repo.UserHasPermission(ctx, userID, businessID, enums.PermissionManageOrders)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListBusinessUsers(t *testing.T) {
	db := setupMembershipTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	businessID := uuid.New()
	user := &models.User{ID: uuid.New(), Email: "chef@fireside.example", PasswordHash: "x", FirstName: "Sam", LastName: "Nkosi"}
	require.NoError(t, db.Create(user).Error)

	_, err := repo.CreateMembership(ctx, businessID, user.ID, enums.MemberRoleOwner, nil, nil, enums.MembershipStatusActive)
	require.NoError(t, err)

	rows, err := repo.ListBusinessUsers(ctx, businessID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "chef@fireside.example", rows[0].Email)
	assert.Equal(t, enums.MemberRoleOwner, rows[0].Role)
}
