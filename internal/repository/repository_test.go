package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"civicreport/internal/config"
	"civicreport/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	logger := zap.NewNop()

	db, err := NewDB(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		URL:    "file:" + filepath.Join(t.TempDir(), "civic.db"),
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, MigrateDB(db, logger))
	return db
}

type fixture struct {
	users      UserRepository
	complaints ComplaintRepository
	reference  ReferenceRepository
}

func newFixture(t *testing.T) *fixture {
	db := newTestDB(t)
	logger := zap.NewNop()
	return &fixture{
		users:      NewUserRepository(db, logger),
		complaints: NewComplaintRepository(db, logger),
		reference:  NewReferenceRepository(db, logger),
	}
}

func (f *fixture) createUser(t *testing.T, name, role string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: name + "@example.com", PasswordHash: "hash"}
	require.NoError(t, f.users.CreateUser(context.Background(), user, role))
	return user
}

func (f *fixture) createComplaint(t *testing.T, owner *models.User, title, description string) int64 {
	t.Helper()
	id, err := f.complaints.Create(context.Background(), &models.Complaint{
		UserID:      owner.ID,
		CategoryID:  1,
		Title:       title,
		Description: description,
	}, models.StatusPending)
	require.NoError(t, err)
	return id
}

func TestMigrateDB_IsIdempotent(t *testing.T) {
	db := newTestDB(t)
	assert.NoError(t, MigrateDB(db, zap.NewNop()))
}

func TestUserRepository_CreateAndLookup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := f.createUser(t, "alice", models.RoleUser)
	assert.NotZero(t, user.ID)
	assert.Equal(t, models.RoleUser, user.Role)

	byEmail, err := f.users.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.Equal(t, "hash", byEmail.PasswordHash)

	byID, err := f.users.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "alice", byID.Name)
	assert.Equal(t, models.RoleUser, byID.Role)

	missing, err := f.users.GetUserByID(ctx, 9999)
	assert.NoError(t, err)
	assert.Nil(t, missing)

	missing, err = f.users.GetUserByEmail(ctx, "nobody@example.com")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.createUser(t, "alice", models.RoleUser)

	err := f.users.CreateUser(context.Background(),
		&models.User{Name: "other", Email: "alice@example.com", PasswordHash: "x"}, models.RoleUser)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUserRepository_UnknownRole(t *testing.T) {
	f := newFixture(t)
	err := f.users.CreateUser(context.Background(),
		&models.User{Name: "x", Email: "x@example.com", PasswordHash: "x"}, "superhero")
	assert.ErrorIs(t, err, ErrInvalidReference)
}

func TestUserRepository_IsAdminAndPromotion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.createUser(t, "root", models.RoleAdmin)
	user := f.createUser(t, "bob", models.RoleUser)

	isAdmin, err := f.users.IsAdmin(ctx, admin.ID)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	isAdmin, err = f.users.IsAdmin(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, isAdmin)

	require.NoError(t, f.users.UpdateRole(ctx, user.ID, models.RoleAdmin))
	isAdmin, err = f.users.IsAdmin(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	assert.ErrorIs(t, f.users.UpdateRole(ctx, 9999, models.RoleAdmin), ErrNotFound)
	assert.ErrorIs(t, f.users.UpdateRole(ctx, user.ID, "nope"), ErrInvalidReference)

	users, err := f.users.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestComplaintRepository_CreateThenGetDenormalizes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "alice", models.RoleUser)

	image := "https://img.example.com/1.png"
	id, err := f.complaints.Create(ctx, &models.Complaint{
		UserID:      owner.ID,
		CategoryID:  1,
		Title:       "Pothole on Main St",
		Description: "Deep pothole near the bakery",
		ImageURL:    &image,
	}, models.StatusPending)
	require.NoError(t, err)

	got, err := f.complaints.GetOne(ctx, owner.ID, id)
	require.NoError(t, err)
	require.NotNil(t, got)

	category, err := f.reference.GetCategoryByID(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, category.Name, got.CategoryName)
	assert.Equal(t, "alice", got.UserName)
	require.NotNil(t, got.ImageURL)
	assert.Equal(t, image, *got.ImageURL)
	assert.Nil(t, got.Location)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestComplaintRepository_CreateInvalidReference(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "alice", models.RoleUser)

	_, err := f.complaints.Create(ctx, &models.Complaint{
		UserID: owner.ID, CategoryID: 999, Title: "t", Description: "d",
	}, models.StatusPending)
	assert.ErrorIs(t, err, ErrInvalidReference)

	_, err = f.complaints.Create(ctx, &models.Complaint{
		UserID: owner.ID, CategoryID: 1, Title: "t", Description: "d",
	}, "Imaginary")
	assert.ErrorIs(t, err, ErrInvalidReference)
}

func TestComplaintRepository_RoleScoping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.createUser(t, "alice", models.RoleUser)
	bob := f.createUser(t, "bob", models.RoleUser)
	admin := f.createUser(t, "root", models.RoleAdmin)

	aliceID := f.createComplaint(t, alice, "Broken lamp", "Street light is out")
	f.createComplaint(t, bob, "Garbage", "Bins overflowing")

	own, err := f.complaints.ListForUser(ctx, alice.ID, 1, 10, "")
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, aliceID, own[0].ID)

	got, err := f.complaints.GetOne(ctx, bob.ID, aliceID)
	require.NoError(t, err)
	assert.Nil(t, got, "another user must not see alice's complaint")

	all, err := f.complaints.ListForUser(ctx, admin.ID, 1, 10, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err = f.complaints.GetOne(ctx, admin.ID, aliceID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, alice.ID, got.UserID)

	count, err := f.complaints.Count(ctx, bob.ID, "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	count, err = f.complaints.Count(ctx, 0, "")
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestComplaintRepository_Pagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "alice", models.RoleUser)

	for i := 0; i < 12; i++ {
		f.createComplaint(t, owner, fmt.Sprintf("Complaint %d", i), "details")
	}

	page1, err := f.complaints.ListForUser(ctx, owner.ID, 1, 5, "")
	require.NoError(t, err)
	page2, err := f.complaints.ListForUser(ctx, owner.ID, 2, 5, "")
	require.NoError(t, err)
	page3, err := f.complaints.ListForUser(ctx, owner.ID, 3, 5, "")
	require.NoError(t, err)
	all, err := f.complaints.ListForUser(ctx, owner.ID, 1, 100, "")
	require.NoError(t, err)

	assert.Len(t, page1, 5)
	assert.Len(t, page2, 5)
	assert.Len(t, page3, 2)
	require.Len(t, all, 12)

	seen := map[int64]bool{}
	var paged []int64
	for _, page := range [][]*models.Complaint{page1, page2, page3} {
		for _, c := range page {
			assert.False(t, seen[c.ID], "complaint %d appears on two pages", c.ID)
			seen[c.ID] = true
			paged = append(paged, c.ID)
		}
	}
	for i, c := range all {
		assert.Equal(t, c.ID, paged[i], "page order must continue the full listing")
	}
}

func TestComplaintRepository_StatusFilterAndUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "alice", models.RoleUser)

	first := f.createComplaint(t, owner, "One", "first")
	f.createComplaint(t, owner, "Two", "second")

	require.NoError(t, f.complaints.UpdateStatus(ctx, first, models.StatusResolved))

	resolved, err := f.complaints.ListForUser(ctx, owner.ID, 1, 10, models.StatusResolved)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, first, resolved[0].ID)

	pending, err := f.complaints.Count(ctx, owner.ID, models.StatusPending)
	require.NoError(t, err)
	assert.EqualValues(t, 1, pending)

	pending, err = f.complaints.Count(ctx, 0, models.StatusPending)
	require.NoError(t, err)
	assert.EqualValues(t, 1, pending)

	assert.ErrorIs(t, f.complaints.UpdateStatus(ctx, first, "Resolvd"), ErrInvalidReference)
	assert.ErrorIs(t, f.complaints.UpdateStatus(ctx, 9999, models.StatusResolved), ErrNotFound)

	got, err := f.complaints.GetOne(ctx, owner.ID, first)
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, got.Status, "a rejected update leaves the status untouched")
}

func TestComplaintRepository_Search(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.createUser(t, "alice", models.RoleUser)
	bob := f.createUser(t, "bob", models.RoleUser)
	admin := f.createUser(t, "root", models.RoleAdmin)

	f.createComplaint(t, alice, "Pothole on Main St", "Deep hole in the road")
	f.createComplaint(t, bob, "Another pothole", "Near the school")
	f.createComplaint(t, bob, "Noise", "Loud construction at night")

	results, err := f.complaints.Search(ctx, alice.ID, "pothole")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "alice", results[0].UserName)

	results, err = f.complaints.Search(ctx, admin.ID, "pothole")
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = f.complaints.Search(ctx, admin.ID, "constr")
	require.NoError(t, err)
	require.Len(t, results, 1, "prefix match")
	assert.Equal(t, "Noise", results[0].Title)

	results, err = f.complaints.Search(ctx, admin.ID, `"unbalanced`)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = f.complaints.Search(ctx, admin.ID, "!!!")
	require.NoError(t, err)
	assert.Empty(t, results)

	// FTS keywords are searched as plain words
	results, err = f.complaints.Search(ctx, admin.ID, `" OR *`)
	require.NoError(t, err)
	assert.Empty(t, results)

	for _, query := range []string{"NEAR pothole", "pothole near"} {
		results, err = f.complaints.Search(ctx, admin.ID, query)
		require.NoError(t, err)
		require.Len(t, results, 1, query)
		assert.Equal(t, "Another pothole", results[0].Title)
	}
}

func TestReferenceRepository(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	categories, err := f.reference.ListCategories(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, categories)
	assert.EqualValues(t, 1, categories[0].ID)

	statuses, err := f.reference.ListStatuses(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		names = append(names, s.Name)
	}
	assert.Contains(t, names, models.StatusPending)
	assert.Contains(t, names, models.StatusResolved)

	status, err := f.reference.GetStatusByName(ctx, "Nope")
	assert.NoError(t, err)
	assert.Nil(t, status)

	category, err := f.reference.GetCategoryByID(ctx, 999)
	assert.NoError(t, err)
	assert.Nil(t, category)
}

func TestReferenceRepository_Stats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stats, err := f.reference.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{}, *stats)

	owner := f.createUser(t, "alice", models.RoleUser)
	first := f.createComplaint(t, owner, "One", "first")
	second := f.createComplaint(t, owner, "Two", "second")
	f.createComplaint(t, owner, "Three", "third")
	require.NoError(t, f.complaints.UpdateStatus(ctx, first, models.StatusResolved))
	require.NoError(t, f.complaints.UpdateStatus(ctx, second, "In Progress"))

	stats, err = f.reference.GetStats(ctx)
	require.NoError(t, err)

	total, err := f.complaints.Count(ctx, 0, "")
	require.NoError(t, err)

	assert.Equal(t, total, stats.TotalReports)
	assert.EqualValues(t, 1, stats.PendingReports)
	assert.EqualValues(t, 1, stats.ResolvedReports)
	assert.LessOrEqual(t, stats.PendingReports+stats.ResolvedReports, stats.TotalReports)
}

func TestSearchArg(t *testing.T) {
	tests := []struct {
		input    string
		sqlite   string
		postgres string
	}{
		{"road, damage!", `"road"* "damage"*`, "road:* & damage:*"},
		{`" OR *`, `"OR"*`, "OR:*"},
		{"  ", "", ""},
		{"!&|:*()", "", ""},
		{"улица 5", `"улица"* "5"*`, "улица:* & 5:*"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.sqlite, sqliteDialect{}.searchArg(tt.input))
			assert.Equal(t, tt.postgres, postgresDialect{}.searchArg(tt.input))
		})
	}
}

func TestWithSQLitePragmas(t *testing.T) {
	assert.Equal(t, "file:a.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", withSQLitePragmas("file:a.db"))
	assert.Equal(t, "file:a.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", withSQLitePragmas("file:a.db?mode=rwc"))
}
