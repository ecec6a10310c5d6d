package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/tavolo-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupUserRepoTest(t *testing.T) *GormUserRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	models.DB = db
	if err := models.AutoMigrate(); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewUserRepository(db)
}

func seedUser(t *testing.T, repo *GormUserRepository, email string, lastLoginAt *time.Time) *models.User {
	t.Helper()
	user := &models.User{
		Email:       email,
		DisplayName: email,
		LastLoginAt: lastLoginAt,
	}
	if err := repo.Create(user); err != nil {
		t.Fatalf("seed user %s failed: %v", email, err)
	}
	return user
}

func timePtr(v time.Time) *time.Time {
	return &v
}

func TestUserListFiltersByLastLoginRange(t *testing.T) {
	repo := setupUserRepoTest(t)
	now := time.Now()
	seedUser(t, repo, "stale@example.com", timePtr(now.Add(-72*time.Hour)))
	seedUser(t, repo, "recent@example.com", timePtr(now.Add(-time.Hour)))
	seedUser(t, repo, "never@example.com", nil)

	from := now.Add(-24 * time.Hour)
	users, total, err := repo.List(UserListFilter{LastLoginFrom: &from})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(users) != 1 || users[0].Email != "recent@example.com" {
		t.Fatalf("expected only recent login, got total=%d users=%+v", total, users)
	}

	to := now.Add(-48 * time.Hour)
	users, total, err = repo.List(UserListFilter{LastLoginTo: &to})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(users) != 1 || users[0].Email != "stale@example.com" {
		t.Fatalf("expected only stale login, got total=%d users=%+v", total, users)
	}
}

func TestUserListKeywordAndCreatedRange(t *testing.T) {
	repo := setupUserRepoTest(t)
	seedUser(t, repo, "anna@example.com", nil)
	seedUser(t, repo, "bruno@example.com", nil)

	users, total, err := repo.List(UserListFilter{Keyword: "anna"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(users) != 1 || users[0].Email != "anna@example.com" {
		t.Fatalf("expected keyword match, got total=%d users=%+v", total, users)
	}

	future := time.Now().Add(time.Hour)
	_, total, err = repo.List(UserListFilter{CreatedFrom: &future})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected no users created in the future, got %d", total)
	}
}
