package repository

import (
	"context"
	"regexp"
	"testing"

	"koinonia/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestProfileRepository_GetByEmail(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		mockBehavior  func(mock sqlmock.Sqlmock)
		expectedName  string
		expectedError bool
	}{
		{
			name:  "Success",
			email: "maria@example.com",
			mockBehavior: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(`FROM "profiles" WHERE email = $1`)).
					WithArgs("maria@example.com", 1).
					WillReturnRows(sqlmock.NewRows([]string{"id", "email", "display_name", "role"}).
						AddRow(1, "maria@example.com", "Maria", models.RoleMember))
			},
			expectedName: "Maria",
		},
		{
			name:  "Not Found",
			email: "nobody@example.com",
			mockBehavior: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(`FROM "profiles" WHERE email = $1`)).
					WithArgs("nobody@example.com", 1).
					WillReturnError(gorm.ErrRecordNotFound)
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewProfileRepository(db)
			tt.mockBehavior(mock)

			profile, err := repo.GetByEmail(context.Background(), tt.email)
			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedName, profile.DisplayName)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestProfileRepository_SetRole(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProfileRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "profiles" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.SetRole(context.Background(), 1, string(models.RoleAdmin))
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_IsAdmin(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProfileRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "profiles"`)).
		WithArgs(1, models.RoleAdmin).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	isAdmin, err := repo.IsAdmin(context.Background(), 1)
	assert.NoError(t, err)
	assert.False(t, isAdmin)
}
