package repository

import (
	"context"
	"regexp"
	"testing"

	"koinonia/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	comment := &models.Comment{PostID: 1, AuthorID: 2, Content: "Amen!"}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "post_comments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), comment)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_ListByPost_OldestFirst(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM "post_comments" WHERE post_id = $1 ORDER BY created_at ASC`)).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "post_id", "author_id", "content"}).
			AddRow(1, 1, 2, "First").
			AddRow(2, 1, 3, "Second"))

	mock.ExpectQuery(regexp.QuoteMeta(`FROM "profiles"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "display_name"}).
			AddRow(2, "Maria").
			AddRow(3, "Jonas"))

	comments, err := repo.ListByPost(context.Background(), 1)
	assert.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "First", comments[0].Content)
	assert.Equal(t, "Jonas", comments[1].Author.DisplayName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_CountByPost(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "post_comments"`)).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountByPost(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), count)
}
