package repository

import (
	"context"
	"regexp"
	"testing"

	"koinonia/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestPostRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	post := &models.Post{Title: "Picnic", Content: "Sunday picnic after service", AuthorID: 1}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "community_posts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Create(ctx, post)
	assert.NoError(t, err)
	assert.Equal(t, models.DefaultPostCategory, post.Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_GetByID(t *testing.T) {
	tests := []struct {
		name          string
		postID        uint
		currentUserID uint
		mockBehavior  func(mock sqlmock.Sqlmock)
		expectedLiked bool
		expectedError bool
	}{
		{
			name:          "Success with Details",
			postID:        1,
			currentUserID: 2,
			mockBehavior: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(`FROM "community_posts"`)).
					WillReturnRows(sqlmock.NewRows([]string{"id", "content", "author_id", "visible", "comments_count", "likes_count", "liked"}).
						AddRow(1, "Post 1", 10, true, 5, 10, true))

				mock.ExpectQuery(regexp.QuoteMeta(`FROM "profiles"`)).
					WillReturnRows(sqlmock.NewRows([]string{"id", "display_name"}).AddRow(10, "Maria"))
			},
			expectedLiked: true,
		},
		{
			name:          "Not Found",
			postID:        99,
			currentUserID: 0,
			mockBehavior: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(`FROM "community_posts"`)).
					WillReturnError(gorm.ErrRecordNotFound)
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewPostRepository(db)
			tt.mockBehavior(mock)

			post, err := repo.GetByID(context.Background(), tt.postID, tt.currentUserID)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, 5, post.CommentsCount)
				assert.Equal(t, 10, post.LikesCount)
				assert.Equal(t, tt.expectedLiked, post.Liked)
				assert.Equal(t, "Maria", post.Author.DisplayName)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostRepository_List_VisibleOnly(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM "community_posts" WHERE visible = $1`)).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "content", "author_id", "visible", "comments_count", "likes_count", "liked"}).
			AddRow(2, "Newer", 10, true, 0, 1, false).
			AddRow(1, "Older", 10, true, 3, 0, false))

	mock.ExpectQuery(regexp.QuoteMeta(`FROM "profiles"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "display_name"}).AddRow(10, "Maria"))

	posts, err := repo.List(context.Background(), true, 0)
	assert.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, uint(2), posts[0].ID)
	assert.Equal(t, 3, posts[1].CommentsCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_SetVisibility(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "community_posts" SET`)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.SetVisibility(context.Background(), 1, false)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "community_posts" SET`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := repo.SetVisibility(context.Background(), 99, true)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestPostRepository_Delete_Cascades(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "post_comments"`)).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "community_likes"`)).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "community_posts"`)).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), 1)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Like_Idempotent(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	// duplicate insert is absorbed by the conflict clause
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO community_likes`)).
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO community_likes`)).
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Like(context.Background(), 2, 1))
	assert.NoError(t, repo.Like(context.Background(), 2, 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Unlike(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "community_likes"`)).
		WithArgs(2, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.Unlike(context.Background(), 2, 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_IsLiked(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "community_likes"`)).
		WithArgs(2, 1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	liked, err := repo.IsLiked(context.Background(), 2, 1)
	assert.NoError(t, err)
	assert.True(t, liked)
}
