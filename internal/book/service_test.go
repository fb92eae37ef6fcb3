package book

import (
	"context"
	"errors"
	"testing"

	"bookcatalog/internal/platform/database"
	"bookcatalog/internal/testutil"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := NewMockRepository(ctrl)
	service := NewService(mockRepo)
	ctx := context.Background()

	in := Input{Name: testutil.Ptr("The Hobbit"), AuthorID: testutil.AuthorID}

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().Create(ctx, in).Return(testBook(), nil)

		created, err := service.Create(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, testutil.BookID, created.ID)
	})

	t.Run("unique violation becomes conflict", func(t *testing.T) {
		storeErr := &database.Error{Code: database.CodeUniqueConstraint, Err: errors.New("duplicate key")}
		mockRepo.EXPECT().Create(ctx, in).Return(Book{}, storeErr)

		_, err := service.Create(ctx, in)
		require.Error(t, err)
		var e *Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, KindConflict, e.Kind)
		assert.Equal(t, MsgNameTaken, e.Error())
		assert.ErrorIs(t, err, storeErr)
	})

	t.Run("missing author becomes bad request", func(t *testing.T) {
		mockRepo.EXPECT().Create(ctx, in).
			Return(Book{}, &database.Error{Code: database.CodeRecordNotFound, Err: errors.New("fk")})

		_, err := service.Create(ctx, in)
		assert.Equal(t, KindBadRequest, KindOf(err))
		assert.Equal(t, MsgMissingRecord, err.Error())
	})

	t.Run("name is required", func(t *testing.T) {
		for _, name := range []*string{nil, testutil.Ptr(""), testutil.Ptr("   ")} {
			_, err := service.Create(ctx, Input{Name: name, AuthorID: testutil.AuthorID})
			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, KindBadRequest, e.Kind)
			assert.Equal(t, MsgNameRequired, e.Message)
		}
	})

	t.Run("other errors pass through", func(t *testing.T) {
		mockRepo.EXPECT().Create(ctx, in).Return(Book{}, context.DeadlineExceeded)

		_, err := service.Create(ctx, in)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, KindUnclassified, KindOf(err))
	})
}

func TestService_GetByID(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := NewMockRepository(ctrl)
	service := NewService(mockRepo)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		b := testBook()
		mockRepo.EXPECT().FindByID(ctx, testutil.BookID).Return(&b, nil)

		got, err := service.GetByID(ctx, testutil.BookID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "The Hobbit", got.Name)
	})

	t.Run("absent is not an error", func(t *testing.T) {
		mockRepo.EXPECT().FindByID(ctx, testutil.BookID).Return(nil, nil)

		got, err := service.GetByID(ctx, testutil.BookID)
		assert.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestService_PassThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := NewMockRepository(ctrl)
	service := NewService(mockRepo)
	ctx := context.Background()

	t.Run("delete missing keeps store error", func(t *testing.T) {
		mockRepo.EXPECT().Delete(ctx, testutil.BookID).Return(Book{}, database.NotFound("delete book"))

		_, err := service.DeleteByID(ctx, testutil.BookID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, database.CodeRecordNotFound, database.CodeOf(err))
	})

	t.Run("update unique violation is not translated", func(t *testing.T) {
		in := Input{Name: testutil.Ptr("Taken"), AuthorID: testutil.AuthorID}
		mockRepo.EXPECT().Update(ctx, testutil.BookID, in).
			Return(Book{}, &database.Error{Code: database.CodeUniqueConstraint, Err: errors.New("duplicate")})

		_, err := service.UpdateByID(ctx, testutil.BookID, in)
		var e *Error
		assert.False(t, errors.As(err, &e))
		assert.Equal(t, KindConflict, KindOf(err))
	})

	t.Run("like", func(t *testing.T) {
		mockRepo.EXPECT().CreateLike(ctx, testutil.BookID, testutil.UserID).Return(testBook(), nil)

		liked, err := service.Like(ctx, testutil.BookID, testutil.UserID)
		require.NoError(t, err)
		assert.Equal(t, testutil.BookID, liked.ID)
	})

	t.Run("list", func(t *testing.T) {
		mockRepo.EXPECT().ListUsersWithBooks(ctx).Return([]User{{ID: testutil.UserID, Books: []Like{}}}, nil)

		users, err := service.ListUsersWithBooks(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})
}
