package pubcms

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleLike(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	id := createArticle(t, s, "Likeable", true)

	action, err := s.ToggleLike(ctx, id, "ana")
	require.NoError(t, err)
	assert.Equal(t, LikeActionLiked, action)

	n, err := s.CountLikes(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	liked, err := s.HasLiked(ctx, id, "ana")
	require.NoError(t, err)
	assert.True(t, liked)

	action, err = s.ToggleLike(ctx, id, "ana")
	require.NoError(t, err)
	assert.Equal(t, LikeActionUnliked, action)

	n, err = s.CountLikes(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, n)
	liked, err = s.HasLiked(ctx, id, "ana")
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestToggleLikePerUser(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	id := createArticle(t, s, "Popular", true)

	for _, u := range []string{"ana", "bob", "cat"} {
		_, err := s.ToggleLike(ctx, id, u)
		require.NoError(t, err)
	}
	n, err := s.CountLikes(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	liked, err := s.HasLiked(ctx, id, "dan")
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestToggleLikeConcurrent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	id := createArticle(t, s, "Contended", true)

	const toggles = 8
	var wg sync.WaitGroup
	errs := make(chan error, toggles)
	for i := 0; i < toggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.ToggleLike(ctx, id, "ana")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// An even number of toggles by one user always ends unliked.
	n, err := s.CountLikes(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, n)
}
