package controllers

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/comptoir-backend/pkg/logger"
	"github.com/angelmondragon/comptoir-backend/pkg/store"
)

func TestCollectionFilter(t *testing.T) {
	filter, err := collectionFilter(" tables, articles ,")
	require.NoError(t, err)
	assert.Equal(t, map[store.Name]bool{store.Tables: true, store.Articles: true}, filter)

	filter, err = collectionFilter("")
	require.NoError(t, err)
	assert.Nil(t, filter)

	_, err = collectionFilter("tables,users")
	assert.Error(t, err)
}

func TestStreamChangesDeliversMatchingChanges(t *testing.T) {
	feed := store.NewLocalFeed()
	srv := httptest.NewServer(StreamChanges(feed, logger.Nop()))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"?collections=tables", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": connected\n", line)

	at := time.Date(2026, 5, 2, 19, 0, 0, 0, time.UTC)
	require.NoError(t, feed.Publish(ctx, store.Change{Collection: store.Articles, ID: "a1", Op: store.OpPut, At: at}))
	require.NoError(t, feed.Publish(ctx, store.Change{Collection: store.Tables, ID: "t1", Op: store.OpPut, At: at}))

	var data string
	for data == "" {
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: ") {
			data = strings.TrimSpace(strings.TrimPrefix(line, "data: "))
		}
	}
	var change store.Change
	require.NoError(t, json.Unmarshal([]byte(data), &change))
	assert.Equal(t, store.Tables, change.Collection)
	assert.Equal(t, "t1", change.ID)
}

func TestStreamChangesRejectsUnknownCollection(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/?collections=users", nil)
	StreamChanges(store.NewLocalFeed(), logger.Nop()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
