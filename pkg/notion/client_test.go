package notion

import (
	"context"
	"errors"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagingClient returns its canned responses in order, recording cursors.
type pagingClient struct {
	responses []*notionapi.DatabaseQueryResponse
	cursors   []notionapi.Cursor
	call      int
	err       error
}

func (c *pagingClient) QueryDatabase(ctx context.Context, dbID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.cursors = append(c.cursors, req.StartCursor)
	resp := c.responses[c.call]
	c.call++
	return resp, nil
}

func TestQueryAllSinglePage(t *testing.T) {
	c := &pagingClient{responses: []*notionapi.DatabaseQueryResponse{
		{Results: []notionapi.Page{{ID: "p1"}, {ID: "p2"}}},
	}}

	pages, err := QueryAll(context.Background(), c, "db", nil)

	require.NoError(t, err)
	assert.Len(t, pages, 2)
	assert.Equal(t, 1, c.call)
}

func TestQueryAllFollowsCursor(t *testing.T) {
	c := &pagingClient{responses: []*notionapi.DatabaseQueryResponse{
		{Results: []notionapi.Page{{ID: "p1"}}, HasMore: true, NextCursor: "cursor-2"},
		{Results: []notionapi.Page{{ID: "p2"}}},
	}}

	pages, err := QueryAll(context.Background(), c, "db", nil)

	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "p1", string(pages[0].ID))
	assert.Equal(t, "p2", string(pages[1].ID))
	require.Len(t, c.cursors, 2)
	assert.Equal(t, notionapi.Cursor(""), c.cursors[0])
	assert.Equal(t, notionapi.Cursor("cursor-2"), c.cursors[1])
}

func TestQueryAllPropagatesFilter(t *testing.T) {
	var gotFilter notionapi.Filter
	c := &filterCapturingClient{capture: &gotFilter}

	filter := &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: "Status",
			Status:   &notionapi.StatusFilterCondition{Equals: "Active"},
		},
	}

	_, err := QueryAll(context.Background(), c, "db", filter)

	require.NoError(t, err)
	require.NotNil(t, gotFilter)
}

type filterCapturingClient struct {
	capture *notionapi.Filter
}

func (c *filterCapturingClient) QueryDatabase(ctx context.Context, dbID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	*c.capture = req.Filter
	return &notionapi.DatabaseQueryResponse{}, nil
}

func TestQueryAllSurfacesErrors(t *testing.T) {
	c := &pagingClient{err: errors.New("boom")}

	_, err := QueryAll(context.Background(), c, "db", nil)

	require.Error(t, err)
}
