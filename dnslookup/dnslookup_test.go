package dnslookup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccessfulLookupPostsOKResult(t *testing.T) {
	results := make(chan Lookup, 1)
	th := NewWithResolver(func(ctx context.Context, query string) (string, error) {
		return "v=zwave1", nil
	}, func(l Lookup) { results <- l })
	defer th.Stop()

	th.SendRequest(5, "example.com")

	select {
	case l := <-results:
		assert.Equal(t, StatusOK, l.Status)
		assert.Equal(t, "v=zwave1", l.Result)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for result")
	}
}

func TestFailedLookupStillPostsAResult(t *testing.T) {
	results := make(chan Lookup, 1)
	th := NewWithResolver(func(ctx context.Context, query string) (string, error) {
		return "", errors.New("no such host")
	}, func(l Lookup) { results <- l })
	defer th.Stop()

	th.SendRequest(9, "bad.invalid")

	select {
	case l := <-results:
		assert.Equal(t, StatusFailed, l.Status)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for result on a failed lookup")
	}
}

func TestLookupsAreProcessedInFIFOOrder(t *testing.T) {
	var results []Lookup
	done := make(chan struct{})
	count := 0
	th := NewWithResolver(func(ctx context.Context, query string) (string, error) {
		return query, nil
	}, func(l Lookup) {
		results = append(results, l)
		count++
		if count == 3 {
			close(done)
		}
	})
	defer th.Stop()

	th.SendRequest(1, "a")
	th.SendRequest(2, "b")
	th.SendRequest(3, "c")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for all lookups")
	}

	require.Len(t, results, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{results[0].Query, results[1].Query, results[2].Query})
}
