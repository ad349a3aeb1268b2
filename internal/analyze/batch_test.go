package analyze

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/law-makers/storelens/internal/apperr"
	"github.com/law-makers/storelens/internal/competitors"
	"github.com/law-makers/storelens/internal/extract"
)

// deadURL returns the address of a server that is already closed.
func deadURL() string {
	s := httptest.NewServer(nil)
	u := s.URL
	s.Close()
	return u
}

func TestBulkKeepsOrderAndReportsFailures(t *testing.T) {
	good := storeServer(t, map[string]string{
		"/":              homePage,
		"/products.json": productsFeed,
	})
	plain := storeServer(t, map[string]string{"/": `<html><head><title>Plain</title></head></html>`})
	urls := []string{good.URL, deadURL(), plain.URL}

	var seen []string
	res, err := newAnalyzer(t).Bulk(context.Background(), urls, 2, func(it BulkItem) {
		seen = append(seen, it.URL)
	})
	require.NoError(t, err)

	assert.Equal(t, 3, res.TotalStores)
	assert.Equal(t, 2, res.Successful)
	assert.Equal(t, 1, res.Failed)
	assert.ElementsMatch(t, urls, seen)

	require.Len(t, res.Results, 3)
	assert.Equal(t, "Acme", res.Results[0].Profile.Name)
	assert.Nil(t, res.Results[1].Profile)
	assert.NotEmpty(t, res.Results[1].Error)
	assert.True(t, errors.Is(res.Results[1].Err, apperr.ErrHomeUnreachable))
	assert.Equal(t, "Plain", res.Results[2].Profile.Name)

	want := (res.Results[0].Profile.Completeness.Score + res.Results[2].Profile.Completeness.Score) / 2
	assert.InDelta(t, want, res.AverageScore, 0.001)
}

func TestBulkLimits(t *testing.T) {
	a := newAnalyzer(t)

	_, err := a.Bulk(context.Background(), nil, 0, nil)
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	urls := make([]string, DefaultMaxBulkURLs+1)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://store%d.test", i)
	}
	_, err = a.Bulk(context.Background(), urls, 0, nil)
	assert.True(t, errors.Is(err, apperr.ErrTooManyURLs))
}

func TestBulkStopsOnCancelledContext(t *testing.T) {
	server := storeServer(t, map[string]string{"/": homePage})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := newAnalyzer(t).Bulk(ctx, []string{server.URL, server.URL + "/x"}, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Failed)
	assert.True(t, errors.Is(res.Results[0].Err, context.Canceled))
}

func TestCompare(t *testing.T) {
	rich := storeServer(t, map[string]string{
		"/":                     homePage,
		"/products.json":        productsFeed,
		"/pages/privacy-policy": privacyPage,
	})
	bare := storeServer(t, map[string]string{"/": `<html><head><title>Bare</title></head></html>`})

	a := newAnalyzer(t)
	res, err := a.Compare(context.Background(), []string{rich.URL, bare.URL, deadURL()})
	require.NoError(t, err)

	assert.Equal(t, 2, res.StoresCompared)
	require.Len(t, res.Stores, 3)
	assert.Equal(t, 2, res.Stores[0].Products)
	assert.Equal(t, 1, res.Stores[0].Policies)
	assert.Zero(t, res.Stores[1].FAQs, "default FAQs are not counted")
	assert.NotEmpty(t, res.Stores[2].Error)

	assert.Equal(t, rich.URL, res.Leaders["completeness"])
	assert.Equal(t, rich.URL, res.Leaders["products"])
	assert.NotContains(t, res.Leaders, "faqs")

	_, err = a.Compare(context.Background(), []string{rich.URL})
	assert.True(t, errors.Is(err, apperr.ErrTooFewURLs))

	eleven := make([]string, DefaultMaxCompareURLs+1)
	_, err = a.Compare(context.Background(), eleven)
	assert.True(t, errors.Is(err, apperr.ErrTooManyURLs))
}

func TestQuickCheck(t *testing.T) {
	server := storeServer(t, map[string]string{
		"/":              homePage,
		"/products.json": productsFeed,
	})

	res, err := newAnalyzer(t).QuickCheck(context.Background(), server.URL)
	require.NoError(t, err)
	assert.True(t, res.Accessible)
	assert.True(t, res.IsShopifyStore)
	assert.True(t, res.HasProductsJSON)
	assert.Equal(t, "Acme", res.BrandName)
	assert.Equal(t, "Wool Runners | Acme Store", res.Title)

	down, err := newAnalyzer(t).QuickCheck(context.Background(), deadURL())
	require.NoError(t, err)
	assert.False(t, down.Accessible)
	assert.False(t, down.IsShopifyStore)
	assert.False(t, down.HasProductsJSON)

	_, err = newAnalyzer(t).QuickCheck(context.Background(), "")
	assert.True(t, errors.Is(err, apperr.ErrInvalidURL))
}

func TestConfiguredLimits(t *testing.T) {
	f := newAnalyzer(t).fetcher
	a := New(f, extract.New(), competitors.New(), Options{MaxBulkURLs: 2, MaxCompareURLs: 3})

	bulk, compare := a.Limits()
	assert.Equal(t, 2, bulk)
	assert.Equal(t, 3, compare)

	_, err := a.Bulk(context.Background(), []string{"a.test", "b.test", "c.test"}, 1, nil)
	assert.True(t, errors.Is(err, apperr.ErrTooManyURLs))

	_, err = a.Compare(context.Background(), []string{"a.test", "b.test", "c.test", "d.test"})
	assert.True(t, errors.Is(err, apperr.ErrTooManyURLs))

	bulk, compare = New(f, extract.New(), competitors.New(), Options{MaxCompareURLs: 1}).Limits()
	assert.Equal(t, DefaultMaxBulkURLs, bulk)
	assert.Equal(t, DefaultMaxCompareURLs, compare)
}
