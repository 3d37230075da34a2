package listing

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rbacctl/rbacctl/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

var testMatcher = Matcher{
	SearchFields: []record.Field{record.AppCode, record.AppName},
	SelectorFields: map[string]record.Field{
		"app":  record.AppCode,
		"role": record.RoleCode,
	},
}

func apps(n int) []record.Record {
	out := make([]record.Record, n)
	for i := range out {
		out[i] = record.Record{
			"apP_CODE": fmt.Sprintf("APP_%02d", i+1),
			"apP_NAME": fmt.Sprintf("Application %d", i+1),
		}
	}
	return out
}

func sameRecord(a, b record.Record) bool {
	return fmt.Sprintf("%p", a) == fmt.Sprintf("%p", b)
}

func TestFilterIsOrderedSubset(t *testing.T) {
	collection := []record.Record{
		{"apP_CODE": "APP_ATH_1", "rolE_CODE": "ADMIN"},
		{"appCode": "app_ath_1", "roleCode": "viewer"},
		{"app_code": "APP_OTHER_2"},
		{"AppCode": "APP_ATH_1", "RoleCode": "Admin"},
	}
	before := fmt.Sprint(collection)

	got := testMatcher.Filter(collection, Criteria{Selectors: map[string]string{"app": "APP_ATH_1"}})

	require.Len(t, got, 3)
	assert.True(t, sameRecord(collection[0], got[0]))
	assert.True(t, sameRecord(collection[1], got[1]))
	assert.True(t, sameRecord(collection[3], got[2]))
	assert.Equal(t, before, fmt.Sprint(collection), "input must not be modified")
}

func TestFilterEmptySearchMatchesAll(t *testing.T) {
	collection := apps(7)
	got := testMatcher.Filter(collection, Criteria{
		Selectors: map[string]string{"app": "all", "role": SelectorAll},
	})
	assert.Len(t, got, 7)
}

func TestFilterSelectorNarrowingIsCaseInsensitive(t *testing.T) {
	collection := []record.Record{
		{"apP_CODE": "APP_ATH_1", "rolE_CODE": "ADMIN"},
		{"apP_CODE": "APP_ATH_1", "rolE_CODE": "VIEWER"},
		{"apP_CODE": "APP_ATH_2", "rolE_CODE": "ADMIN"},
	}

	got := testMatcher.Filter(collection, Criteria{Selectors: map[string]string{"app": "app_ath_1", "role": "admin"}})

	require.Len(t, got, 1)
	for _, r := range got {
		assert.Equal(t, "APP_ATH_1", record.AppCode.String(r))
	}
}

func TestFilterSearchIsCaseInsensitiveSubstring(t *testing.T) {
	collection := []record.Record{
		{"apP_CODE": "APP_1", "apP_NAME": "Billing"},
		{"apP_CODE": "APP_2", "apP_NAME": "TEST API"},
		{"apP_CODE": "APP_3", "apP_NAME": nil},
		{"apP_CODE": "APP_4"},
	}

	got := testMatcher.Filter(collection, Criteria{Search: "test"})

	require.Len(t, got, 1)
	assert.Equal(t, "TEST API", record.AppName.String(got[0]))
}

func TestFilterMissingValuesNeverMatchLiterally(t *testing.T) {
	collection := []record.Record{{"apP_NAME": nil}, {}}
	assert.Empty(t, testMatcher.Filter(collection, Criteria{Search: "null"}))
	assert.Empty(t, testMatcher.Filter(collection, Criteria{Search: "nil"}))
}

func TestPagerExhaustive(t *testing.T) {
	for _, n := range []int{0, 1, 9, 10, 11, 25, 100} {
		for _, size := range []int{1, 3, 10, 25} {
			t.Run(fmt.Sprintf("n=%d size=%d", n, size), func(t *testing.T) {
				collection := apps(n)
				var rebuilt []record.Record
				for p := 1; p <= TotalPages(n, size); p++ {
					rebuilt = append(rebuilt, Page(collection, p, size)...)
				}
				require.Len(t, rebuilt, n)
				for i := range collection {
					assert.True(t, sameRecord(collection[i], rebuilt[i]))
				}
			})
		}
	}
}

func TestPagerSentinel(t *testing.T) {
	collection := apps(37)
	assert.Equal(t, 1, TotalPages(len(collection), RowsPerPageAll))
	assert.Len(t, Page(collection, 1, RowsPerPageAll), 37)
}

func TestPagerBeyondRange(t *testing.T) {
	collection := apps(12)
	assert.NotPanics(t, func() {
		assert.Empty(t, Page(collection, 5, 10))
	})
	assert.Equal(t, 2, TotalPages(12, 10))
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		n, page, size int
		expected      string
	}{
		{0, 1, 10, "Showing 0 of 0 Records"},
		{0, 1, 0, "Showing 0 of 0 Records"},
		{25, 3, 10, "Showing 21 to 25 of 25 Records"},
		{12, 1, 10, "Showing 1 to 10 of 12 Records"},
		{12, 2, 10, "Showing 11 to 12 of 12 Records"},
		{5, 1, 0, "Showing 1 to 5 of 5 Records"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, Describe(tt.n, tt.page, tt.size))
		})
	}
}

func TestViewResetsPageOnCriteriaChange(t *testing.T) {
	collection := apps(45)
	v := NewView(testMatcher, 10)

	assert.Equal(t, 3, v.GoToPage(collection, 3))
	v.SetSearch("application")
	w := v.Window(collection)
	assert.Equal(t, 1, w.CurrentPage)
	assert.True(t, sameRecord(collection[0], w.Rows[0]))

	v.GoToPage(collection, 4)
	v.SetSelector("app", "APP_01")
	assert.Equal(t, 1, v.CurrentPage())

	v.GoToPage(collection, 2)
	v.SetRowsPerPage(25)
	assert.Equal(t, 1, v.CurrentPage())
}

func TestViewClampsPageRequests(t *testing.T) {
	collection := apps(12)
	v := NewView(testMatcher, 10)
	assert.Equal(t, 2, v.GoToPage(collection, 99))
	assert.Equal(t, 1, v.GoToPage(collection, -4))
	assert.Equal(t, 2, v.NextPage(collection))
	assert.Equal(t, 2, v.NextPage(collection))
	assert.Equal(t, 1, v.PrevPage(collection))
}

func TestViewCycleRowsPerPage(t *testing.T) {
	v := NewView(testMatcher, 10)
	assert.Equal(t, 25, v.CycleRowsPerPage())
	assert.Equal(t, 50, v.CycleRowsPerPage())
	assert.Equal(t, RowsPerPageAll, v.CycleRowsPerPage())
	assert.Equal(t, 10, v.CycleRowsPerPage())
}

func TestApplicationsScenario(t *testing.T) {
	collection := apps(12)
	v := NewView(testMatcher, 10)

	w := v.Window(collection)
	require.Len(t, w.Rows, 10)
	assert.Equal(t, "APP_01", record.AppCode.String(w.Rows[0]))
	assert.Equal(t, "APP_10", record.AppCode.String(w.Rows[9]))
	assert.Equal(t, "Showing 1 to 10 of 12 Records", w.Info)

	v.NextPage(collection)
	w = v.Window(collection)
	require.Len(t, w.Rows, 2)
	assert.Equal(t, "APP_11", record.AppCode.String(w.Rows[0]))
	assert.Equal(t, "APP_12", record.AppCode.String(w.Rows[1]))
	assert.Equal(t, "Showing 11 to 12 of 12 Records", w.Info)
}

func TestDedupeByCompositeKey(t *testing.T) {
	collection := []record.Record{
		{"useR_ID": "u1", "apP_CODE": "A", "rolE_CODE": "R", "facility": "F1"},
		{"userId": "u1", "appCode": "A", "roleCode": "R", "facility": "F2"},
		{"useR_ID": "u1", "apP_CODE": "A", "rolE_CODE": "R2"},
		{"useR_ID": "u2", "apP_CODE": "A", "rolE_CODE": "R"},
	}

	got := Dedupe(collection, record.UserID, record.AppCode, record.RoleCode)

	require.Len(t, got, 3)
	assert.Equal(t, "F1", record.Facility.String(got[0]))
}

func TestSortByFieldIsLocaleAwareAndStable(t *testing.T) {
	collection := []record.Record{
		{"apP_CODE": "b", "n": 1.0},
		{"apP_CODE": "A", "n": 2.0},
		{"apP_CODE": "a", "n": 3.0},
		{"apP_CODE": "B", "n": 4.0},
		{"apP_CODE": "b", "n": 5.0},
	}

	got := SortByField(collection, record.AppCode, language.English)

	codes := make([]string, len(got))
	for i, r := range got {
		codes[i] = record.AppCode.String(r)
	}
	assert.Equal(t, []string{"a", "A", "b", "b", "B"}, codes)
	assert.Equal(t, 1.0, got[2]["n"])
	assert.Equal(t, "b", record.AppCode.String(collection[0]), "input must not be reordered")
}

func TestDistinctValues(t *testing.T) {
	collection := []record.Record{{"apP_CODE": "B"}, {"appCode": "A"}, {"apP_CODE": "B"}, {}}
	assert.Equal(t, []string{"B", "A"}, DistinctValues(collection, record.AppCode))
}

func TestLoaderRefreshTriggersExactlyOneFetch(t *testing.T) {
	signal := &RefreshSignal{}
	calls := 0
	responses := [][]record.Record{apps(3), apps(1)}
	loader := NewLoader(func(context.Context) ([]record.Record, error) {
		r := responses[calls]
		calls++
		return r, nil
	}, signal)

	assert.Equal(t, StateLoading, loader.State())
	require.NoError(t, loader.Load(context.Background()))
	assert.Equal(t, StateLoaded, loader.State())
	assert.Len(t, loader.Collection(), 3)

	fetched, err := loader.Refresh(context.Background())
	require.NoError(t, err)
	assert.False(t, fetched)

	signal.Bump()
	fetched, err = loader.Refresh(context.Background())
	require.NoError(t, err)
	assert.True(t, fetched)
	assert.Equal(t, 2, calls)
	assert.Equal(t, responses[1], loader.Collection(), "collection is replaced, not merged")

	fetched, _ = loader.Refresh(context.Background())
	assert.False(t, fetched)
	assert.Equal(t, 2, calls)
}

func TestLoaderFailureDegradesToEmpty(t *testing.T) {
	boom := errors.New("boom")
	fail := false
	loader := NewLoader(func(context.Context) ([]record.Record, error) {
		if fail {
			return nil, boom
		}
		return apps(2), nil
	}, nil)

	require.NoError(t, loader.Load(context.Background()))
	fail = true
	err := loader.Load(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateLoaded, loader.State())
	assert.Empty(t, loader.Collection())
	assert.ErrorIs(t, loader.Err(), boom)
}

func TestLoaderDiscardsStaleResult(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	first := true
	loader := NewLoader(func(context.Context) ([]record.Record, error) {
		if first {
			first = false
			close(started)
			<-release
			return apps(5), nil
		}
		return apps(1), nil
	}, nil)

	errCh := make(chan error, 1)
	go func() { errCh <- loader.Load(context.Background()) }()
	<-started

	require.NoError(t, loader.Load(context.Background()))
	close(release)

	assert.ErrorIs(t, <-errCh, ErrStaleResult)
	assert.Len(t, loader.Collection(), 1)
}

func TestGuard(t *testing.T) {
	var g Guard
	first := g.Begin()
	assert.True(t, first.Live())

	second := g.Begin()
	assert.False(t, first.Live())
	assert.True(t, second.Live())

	g.Cancel()
	assert.False(t, second.Live())
	assert.False(t, Token{}.Live())
}
